package api

import (
	"xaisentinel.com/xrs/types"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// Scorer is the scoring dependency of the HTTP surface.
type Scorer interface {
	Score(vitals types.Vitals, symptoms types.Symptoms) (types.AssessmentResult, error)
}

// AuditSink receives completed assessments. Implementations must not
// affect the response; the handler calls Sync fire and forget.
type AuditSink interface {
	Sync(userID string, appID string, res types.AssessmentResult)
}

type Request struct {
	Scorer Scorer
	Audit  AuditSink
}

func (req *Request) Analyze(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var assessment types.AssessmentRequest
	if err := json.Unmarshal(body, &assessment); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse assessment request")
		writeDetail(w, http.StatusBadRequest, "invalid assessment request body")
		return
	}
	if assessment.UserID == "" || assessment.AppID == "" {
		logger.Error().Int("status", http.StatusBadRequest).Msg("Assessment request misses userId or appId")
		writeDetail(w, http.StatusBadRequest, "userId and appId are required")
		return
	}

	result, err := req.Scorer.Score(assessment.Vitals, assessment.Symptoms)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to score assessment")
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Audit != nil {
		req.Audit.Sync(assessment.UserID, assessment.AppID, result)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Err(err).Msg("Failed to write response")
		return
	}
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing assessment")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"detail":%q}`, detail)
}
