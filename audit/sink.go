// Package audit mirrors completed assessments into an object storage
// history trail, one JSON record per assessment.
package audit

import (
	"xaisentinel.com/xrs/logger"
	"xaisentinel.com/xrs/s3client"
	"xaisentinel.com/xrs/types"
	"xaisentinel.com/xrs/utils"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"time"
)

// keyStamp orders history objects chronologically without putting
// colons into object keys.
const keyStamp = "20060102T150405.000000Z"

// Record is one audit trail entry. The scored result is flattened
// alongside identity and provenance fields.
type Record struct {
	types.AssessmentResult
	UserID           string `json:"userId"`
	ServerTimestamp  string `json:"server_timestamp"`
	RecordID         string `json:"record_id"`
	ModelFingerprint string `json:"model_fingerprint"`
}

type uploader interface {
	saveRecord(payload string, key string) error
	close()
}

type s3Uploader struct {
	s3Client *s3client.Client
}

func (wrapper *s3Uploader) saveRecord(payload string, key string) error {
	_, err := wrapper.s3Client.Upload(payload, key)
	return err
}

func (wrapper *s3Uploader) close() {
	wrapper.s3Client.Close()
}

// Sink records assessments for later review. A Sink never fails the
// assessment that feeds it; storage errors are logged and dropped.
type Sink struct {
	uploader    uploader
	fingerprint string
	xrsLogger   *zerolog.Logger
}

// NewSink connects the audit trail to object storage. fingerprint
// identifies the model configuration that produced the recorded
// scores.
func NewSink(fingerprint string) (*Sink, error) {
	s3Client, err := s3client.New()
	if err != nil {
		return nil, err
	}
	xrsLogger := logger.NewLogger("Audit")
	return &Sink{
		uploader:    &s3Uploader{s3Client: s3Client},
		fingerprint: fingerprint,
		xrsLogger:   &xrsLogger,
	}, nil
}

// Sync writes one record to the trail. It deliberately returns
// nothing.
func (sink *Sink) Sync(userID string, appID string, res types.AssessmentResult) {
	now := time.Now().UTC()
	record := Record{
		AssessmentResult: res,
		UserID:           userID,
		ServerTimestamp:  now.Format(utils.RFC3339Micro),
		RecordID:         uuid.NewString(),
		ModelFingerprint: sink.fingerprint,
	}
	key := historyKey(appID, now, record.RecordID)
	payload, err := json.Marshal(&record)
	if err != nil {
		sink.xrsLogger.Err(err).Str("key", key).Msg("Failed to marshal audit record")
		return
	}
	if err := sink.uploader.saveRecord(string(payload), key); err != nil {
		sink.xrsLogger.Err(err).Str("key", key).Msg("Failed to store audit record")
		return
	}
	sink.xrsLogger.Debug().Str("key", key).Msg("Stored audit record")
}

func (sink *Sink) Close() {
	sink.uploader.close()
}

func historyKey(appID string, now time.Time, recordID string) string {
	return fmt.Sprintf("artifacts/%s/public/data/history/%s_%s.json", appID, now.Format(keyStamp), recordID)
}
