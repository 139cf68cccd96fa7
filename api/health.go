package api

import (
	"net/http"
)

const healthPayload = `{"status":"online","engine":"boosted trees + treeshap active"}`

// Health reports service liveness. Load balancers poll it, so it logs
// at debug level only.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "GET" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'GET' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	_, _ = w.Write([]byte(healthPayload))
	logger.Debug().Int("status", http.StatusOK).Msg("Health check served")
}
