package handlers

import (
	"net/http"
	"runtime"
	"time"

	"videothumbs/internal/indexer"
	"videothumbs/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`

	Watcher *indexer.HealthStatus `json:"watcher,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports database connectivity and watcher state. It returns
// 503 when the database is unreachable.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Database:     "ok",
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if err := h.catalog.Ping(r.Context()); err != nil {
		response.Status = statusDegraded
		response.Database = err.Error()
		code = http.StatusServiceUnavailable
	}

	if h.watcher != nil {
		status := h.watcher.GetHealthStatus()
		response.Watcher = &status
		if status.LastScanError != "" && code == http.StatusOK {
			response.Status = statusDegraded
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatusCode(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// TriggerScan starts a watcher scan in the background.
func (h *Handlers) TriggerScan(w http.ResponseWriter, _ *http.Request) {
	if h.watcher == nil {
		writeJSONError(w, "watcher not running", http.StatusServiceUnavailable)
		return
	}
	h.watcher.TriggerScan(h.scanCtx)
	writeJSONStatusCode(w, http.StatusAccepted, map[string]string{
		"status":    "scan_started",
		"startedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
