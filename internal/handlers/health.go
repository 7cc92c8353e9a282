package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photogrid/internal/embedlink"
	"photogrid/internal/logging"
	"photogrid/internal/startup"
)

// HealthResponse contains the health check response.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	ItemCount    int    `json:"itemCount"`
	CachedBlobs  int64  `json:"cachedBlobs"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports service health. The engine refreshes on start,
// so a running engine means the service is serving.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	cached, err := h.store.Count(r.Context())
	if err != nil {
		logging.Warn("health check cache count failed: %v", err)
	}
	writeJSON(w, HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		ItemCount:    len(h.engine.Snapshot().Items),
		CachedBlobs:  cached,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// Version returns build information.
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}

// EmbedSnippet returns an HTML embed snippet for a recognized
// third-party video URL.
func (h *Handlers) EmbedSnippet(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSONError(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	snippet, ok := embedlink.Snippet(rawURL)
	if !ok {
		writeJSONError(w, "unrecognized video url", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]string{"html": snippet})
}
