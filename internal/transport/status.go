package transport

import (
	"net/http"
	"time"

	"github.com/capstonehub/capstone-hub/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uptimeResponse struct {
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

func (s *Server) handleUptime(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, uptimeResponse{
		Status:        "ok",
		StartedAt:     s.startedAt.UTC(),
		UptimeSeconds: int64(s.sessions.Now().Sub(s.startedAt).Seconds()),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}
