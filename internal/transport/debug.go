package transport

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
)

// debugKeyHeader carries the shared debug key.
const debugKeyHeader = "X-Debug-Key"

// defaultSetAgo pushes the session just past the default idle limit.
const defaultSetAgo = 1900

// maxSetAgo caps backdating at 30 days.
const maxSetAgo = 30 * 24 * 60 * 60

// debugGuard hides the debug routes unless they are enabled and the caller
// presents the debug key.
func (s *Server) debugGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.debug.Enabled {
			writeError(w, http.StatusNotFound, "debug_disabled")
			return
		}
		key := r.Header.Get(debugKeyHeader)
		if s.debug.Key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.debug.Key)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) protectDebugAdmin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.RequireAdmin(sessionOf(r).State()) != nil {
			writeError(w, http.StatusForbidden, "admin_required")
			return
		}
		h(w, r)
	}
}

func (s *Server) handleDebugPing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pong": true, "ts": s.sessions.Now().Unix()})
}

// handleDebugSetLastSeen backdates the caller's last activity so idle expiry
// can be exercised without waiting.
func (s *Server) handleDebugSetLastSeen(w http.ResponseWriter, r *http.Request) {
	ago := defaultSetAgo
	if v := r.URL.Query().Get("ago_seconds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxSetAgo {
			writeError(w, http.StatusBadRequest, "invalid ago_seconds")
			return
		}
		ago = n
	}
	s.sessions.SetLastSeen(sessionOf(r), s.sessions.Now().Add(-time.Duration(ago)*time.Second))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "set_ago": ago})
}

func (s *Server) handleDebugForce429(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, "forced")
}
