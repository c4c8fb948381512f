package transport

import (
	"errors"
	"net/http"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
)

// access is the role a route requires.
type access int

const (
	public access = iota
	authenticated
	adminOnly
)

// csrfPolicy says whether a route validates the session-bound CSRF token.
type csrfPolicy bool

const (
	csrfExempt   csrfPolicy = false
	csrfRequired csrfPolicy = true
)

// CSRF token headers, checked in order.
var csrfHeaders = []string{"X-CSRFToken", "X-CSRF-Token"}

func csrfToken(r *http.Request) string {
	for _, h := range csrfHeaders {
		if v := r.Header.Get(h); v != "" {
			return v
		}
	}
	return ""
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// protect wraps h in the route guards. Authentication is checked first,
// then role, then the CSRF token on state-changing methods; the first
// failure answers the request and h never runs.
func (s *Server) protect(level access, csrf csrfPolicy, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionOf(r)
		state := sess.State()

		var err error
		switch level {
		case authenticated:
			err = auth.RequireAuthenticated(state)
		case adminOnly:
			err = auth.RequireAdmin(state)
		}
		if err == nil && csrf == csrfRequired && !safeMethod(r.Method) {
			err = s.sessions.ValidateCSRF(sess, csrfToken(r))
		}
		if err != nil {
			s.deny(w, r, err)
			return
		}

		ctx := r.Context()
		if state.Authenticated {
			ctx = activity.WithActor(ctx, string(state.Role))
		}
		h(w, r.WithContext(ctx))
	}
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var reason, message string
	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired):
		status, reason, message = http.StatusUnauthorized, "authentication", "Authentication required"
	case errors.Is(err, auth.ErrAdminRequired):
		status, reason, message = http.StatusForbidden, "role", "Admin access required"
	case errors.Is(err, session.ErrCSRFTokenMissing), errors.Is(err, session.ErrCSRFTokenInvalid):
		status, reason, message = http.StatusBadRequest, "csrf", "CSRF validation failed"
	default:
		writeInternalError(w, s.logger, "guard failed", err)
		return
	}
	s.metrics.denied(reason)
	s.logger.Debug("request denied", "method", r.Method, "path", r.URL.Path, "reason", reason)
	writeError(w, status, message)
}

// loginPath may follow an expiry directly; it is how the client recovers.
const loginPath = "/api/auth/login"

// idleTimeout clears sessions inactive for longer than the idle limit. An
// expired session turns a write into 401 "Session expired"; reads continue
// anonymously. Surviving sessions are touched.
func (s *Server) idleTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionOf(r)
		role := sess.Role
		if s.sessions.CheckIdle(sess) {
			s.metrics.sessionExpired()
			s.metrics.denied("idle")
			s.logger.Info("session expired", "role", role, "method", r.Method, "path", r.URL.Path)
			s.activity.Record(activity.WithActor(r.Context(), string(role)), &activity.ActivityEntry{
				ActivityType: activity.TypeSessionExpired,
				Summary:      "Session expired after inactivity",
			})
			if !safeMethod(r.Method) && r.URL.Path != loginPath {
				writeError(w, http.StatusUnauthorized, "Session expired")
				return
			}
		}
		s.sessions.Touch(sess)
		next.ServeHTTP(w, r)
	})
}
