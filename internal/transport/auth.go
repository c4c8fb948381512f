package transport

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
)

type loginResponse struct {
	Success     bool             `json:"success"`
	Role        auth.Role        `json:"role"`
	Message     string           `json:"message"`
	Permissions auth.Permissions `json:"permissions"`
}

type authStatusResponse struct {
	Authenticated bool             `json:"authenticated"`
	Role          *auth.Role       `json:"role"`
	Permissions   auth.Permissions `json:"permissions"`
}

type sessionInfoResponse struct {
	Role               auth.Role        `json:"role"`
	LoginTime          *time.Time       `json:"login_time"`
	SessionDuration    string           `json:"session_duration"`
	Permissions        auth.Permissions `json:"permissions"`
	CanChangePasswords bool             `json:"can_change_passwords"`
}

var grantMessages = map[auth.Role]string{
	auth.RoleAdmin:  "Admin access granted",
	auth.RoleViewer: "Viewer access granted",
}

// handleLogin verifies the shared password. Every attempt counts toward the
// per-address limit, including malformed ones.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := clientIP(r)

	allowed, retryAfter, err := s.loginLimiter.Allow(ctx, "login:"+ip)
	if err != nil {
		writeInternalError(w, s.logger, "login rate limiter failed", err)
		return
	}
	if !allowed {
		s.metrics.login("throttled")
		s.metrics.denied("rate_limit")
		s.logger.Warn("login throttled", "remote", ip)
		s.activity.Record(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeLoginThrottled,
			Summary:      "Login attempts throttled",
			Details:      ip,
		})
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		writeJSON(w, http.StatusTooManyRequests, statusResponse{Message: "Too many attempts"})
		return
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil || len(body) == 0 {
		s.metrics.login("invalid")
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "No data provided"})
		return
	}
	password, _ := body["password"].(string)

	role, ok := s.credentials.Verify(password)
	if !ok {
		s.metrics.login("failed")
		s.logger.Info("login failed", "remote", ip)
		s.activity.Record(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeLoginFailed,
			Summary:      "Login failed",
			Details:      ip,
		})
		writeJSON(w, http.StatusUnauthorized, statusResponse{Message: "Invalid password"})
		return
	}

	if err := s.sessions.Login(sessionOf(r), role); err != nil {
		writeInternalError(w, s.logger, "failed to start session", err)
		return
	}

	s.metrics.login("succeeded")
	s.logger.Info("login succeeded", "role", role, "remote", ip)
	s.activity.Record(activity.WithActor(ctx, string(role)), &activity.ActivityEntry{
		ActivityType: activity.TypeLoginSucceeded,
		Summary:      fmt.Sprintf("%s logged in", role),
		Details:      ip,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Role:        role,
		Message:     grantMessages[role],
		Permissions: auth.PermissionsFor(role),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	if sess.Authenticated {
		s.activity.Record(r.Context(), &activity.ActivityEntry{
			ActivityType: activity.TypeLogout,
			Summary:      fmt.Sprintf("%s logged out", sess.Role),
		})
	}
	s.sessions.Logout(sess)
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Logged out successfully"})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	resp := authStatusResponse{
		Authenticated: sess.Authenticated,
		Permissions:   auth.PermissionsFor(auth.RoleNone),
	}
	if sess.Authenticated {
		role := sess.Role
		resp.Role = &role
		resp.Permissions = auth.PermissionsFor(role)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess := sessionOf(r)
	resp := sessionInfoResponse{
		Role:               sess.Role,
		LoginTime:          sess.LoginAt,
		Permissions:        auth.PermissionsFor(sess.Role),
		CanChangePasswords: sess.Role == auth.RoleAdmin,
	}
	if sess.LoginAt != nil {
		resp.SessionDuration = s.sessions.Now().Sub(*sess.LoginAt).Truncate(time.Second).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := s.sessions.CSRFToken(sessionOf(r))
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}
