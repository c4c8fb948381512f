package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
)

func TestAuthStatus_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp := c.get("/api/auth/status")
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	require.Equal(t, false, body["authenticated"])
	require.Nil(t, body["role"])
	require.Equal(t, false, body["permissions"].(map[string]any)["can_export"])
}

func TestLogin_Roles(t *testing.T) {
	tests := []struct {
		password string
		role     string
		message  string
		canEdit  bool
	}{
		{adminPassword, "admin", "Admin access granted", true},
		{viewerPassword, "viewer", "Viewer access granted", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			env := newTestEnv(t)
			c := env.client()

			resp := c.login(tt.password)
			require.Equal(t, http.StatusOK, resp.status)
			body := resp.json(t)
			require.Equal(t, true, body["success"])
			require.Equal(t, tt.role, body["role"])
			require.Equal(t, tt.message, body["message"])
			require.Equal(t, tt.canEdit, body["permissions"].(map[string]any)["can_edit"])

			status := c.get("/api/auth/status").json(t)
			require.Equal(t, true, status["authenticated"])
			require.Equal(t, tt.role, status["role"])
		})
	}
}

func TestLogin_SessionCookie(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp := c.login(adminPassword)
	require.Equal(t, http.StatusOK, resp.status)

	cookies := (&http.Response{Header: resp.header}).Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	require.Equal(t, "capstone_session", ck.Name)
	require.True(t, ck.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.Equal(t, "/", ck.Path)
	require.Zero(t, ck.MaxAge)
	require.Equal(t, 1, env.sessions.Len())
}

func TestLogin_Rejections(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp := c.login("wrong")
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, map[string]any{"success": false, "message": "Invalid password"}, resp.json(t))

	resp = c.post("/api/auth/login", "")
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Equal(t, "No data provided", resp.json(t)["message"])

	resp = c.post("/api/auth/login", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.status)

	require.Equal(t, false, c.get("/api/auth/status").json(t)["authenticated"])

	entries, err := env.activity.GetRecentActivity(context.Background(), activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeLoginFailed, entries[0].ActivityType)
}

func TestLogin_Throttled(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	for range 5 {
		require.Equal(t, http.StatusUnauthorized, c.login("wrong").status)
	}

	// The correct password is refused too once the window is full.
	resp := c.login(adminPassword)
	require.Equal(t, http.StatusTooManyRequests, resp.status)
	require.Equal(t, map[string]any{"success": false, "message": "Too many attempts"}, resp.json(t))
	require.Equal(t, "900", resp.header.Get("Retry-After"))
	require.Equal(t, false, c.get("/api/auth/status").json(t)["authenticated"])

	env.clock.Advance(15*time.Minute + time.Second)
	require.Equal(t, http.StatusOK, c.login(adminPassword).status)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.loginAs(adminPassword)

	resp := c.post("/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, map[string]any{"success": true, "message": "Logged out successfully"}, resp.json(t))

	require.Equal(t, false, c.get("/api/auth/status").json(t)["authenticated"])
	require.Equal(t, 0, env.sessions.Len())
}

func TestLogout_RequiresCSRF(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.loginAs(adminPassword)
	c.csrf = ""

	resp := c.post("/api/auth/logout", nil)
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Equal(t, "CSRF validation failed", resp.json(t)["error"])
	require.Equal(t, true, c.get("/api/auth/status").json(t)["authenticated"])
}

func TestSessionInfo(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	require.Equal(t, http.StatusUnauthorized, c.get("/api/auth/session-info").status)

	c.loginAs(viewerPassword)
	env.clock.Advance(90 * time.Second)

	resp := c.get("/api/auth/session-info")
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	require.Equal(t, "viewer", body["role"])
	require.Equal(t, "1m30s", body["session_duration"])
	require.Equal(t, false, body["can_change_passwords"])
	require.NotEmpty(t, body["login_time"])
}

func TestCSRFToken_StableAcrossLogin(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	token := c.fetchCSRF()
	require.Equal(t, token, c.get("/api/csrf-token").json(t)["csrf_token"])

	require.Equal(t, http.StatusOK, c.login(adminPassword).status)
	require.Equal(t, token, c.get("/api/csrf-token").json(t)["csrf_token"])
}
