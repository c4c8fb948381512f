package transport

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
)

func TestIdleTimeout_BlocksWritesAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client()
	admin.loginAs(adminPassword)

	env.clock.Advance(29 * time.Minute)
	require.Equal(t, http.StatusCreated, admin.post("/api/deliverables", samplePayloads["deliverables"]).status)

	// Activity above reset the idle clock.
	env.clock.Advance(29 * time.Minute)
	require.Equal(t, true, admin.get("/api/auth/status").json(t)["authenticated"])

	env.clock.Advance(31 * time.Minute)
	resp := admin.post("/api/deliverables", samplePayloads["deliverables"])
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Session expired", resp.json(t)["error"])

	// Reads continue anonymously; writes need a fresh login.
	require.Equal(t, false, admin.get("/api/auth/status").json(t)["authenticated"])
	require.Len(t, admin.get("/api/deliverables").list(t), 1)
	require.Equal(t, http.StatusUnauthorized, admin.post("/api/deliverables", samplePayloads["deliverables"]).status)

	admin.loginAs(adminPassword)
	require.Equal(t, http.StatusCreated, admin.post("/api/deliverables", samplePayloads["deliverables"]).status)

	typ := activity.TypeSessionExpired
	entries, err := env.activity.GetRecentActivity(context.Background(), activity.ListActivityOptions{ActivityType: &typ})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "admin", entries[0].Actor)
}

func TestIdleTimeout_ReadClearsExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.client()
	viewer.loginAs(viewerPassword)

	env.clock.Advance(31 * time.Minute)
	resp := viewer.get("/api/auth/session-info")
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Authentication required", resp.json(t)["error"])
	require.Equal(t, 0, env.sessions.Len())
}

func TestIdleTimeout_LoginAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	admin := env.client()
	admin.loginAs(adminPassword)

	env.clock.Advance(time.Hour)
	resp := admin.login(viewerPassword)
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "viewer", admin.get("/api/auth/status").json(t)["role"])
}

func TestGuardOrder(t *testing.T) {
	env := newTestEnv(t)

	// Anonymous without a token: authentication is reported before CSRF.
	anon := env.client()
	resp := anon.post("/api/deliverables", samplePayloads["deliverables"])
	require.Equal(t, http.StatusUnauthorized, resp.status)

	// Viewer without a token: role is reported before CSRF.
	viewer := env.client()
	viewer.loginAs(viewerPassword)
	viewer.csrf = ""
	resp = viewer.post("/api/deliverables", samplePayloads["deliverables"])
	require.Equal(t, http.StatusForbidden, resp.status)

	records, err := env.entities.List(context.Background(), entity.Deliverable)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	responses := map[string]response{
		"ok":           c.get("/api/auth/status"),
		"not found":    c.get("/api/missing"),
		"unauthorized": c.post("/api/deliverables", samplePayloads["deliverables"]),
		"login failed": c.login(""),
		"health":       c.get("/health"),
	}
	for name, resp := range responses {
		h := resp.header
		require.Equal(t, "DENY", h.Get("X-Frame-Options"), name)
		require.Equal(t, "nosniff", h.Get("X-Content-Type-Options"), name)
		require.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"), name)
		require.Equal(t, "noindex, nofollow", h.Get("X-Robots-Tag"), name)
		require.Equal(t, "no-store, no-cache, must-revalidate, private", h.Get("Cache-Control"), name)
		csp := h.Get("Content-Security-Policy")
		for _, directive := range []string{"default-src 'self'", "object-src 'none'", "frame-ancestors 'none'"} {
			require.Contains(t, csp, directive, name)
		}
	}
}

func TestGlobalRateLimit(t *testing.T) {
	env := newTestEnv(t, withGlobalHourly(3))
	c := env.client()

	for range 3 {
		require.Equal(t, http.StatusOK, c.get("/health").status)
	}
	resp := c.get("/health")
	require.Equal(t, http.StatusTooManyRequests, resp.status)
	require.Equal(t, "Rate limit exceeded", resp.json(t)["error"])
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	c.login("wrong")
	c.post("/api/deliverables", samplePayloads["deliverables"])
	c.get("/api/deliverables")

	resp := c.get("/metrics")
	require.Equal(t, http.StatusOK, resp.status)
	body := string(resp.body)
	require.Contains(t, body, `capstone_login_attempts_total{result="failed"} 1`)
	require.Contains(t, body, `capstone_guard_denials_total{reason="authentication"} 1`)
	require.Contains(t, body, "capstone_login_limiter_keys 1")
	require.Contains(t, body, "capstone_login_limiter_attempts 1")
	require.True(t, strings.Contains(body, `route="/api/deliverables`), body)
}
