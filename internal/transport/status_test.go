package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/capstonehub/capstone-hub/internal/version"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.client().get("/health")
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "ok", resp.json(t)["status"])
}

func TestUptime(t *testing.T) {
	env := newTestEnv(t)
	env.clock.Advance(42 * time.Second)

	resp := env.client().get("/api/public/uptime")
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	require.Equal(t, "ok", body["status"])
	require.EqualValues(t, 42, body["uptime_seconds"])
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	resp := env.client().get("/api/version")
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	require.Equal(t, version.Version, body["version"])
	require.Equal(t, version.ReleaseDate, body["release_date"])
	require.Len(t, body["features"], len(version.Features))
}
