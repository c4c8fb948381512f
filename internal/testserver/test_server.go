// Package testserver runs the fully wired hub behind httptest for
// end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/capstonehub/capstone-hub/internal/app"
	"github.com/capstonehub/capstone-hub/internal/blob/memory"
	"github.com/capstonehub/capstone-hub/internal/config"
)

const (
	AdminPassword  = "admin-secret"
	ViewerPassword = "viewer-secret"
	DebugKey       = "debug-secret"
)

// Clock is a settable time source shared by every service of the server.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Clock  *Clock
}

// New starts a server on a private in-memory SQLite database with debug
// routes enabled. configure may adjust the configuration first.
func New(t *testing.T, configure ...func(*config.Config)) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Auth.AdminPassword = AdminPassword
	cfg.Auth.ViewerPassword = ViewerPassword
	cfg.Session.SigningKey = strings.Repeat("s", 32)
	cfg.Session.CookieSecure = false
	cfg.Debug = config.DebugConfig{Enabled: true, Key: DebugKey}
	cfg.Backup.Driver = "memory"
	cfg.RateLimit.GlobalHourly = 0
	cfg.RateLimit.GlobalDaily = 0
	for _, fn := range configure {
		fn(&cfg)
	}
	require.NoError(t, cfg.Validate())

	clock := &Clock{t: time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)}
	a, err := app.New(context.Background(), cfg, nil, app.WithClock(clock.Now))
	require.NoError(t, err)

	server := httptest.NewServer(a.Handler)
	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, Clock: clock}
}

// Client returns an HTTP client with its own cookie jar, so each client is
// a separate browser session.
func (ts *TestServer) Client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// BackupBytes returns a stored backup object.
func (ts *TestServer) BackupBytes(t *testing.T, key string) []byte {
	t.Helper()
	store, ok := ts.App.Blobs.(*memory.Store)
	require.True(t, ok, "backup store is not in memory")
	payload, ok := store.Bytes(key)
	require.True(t, ok, "missing backup %s", key)
	return payload
}
