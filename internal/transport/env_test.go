package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/capstonehub/capstone-hub/internal/backup"
	"github.com/capstonehub/capstone-hub/internal/blob/memory"
	"github.com/capstonehub/capstone-hub/internal/config"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	memstore "github.com/capstonehub/capstone-hub/internal/memory"
	"github.com/capstonehub/capstone-hub/internal/ratelimit"
)

const (
	adminPassword  = "admin-pass"
	viewerPassword = "viewer-pass"
	debugKey       = "debug-key"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	t        *testing.T
	server   *httptest.Server
	clock    *fakeClock
	entities *entity.Service
	activity *activity.Service
	sessions *memstore.SessionRepository
	blobs    *memory.Store
	metrics  *Metrics
}

type envOption func(*Config)

func withDebug() envOption {
	return func(c *Config) { c.Debug = config.DebugConfig{Enabled: true, Key: debugKey} }
}

func withoutBackups() envOption {
	return func(c *Config) { c.Backups = nil }
}

func withGlobalHourly(n int) envOption {
	return func(c *Config) { c.RateLimit.GlobalHourly = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	clock := &fakeClock{t: time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC)}
	sessionRepo := memstore.NewSessionRepository()
	activities := activity.NewService(memstore.NewActivityRepository(), nil)
	entities := entity.NewService(memstore.NewRecordRepository(), activities, nil).WithClock(clock.Now)
	sessions := session.NewService(sessionRepo, session.Config{Clock: clock.Now}, nil)

	creds, err := auth.NewCredentialStore(auth.Secret{Plain: adminPassword}, auth.Secret{Plain: viewerPassword})
	require.NoError(t, err)
	limiter, err := ratelimit.NewMemoryRateLimiter(ratelimit.Config{Limit: 5, Window: 15 * time.Minute, Clock: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })

	blobs := memory.New()
	metrics := NewMetrics()
	cfg := Config{
		Entities:     entities,
		Sessions:     sessions,
		Activity:     activities,
		Credentials:  creds,
		LoginLimiter: limiter,
		Backups:      backup.NewService(entities, blobs, activities, backup.Config{MinInterval: time.Minute, Clock: clock.Now}, nil),
		Metrics:      metrics,
		Cookie:       CookieConfig{Name: "capstone_session", HashKey: bytes.Repeat([]byte("k"), 32)},
		MetricsPath:  "/metrics",
		StartedAt:    clock.Now(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := httptest.NewServer(NewServer(cfg))
	t.Cleanup(server.Close)

	return &testEnv{
		t:        t,
		server:   server,
		clock:    clock,
		entities: entities,
		activity: activities,
		sessions: sessionRepo,
		blobs:    blobs,
		metrics:  metrics,
	}
}

// client is a browser stand-in: it keeps cookies and the CSRF token.
type client struct {
	t    *testing.T
	base string
	http *http.Client
	csrf string
}

func (e *testEnv) client() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &client{t: e.t, base: e.server.URL, http: &http.Client{Jar: jar}}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) list(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (c *client) do(method, path string, body any, header ...string) response {
	c.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set("X-CSRFToken", c.csrf)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}
}

func (c *client) get(path string, header ...string) response {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil, header...)
}

func (c *client) post(path string, body any, header ...string) response {
	c.t.Helper()
	return c.do(http.MethodPost, path, body, header...)
}

// fetchCSRF stores the session's CSRF token for later writes.
func (c *client) fetchCSRF() string {
	c.t.Helper()
	resp := c.get("/api/csrf-token")
	require.Equal(c.t, http.StatusOK, resp.status)
	c.csrf = resp.json(c.t)["csrf_token"].(string)
	require.NotEmpty(c.t, c.csrf)
	return c.csrf
}

func (c *client) login(password string) response {
	c.t.Helper()
	return c.post("/api/auth/login", map[string]any{"password": password})
}

// loginAs logs in and fetches a CSRF token, failing the test on error.
func (c *client) loginAs(password string) {
	c.t.Helper()
	c.fetchCSRF()
	resp := c.login(password)
	require.Equal(c.t, http.StatusOK, resp.status, string(resp.body))
}

// samplePayloads holds a valid create body for every entity type.
var samplePayloads = map[string]map[string]any{
	"deliverables":       {"title": "Project charter", "phase": "Foundation & Planning", "week_number": 2},
	"business-processes": {"name": "Invoice intake", "department": "Finance"},
	"ai-technologies":    {"name": "Document AI", "category": "Document Processing"},
	"software-tools":     {"name": "HubSpot", "category": "CRM", "cloud_based": true},
	"research-items":     {"title": "Stakeholder interviews", "research_type": "Primary"},
	"integrations":       {"name": "CRM to ERP sync", "platform": "Power Automate"},
}

// noteField returns a free-text field every update test can write to.
func noteField(plural string) string {
	if plural == "integrations" {
		return "configuration_notes"
	}
	return "notes"
}
