package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithEnv(t *testing.T) {
	t.Setenv("CAPSTONE_CONFIG_PATH", "")
	t.Setenv("ADMIN_PASSWORD", "admin-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	require.True(t, cfg.Session.CookieSecure)
	require.Equal(t, 5, cfg.RateLimit.LoginAttempts)
	require.Equal(t, 15*time.Minute, cfg.RateLimit.LoginWindow)
	require.Equal(t, 200, cfg.RateLimit.GlobalHourly)
	require.Equal(t, 2000, cfg.RateLimit.GlobalDaily)
	require.Equal(t, 14, cfg.Backup.Keep)
	require.False(t, cfg.Debug.Enabled)
	require.Contains(t, cfg.Security.ContentSecurityPolicy, "frame-ancestors 'none'")
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
auth:
  admin_password: from-file
session:
  idle_timeout: 10m
  cookie_secure: false
backup:
  driver: memory
`), 0o600))

	t.Setenv("CAPSTONE_CONFIG_PATH", path)
	t.Setenv("CAPSTONE_SERVER_PORT", "9100")
	t.Setenv("ENABLE_DEBUG_ROUTES", "1")
	t.Setenv("DEBUG_KEY", "dbg")
	t.Setenv("CAPSTONE_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "from-file", cfg.Auth.AdminPassword)
	require.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	require.False(t, cfg.Session.CookieSecure)
	require.Equal(t, "memory", cfg.Backup.Driver)
	require.True(t, cfg.Debug.Enabled)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "admin-secret")
	t.Setenv("CAPSTONE_SERVER_PORT", "abc")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate(), "admin credential is required")

	cfg.Auth.AdminPassword = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Session.SigningKey = "short"
	require.Error(t, cfg.Validate())
	cfg.Session.SigningKey = ""

	cfg.DB.Driver = "postgres"
	require.Error(t, cfg.Validate())
	cfg.DB.DSN = "postgres://localhost/capstone"
	require.NoError(t, cfg.Validate())

	cfg.Debug.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Debug.Enabled = false
	cfg.Backup.Driver = "s3"
	require.Error(t, cfg.Validate())
}
