package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Security  SecurityConfig  `yaml:"security"`
	Debug     DebugConfig     `yaml:"debug"`
	Backup    BackupConfig    `yaml:"backup"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

// DBConfig selects the record store. Driver is one of sqlite, postgres or
// memory; Path is used by sqlite and DSN by postgres.
type DBConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// AuthConfig holds the two shared secrets. A bcrypt hash takes precedence
// over the plaintext value for the same role.
type AuthConfig struct {
	AdminPassword      string `yaml:"admin_password"`
	AdminPasswordHash  string `yaml:"admin_password_hash"`
	ViewerPassword     string `yaml:"viewer_password"`
	ViewerPasswordHash string `yaml:"viewer_password_hash"`
}

type SessionConfig struct {
	SigningKey   string        `yaml:"signing_key"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	PurgeEvery   time.Duration `yaml:"purge_every"`
}

type RateLimitConfig struct {
	LoginAttempts int           `yaml:"login_attempts"`
	LoginWindow   time.Duration `yaml:"login_window"`
	GlobalHourly  int           `yaml:"global_hourly"`
	GlobalDaily   int           `yaml:"global_daily"`
}

type SecurityConfig struct {
	ContentSecurityPolicy string   `yaml:"content_security_policy"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
}

type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Key     string `yaml:"key"`
}

type BackupConfig struct {
	Driver      string        `yaml:"driver"`
	Dir         string        `yaml:"dir"`
	Keep        int           `yaml:"keep"`
	MinInterval time.Duration `yaml:"min_interval"`
	S3          S3Config      `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultContentSecurityPolicy is sent when no policy is configured.
const DefaultContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data:; " +
	"connect-src 'self'; " +
	"object-src 'none'; " +
	"base-uri 'self'; " +
	"form-action 'self'; " +
	"frame-ancestors 'none'"

// Default returns the configuration used before any file or environment
// overrides are applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "data/capstone.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			CookieName:   "capstone_session",
			CookieSecure: true,
			IdleTimeout:  30 * time.Minute,
			PurgeEvery:   10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: 5,
			LoginWindow:   15 * time.Minute,
			GlobalHourly:  200,
			GlobalDaily:   2000,
		},
		Security: SecurityConfig{
			ContentSecurityPolicy: DefaultContentSecurityPolicy,
		},
		Backup: BackupConfig{
			Driver:      "fs",
			Dir:         "backups",
			Keep:        14,
			MinInterval: time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("CAPSTONE_CONFIG_PATH"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can run a server.
func (c Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn required for postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DB.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		errs = append(errs, errors.New("admin password or admin password hash required"))
	}
	if c.Session.SigningKey != "" && len(c.Session.SigningKey) < 32 {
		errs = append(errs, errors.New("session signing key must be at least 32 bytes"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("session idle timeout must be positive"))
	}
	if c.RateLimit.LoginAttempts <= 0 || c.RateLimit.LoginWindow <= 0 {
		errs = append(errs, errors.New("login rate limit must be positive"))
	}
	if c.RateLimit.GlobalHourly < 0 || c.RateLimit.GlobalDaily < 0 {
		errs = append(errs, errors.New("global rate limits cannot be negative"))
	}
	if c.Debug.Enabled && c.Debug.Key == "" {
		errs = append(errs, errors.New("debug key required when debug routes are enabled"))
	}

	switch c.Backup.Driver {
	case "fs", "memory":
	case "s3":
		if c.Backup.S3.Bucket == "" {
			errs = append(errs, errors.New("backup.s3.bucket required for s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backup driver %q", c.Backup.Driver))
	}
	if c.Backup.Keep <= 0 {
		errs = append(errs, errors.New("backup keep must be positive"))
	}

	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("CAPSTONE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	for _, name := range []string{"PORT", "CAPSTONE_SERVER_PORT"} {
		if portStr := os.Getenv(name); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			cfg.Server.Port = port
		}
	}
	if err := envBool("CAPSTONE_TRUST_PROXY", &cfg.Server.TrustProxy); err != nil {
		return err
	}

	if driver := os.Getenv("CAPSTONE_DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dbPath := os.Getenv("CAPSTONE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dsn := os.Getenv("CAPSTONE_DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}

	if level := os.Getenv("CAPSTONE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("CAPSTONE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Auth.AdminPasswordHash = v
	}
	if v := os.Getenv("VIEWER_PASSWORD"); v != "" {
		cfg.Auth.ViewerPassword = v
	}
	if v := os.Getenv("VIEWER_PASSWORD_HASH"); v != "" {
		cfg.Auth.ViewerPasswordHash = v
	}

	if key := os.Getenv("CAPSTONE_SESSION_KEY"); key != "" {
		cfg.Session.SigningKey = key
	}
	if err := envBool("CAPSTONE_COOKIE_SECURE", &cfg.Session.CookieSecure); err != nil {
		return err
	}
	if v := os.Getenv("CAPSTONE_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CAPSTONE_IDLE_TIMEOUT: %w", err)
		}
		cfg.Session.IdleTimeout = d
	}

	if origins := os.Getenv("CAPSTONE_ALLOWED_ORIGINS"); origins != "" {
		cfg.Security.AllowedOrigins = splitList(origins)
	}

	if os.Getenv("ENABLE_DEBUG_ROUTES") == "1" {
		cfg.Debug.Enabled = true
	}
	if key := os.Getenv("DEBUG_KEY"); key != "" {
		cfg.Debug.Key = key
	}

	if driver := os.Getenv("CAPSTONE_BACKUP_DRIVER"); driver != "" {
		cfg.Backup.Driver = driver
	}
	if dir := os.Getenv("CAPSTONE_BACKUP_DIR"); dir != "" {
		cfg.Backup.Dir = dir
	}
	if bucket := os.Getenv("CAPSTONE_BACKUP_S3_BUCKET"); bucket != "" {
		cfg.Backup.S3.Bucket = bucket
	}
	if region := os.Getenv("CAPSTONE_BACKUP_S3_REGION"); region != "" {
		cfg.Backup.S3.Region = region
	}
	if endpoint := os.Getenv("CAPSTONE_BACKUP_S3_ENDPOINT"); endpoint != "" {
		cfg.Backup.S3.Endpoint = endpoint
	}
	if err := envBool("CAPSTONE_BACKUP_S3_PATH_STYLE", &cfg.Backup.S3.PathStyle); err != nil {
		return err
	}

	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
