// Package config loads kuberift's configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/odvcencio/kuberift/pkg/errors"
	"github.com/odvcencio/kuberift/pkg/logging"
)

const (
	// MinSecretLength is the minimum length of the token signing secret.
	MinSecretLength = 32
)

// Default configuration values exported for documentation and validation
const (
	DefaultBind              = "127.0.0.1:8022"
	DefaultFPS               = 10
	DefaultMaxSessions       = 64
	DefaultConnectRate       = 30 // per principal, per minute
	DefaultConnectBurst      = 5
	DefaultTokenTTL          = 12 * time.Hour
	DefaultClaim             = "sub"
	DefaultPingInterval      = 30 * time.Second
	DefaultInactivityTimeout = time.Hour
)

// Config represents the complete kuberift configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Auth      AuthConfig      `yaml:"auth"`
	Kube      KubeConfig      `yaml:"kube"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig controls the HTTP/WebSocket server.
type ServerConfig struct {
	Bind              string        `yaml:"bind"`
	MaxSessions       int           `yaml:"max_sessions"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	PublicMetrics     bool          `yaml:"public_metrics"`
	ConnectRate       float64       `yaml:"connect_rate"` // sessions per minute per user, 0 disables
	ConnectBurst      int           `yaml:"connect_burst"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"` // 0 disables
}

// DashboardConfig controls every session's render loop.
type DashboardConfig struct {
	FPS       int    `yaml:"fps"`
	Namespace string `yaml:"namespace"` // empty or "*" means all namespaces
	Term      string `yaml:"term"`      // terminfo entry used when the client does not send one
}

// AuthConfig controls access tokens.
type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	RequireToken bool          `yaml:"require_token"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	Claim        string        `yaml:"claim"` // "sub" or "email"
}

// KubeConfig selects the cluster.
type KubeConfig struct {
	Kubeconfig  string  `yaml:"kubeconfig"`
	Context     string  `yaml:"context"`
	Impersonate bool    `yaml:"impersonate"`
	QPS         float32 `yaml:"qps"`
	Burst       int     `yaml:"burst"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Bind:              DefaultBind,
			MaxSessions:       DefaultMaxSessions,
			ConnectRate:       DefaultConnectRate,
			ConnectBurst:      DefaultConnectBurst,
			PingInterval:      DefaultPingInterval,
			InactivityTimeout: DefaultInactivityTimeout,
		},
		Dashboard: DashboardConfig{
			FPS: DefaultFPS,
		},
		Auth: AuthConfig{
			TokenTTL: DefaultTokenTTL,
			Claim:    DefaultClaim,
		},
		Kube: KubeConfig{
			Impersonate: true,
			QPS:         50,
			Burst:       100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, ~/.kuberift/config.yaml, ./.kuberift/config.yaml, environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".kuberift", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, kerrors.Wrap(err, kerrors.ErrCodeConfigLoad, "loading user config").WithContext("path", userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", ".kuberift", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, kerrors.Wrap(err, kerrors.ErrCodeConfigLoad, "loading project config").WithContext("path", projectConfigPath)
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, expandHomeDir(path)); err != nil {
		return nil, kerrors.Wrap(err, kerrors.ErrCodeConfigLoad, "loading config").WithContext("path", path)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	cfg.Kube.Kubeconfig = expandHomeDir(cfg.Kube.Kubeconfig)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_BIND")); v != "" {
		cfg.Server.Bind = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_FPS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.FPS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MaxSessions = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_INACTIVITY_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.InactivityTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_ALLOWED_ORIGINS")); v != "" {
		cfg.Server.AllowedOrigins = splitCommaList(v)
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_KUBECONFIG")); v != "" {
		cfg.Kube.Kubeconfig = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_CONTEXT")); v != "" {
		cfg.Kube.Context = v
	}
	if v := os.Getenv("KUBERIFT_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if val, ok := envBool("KUBERIFT_REQUIRE_TOKEN"); ok {
		cfg.Auth.RequireToken = val
	}
	if v := strings.TrimSpace(os.Getenv("KUBERIFT_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if val, ok := envBool("KUBERIFT_TRACING"); ok {
		cfg.Tracing.Enabled = val
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return kerrors.New(kerrors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return invalid("server.bind must be set")
	}
	if c.Server.MaxSessions < 0 {
		return invalid("server.max_sessions must be >= 0")
	}
	if c.Server.ConnectRate < 0 {
		return invalid("server.connect_rate must be >= 0")
	}
	if c.Server.ConnectRate > 0 && c.Server.ConnectBurst < 1 {
		return invalid("server.connect_burst must be >= 1 when connect_rate is set")
	}
	if c.Server.PingInterval < 0 {
		return invalid("server.ping_interval must be >= 0")
	}
	if c.Server.InactivityTimeout < 0 {
		return invalid("server.inactivity_timeout must be >= 0")
	}
	if !isLoopbackBindAddress(c.Server.Bind) && !c.Auth.RequireToken {
		return invalid("server.bind %s is not loopback; set auth.require_token", c.Server.Bind)
	}

	if c.Dashboard.FPS < 1 || c.Dashboard.FPS > 120 {
		return invalid("dashboard.fps must be between 1 and 120, got %d", c.Dashboard.FPS)
	}

	if c.Auth.RequireToken && len(c.Auth.Secret) < MinSecretLength {
		return invalid("auth.secret must be at least %d characters when tokens are required", MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return invalid("auth.token_ttl must be > 0")
	}
	switch c.Auth.Claim {
	case "sub", "email":
	default:
		return invalid("invalid auth.claim: %s (valid: sub, email)", c.Auth.Claim)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level: %v", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return invalid("invalid logging.format: %s (valid: json, text)", c.Logging.Format)
	}
	return nil
}

// ValidationWarnings lists settings that are valid but risky.
func (c *Config) ValidationWarnings() []string {
	var warnings []string
	if !isLoopbackBindAddress(c.Server.Bind) && c.Server.PublicMetrics {
		warnings = append(warnings, "metrics are public on a non-loopback bind address")
	}
	if !c.Kube.Impersonate && c.Auth.RequireToken {
		warnings = append(warnings, "impersonation is off: every user acts with the server's own cluster credentials")
	}
	return warnings
}

// LoggerOptions converts the logging section for logging.New.
func (c *Config) LoggerOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, Format: c.Logging.Format}
}
