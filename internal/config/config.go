// Package config loads and validates the watcher configuration.
//
// DESIGN: Defaults first, then an optional YAML file, then environment
// variables. The environment keys match what the proxy deployment already
// exports (SLACK_WEBHOOK_URL, NGINX_LOG_PATH, ...), so the watcher runs with
// no file at all. The webhook URL has no default and is required.
//
// FILES:
//   - config.go:     Root Config struct, Load(), Validate()
//   - env.go:        Environment keys and overrides
//   - monitoring.go: Logging and status server settings
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLogPath            = "/var/log/nginx/access.log"
	DefaultErrorRateThreshold = 2.0
	DefaultWindowSize         = 200
	DefaultAlertCooldown      = 300 * time.Second
	DefaultWebhookTimeout     = 5 * time.Second
	DefaultFilePollInterval   = 2 * time.Second
	DefaultContentWait        = 30 * time.Second
	DefaultIdleInterval       = 100 * time.Millisecond
)

// Config is the root configuration for the watcher.
type Config struct {
	Watcher    WatcherConfig    `yaml:"watcher"`    // What to follow and when to alert
	Alerts     AlertsConfig     `yaml:"alerts"`     // Webhook delivery
	Follower   FollowerConfig   `yaml:"follower"`   // File polling timings
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging and status server
}

// WatcherConfig controls log following and alert thresholds.
type WatcherConfig struct {
	LogPath            string        `yaml:"log_path"`             // Access log to follow
	ReadExisting       bool          `yaml:"read_existing"`        // Replay backlog instead of seeking to end
	WindowSize         int           `yaml:"window_size"`          // Rolling window capacity
	ErrorRateThreshold float64       `yaml:"error_rate_threshold"` // Percent; alert fires strictly above
	AlertCooldown      time.Duration `yaml:"alert_cooldown"`       // Minimum spacing between same-kind alerts
}

// AlertsConfig controls the notification webhook.
type AlertsConfig struct {
	WebhookURL  string        `yaml:"webhook_url"`      // Slack-compatible incoming webhook
	Timeout     time.Duration `yaml:"timeout"`          // Per-request timeout
	Maintenance bool          `yaml:"maintenance_mode"` // Suppress all outbound alerts
	Footer      string        `yaml:"footer"`           // Attachment footer label
}

// FollowerConfig controls how the log file is polled.
type FollowerConfig struct {
	FilePollInterval time.Duration `yaml:"file_poll_interval"` // Wait between existence/size checks
	ContentWait      time.Duration `yaml:"content_wait"`       // Max wait for a non-empty file
	IdleInterval     time.Duration `yaml:"idle_interval"`      // Sleep when no new line is available
}

// Default returns the built-in configuration. WebhookURL is left empty.
func Default() *Config {
	return &Config{
		Watcher: WatcherConfig{
			LogPath:            DefaultLogPath,
			ReadExisting:       true,
			WindowSize:         DefaultWindowSize,
			ErrorRateThreshold: DefaultErrorRateThreshold,
			AlertCooldown:      DefaultAlertCooldown,
		},
		Alerts: AlertsConfig{
			Timeout: DefaultWebhookTimeout,
		},
		Follower: FollowerConfig{
			FilePollInterval: DefaultFilePollInterval,
			ContentWait:      DefaultContentWait,
			IdleInterval:     DefaultIdleInterval,
		},
		Monitoring: MonitoringConfig{
			LogLevel:  "info",
			LogFormat: "auto",
			LogOutput: "stdout",
		},
	}
}

// envPattern matches ${VAR:-default} or ${VAR}.
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults expands environment variables with support for default values.
// Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	})
}

// Load builds the configuration. An empty path means environment only.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromEnv builds the configuration from defaults and the environment.
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromBytes parses configuration from raw YAML bytes on top of the
// defaults. Supports ${VAR:-default} env var expansion, env overrides, and
// validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Alerts.WebhookURL == "" {
		return fmt.Errorf("alerts.webhook_url is required (set %s)", EnvWebhookURL)
	}
	u, err := url.Parse(c.Alerts.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid alerts.webhook_url: must be an absolute http(s) URL")
	}
	if c.Alerts.Timeout <= 0 {
		return fmt.Errorf("alerts.timeout must be positive")
	}

	if c.Watcher.LogPath == "" {
		return fmt.Errorf("watcher.log_path is required")
	}
	if c.Watcher.WindowSize < 1 {
		return fmt.Errorf("invalid watcher.window_size: %d (must be >= 1)", c.Watcher.WindowSize)
	}
	if c.Watcher.ErrorRateThreshold < 0 {
		return fmt.Errorf("invalid watcher.error_rate_threshold: %v (must be >= 0)", c.Watcher.ErrorRateThreshold)
	}
	if c.Watcher.AlertCooldown < 0 {
		return fmt.Errorf("invalid watcher.alert_cooldown: %v (must be >= 0)", c.Watcher.AlertCooldown)
	}

	if c.Follower.FilePollInterval <= 0 {
		return fmt.Errorf("follower.file_poll_interval must be positive")
	}
	if c.Follower.ContentWait < 0 {
		return fmt.Errorf("follower.content_wait must not be negative")
	}
	if c.Follower.IdleInterval <= 0 {
		return fmt.Errorf("follower.idle_interval must be positive")
	}

	return c.Monitoring.Validate()
}
