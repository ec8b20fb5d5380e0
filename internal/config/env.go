package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment keys.
const (
	EnvWebhookURL         = "SLACK_WEBHOOK_URL"
	EnvErrorRateThreshold = "ERROR_RATE_THRESHOLD"
	EnvWindowSize         = "WINDOW_SIZE"
	EnvAlertCooldownSec   = "ALERT_COOLDOWN_SEC"
	EnvLogPath            = "NGINX_LOG_PATH"
	EnvReadExisting       = "READ_EXISTING_LOGS"
	EnvMaintenanceMode    = "MAINTENANCE_MODE"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvLogOutput          = "LOG_OUTPUT"
	EnvStatusAddr         = "STATUS_ADDR"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Only variables that are set (non-empty) take effect.
func (c *Config) applyEnvOverrides() error {
	setString(&c.Alerts.WebhookURL, EnvWebhookURL)
	setString(&c.Watcher.LogPath, EnvLogPath)
	setString(&c.Monitoring.LogLevel, EnvLogLevel)
	setString(&c.Monitoring.LogFormat, EnvLogFormat)
	setString(&c.Monitoring.LogOutput, EnvLogOutput)
	setString(&c.Monitoring.StatusAddr, EnvStatusAddr)
	setBool(&c.Watcher.ReadExisting, EnvReadExisting)
	setBool(&c.Alerts.Maintenance, EnvMaintenanceMode)

	if v := os.Getenv(EnvErrorRateThreshold); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvErrorRateThreshold, v, err)
		}
		c.Watcher.ErrorRateThreshold = f
	}

	if v := os.Getenv(EnvWindowSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWindowSize, v, err)
		}
		c.Watcher.WindowSize = n
	}

	if v := os.Getenv(EnvAlertCooldownSec); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvAlertCooldownSec, v, err)
		}
		c.Watcher.AlertCooldown = time.Duration(n) * time.Second
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setBool treats only a case-insensitive "true" as true.
func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}
