// Monitoring configuration - logging and status server settings.
//
// DESIGN: Logging is for operators (zerolog). The status server is an
// optional read-only HTTP view of the watcher counters; it is off unless an
// address is configured.
package config

import (
	"fmt"

	"github.com/compresr/pool-watcher/internal/monitoring"
)

// MonitoringConfig contains all monitoring settings.
type MonitoringConfig struct {
	// Logging settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, console, auto
	LogOutput string `yaml:"log_output"` // stdout, stderr, or file path

	// Status server
	StatusAddr string `yaml:"status_addr"` // e.g. ":9090"; empty disables
}

// Validate checks the monitoring settings.
func (m MonitoringConfig) Validate() error {
	switch m.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid monitoring.log_level: %q", m.LogLevel)
	}
	switch m.LogFormat {
	case "", monitoring.FormatJSON, monitoring.FormatConsole, monitoring.FormatAuto:
	default:
		return fmt.Errorf("invalid monitoring.log_format: %q", m.LogFormat)
	}
	return nil
}

// LoggerConfig converts to the monitoring logger settings.
func (m MonitoringConfig) LoggerConfig() monitoring.LoggerConfig {
	return monitoring.LoggerConfig{
		Level:  m.LogLevel,
		Format: m.LogFormat,
		Output: m.LogOutput,
	}
}
