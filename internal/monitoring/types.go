// Package monitoring - types.go defines shared types.
//
// TYPES:
//   - LoggerConfig: level/format/output for the process logger
//   - Snapshot:     point-in-time copy of the watcher counters
package monitoring

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console, auto
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// Snapshot is a copy of the counters published by the watcher loop.
type Snapshot struct {
	LinesRead        int64   `json:"lines_read"`
	LinesUnparsable  int64   `json:"lines_unparsable"`
	EntriesTracked   int64   `json:"entries_tracked"`
	EntriesIgnored   int64   `json:"entries_ignored"`
	BacklogEntries   int64   `json:"backlog_entries"`
	FailoversSeen    int64   `json:"failovers_seen"`
	AlertsDelivered  int64   `json:"alerts_delivered"`
	AlertsSuppressed int64   `json:"alerts_suppressed"`
	AlertsFailed     int64   `json:"alerts_failed"`
	CurrentPool      string  `json:"current_pool,omitempty"`
	ErrorRate        float64 `json:"error_rate"`
	ErrorRateReady   bool    `json:"error_rate_ready"`
	UptimeSeconds    int64   `json:"uptime_seconds"`
}
