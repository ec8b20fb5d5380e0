// Package accesslog turns proxy access-log lines into typed entries.
//
// DESIGN: The proxy writes one JSON object per request. Only five fields are
// read; everything else on the line is ignored. A line that is not a JSON
// object yields no entry. A field of the wrong type degrades to its default
// instead of rejecting the whole line.
package accesslog

// Field defaults applied when a field is absent, null, or of the wrong type.
const (
	DefaultPool           = "unknown"
	DefaultStatus         = 0
	DefaultUpstreamStatus = "-"
	DefaultRequestTime    = 0.0
	DefaultRequest        = "-"
)

// Outcome classes used when reporting an entry.
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
)

// Entry is one parsed access-log record.
type Entry struct {
	Pool           string  `json:"pool"`
	Status         int     `json:"status"`
	UpstreamStatus string  `json:"upstream_status"`
	RequestTime    float64 `json:"request_time"`
	Request        string  `json:"request"`
}

// Tracked reports whether the entry names a real pool. Entries for "", "-"
// or "unknown" are consumed from the stream but never update watcher state.
func (e Entry) Tracked() bool {
	switch e.Pool {
	case "", "-", DefaultPool:
		return false
	}
	return true
}

// ServerError reports whether the status counts as an error (5xx or above).
func (e Entry) ServerError() bool {
	return e.Status >= 500
}

// Outcome classifies the status for display.
func (e Entry) Outcome() string {
	switch {
	case e.Status < 400:
		return OutcomeOK
	case e.Status < 500:
		return OutcomeClientError
	default:
		return OutcomeServerError
	}
}
