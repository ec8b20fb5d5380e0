package accesslog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/pool-watcher/internal/accesslog"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_FullEntry(t *testing.T) {
	line := []byte(`{"time":"2025-10-30T12:00:00+00:00","pool":"blue","release":"blue-v1","status":502,"upstream_status":"502, 200","request_time":0.132,"request":"GET /version HTTP/1.1"}` + "\n")

	entry, ok := accesslog.Parse(line)

	require.True(t, ok)
	assert.Equal(t, "blue", entry.Pool)
	assert.Equal(t, 502, entry.Status)
	assert.Equal(t, "502, 200", entry.UpstreamStatus)
	assert.InDelta(t, 0.132, entry.RequestTime, 1e-9)
	assert.Equal(t, "GET /version HTTP/1.1", entry.Request)
}

func TestParse_MissingFieldsUseDefaults(t *testing.T) {
	entry, ok := accesslog.Parse([]byte(`{}`))

	require.True(t, ok)
	assert.Equal(t, accesslog.Entry{
		Pool:           "unknown",
		Status:         0,
		UpstreamStatus: "-",
		RequestTime:    0,
		Request:        "-",
	}, entry)
	assert.False(t, entry.Tracked())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "whitespace", line: "   \n"},
		{name: "plain text", line: `127.0.0.1 - - [30/Oct/2025] "GET / HTTP/1.1" 200`},
		{name: "truncated object", line: `{"pool":"blue","status":`},
		{name: "array", line: `[{"pool":"blue"}]`},
		{name: "string", line: `"blue"`},
		{name: "number", line: `200`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := accesslog.Parse([]byte(tt.line))
			assert.False(t, ok)
		})
	}
}

func TestParse_StatusCoercion(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "integer", line: `{"status":503}`, want: 503},
		{name: "numeric string", line: `{"status":"504"}`, want: 504},
		{name: "padded string", line: `{"status":" 200 "}`, want: 200},
		{name: "float truncates", line: `{"status":500.9}`, want: 500},
		{name: "non numeric string", line: `{"status":"oops"}`, want: 0},
		{name: "float string", line: `{"status":"502.5"}`, want: 0},
		{name: "null", line: `{"status":null}`, want: 0},
		{name: "bool", line: `{"status":true}`, want: 0},
		{name: "object", line: `{"status":{"code":500}}`, want: 0},
		{name: "overflow", line: `{"status":1e30}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := accesslog.Parse([]byte(tt.line))
			require.True(t, ok)
			assert.Equal(t, tt.want, entry.Status)
		})
	}
}

func TestParse_WrongTypesDegradeToDefaults(t *testing.T) {
	line := []byte(`{"pool":["blue"],"status":200,"upstream_status":{"a":1},"request_time":"fast","request":false}`)

	entry, ok := accesslog.Parse(line)

	require.True(t, ok)
	assert.Equal(t, "unknown", entry.Pool)
	assert.Equal(t, 200, entry.Status)
	assert.Equal(t, "-", entry.UpstreamStatus)
	assert.Zero(t, entry.RequestTime)
	assert.Equal(t, "-", entry.Request)
}

func TestParse_NumericFieldsAsStrings(t *testing.T) {
	entry, ok := accesslog.Parse([]byte(`{"pool":"green","upstream_status":200,"request_time":"0.005"}`))

	require.True(t, ok)
	assert.Equal(t, "200", entry.UpstreamStatus)
	assert.InDelta(t, 0.005, entry.RequestTime, 1e-9)
}

// =============================================================================
// ENTRY TESTS
// =============================================================================

func TestEntry_Tracked(t *testing.T) {
	for _, pool := range []string{"", "-", "unknown"} {
		assert.False(t, accesslog.Entry{Pool: pool}.Tracked(), "pool %q", pool)
	}
	assert.True(t, accesslog.Entry{Pool: "blue"}.Tracked())
	assert.True(t, accesslog.Entry{Pool: "Unknown"}.Tracked())
}

func TestEntry_Outcome(t *testing.T) {
	assert.Equal(t, accesslog.OutcomeOK, accesslog.Entry{Status: 0}.Outcome())
	assert.Equal(t, accesslog.OutcomeOK, accesslog.Entry{Status: 302}.Outcome())
	assert.Equal(t, accesslog.OutcomeClientError, accesslog.Entry{Status: 404}.Outcome())
	assert.Equal(t, accesslog.OutcomeServerError, accesslog.Entry{Status: 500}.Outcome())
	assert.True(t, accesslog.Entry{Status: 599}.ServerError())
	assert.False(t, accesslog.Entry{Status: 499}.ServerError())
}
