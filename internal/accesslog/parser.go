package accesslog

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse decodes a single log line. It returns false when the line is not a
// JSON object; the caller drops such lines.
func Parse(line []byte) (Entry, bool) {
	if !gjson.ValidBytes(line) {
		return Entry{}, false
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return Entry{}, false
	}

	return Entry{
		Pool:           stringField(doc.Get("pool"), DefaultPool),
		Status:         intField(doc.Get("status")),
		UpstreamStatus: stringField(doc.Get("upstream_status"), DefaultUpstreamStatus),
		RequestTime:    floatField(doc.Get("request_time")),
		Request:        stringField(doc.Get("request"), DefaultRequest),
	}, true
}

// stringField accepts strings as-is and numbers in their literal form.
func stringField(r gjson.Result, def string) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return def
	}
}

// intField coerces a status code. Numbers are truncated toward zero and
// numeric strings are parsed; anything else is DefaultStatus.
func intField(r gjson.Result) int {
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || r.Num > math.MaxInt32 || r.Num < math.MinInt32 {
			return DefaultStatus
		}
		return int(r.Num)
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return DefaultStatus
		}
		return n
	default:
		return DefaultStatus
	}
}

func floatField(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return DefaultRequestTime
		}
		return f
	default:
		return DefaultRequestTime
	}
}
