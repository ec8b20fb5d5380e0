package watcher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/compresr/pool-watcher/internal/notify"
)

// Alert kinds.
const (
	KindFailover  = "failover"
	KindErrorRate = "error_rate"
)

const timestampLayout = "2006-01-02 15:04:05"

func failoverAlert(previous, current string, at time.Time) notify.Alert {
	return notify.NewAlert(
		KindFailover,
		"🔄 Failover Detected",
		fmt.Sprintf("Traffic switched from *%s* to *%s*", previous, current),
		notify.SeverityWarning,
		at,
		notify.Field{Title: "Previous Pool", Value: previous, Short: true},
		notify.Field{Title: "Current Pool", Value: current, Short: true},
		notify.Field{Title: "Timestamp", Value: at.Format(timestampLayout), Short: false},
	)
}

type errorRateReport struct {
	Rate       float64
	Threshold  float64
	Errors     int
	Total      int
	WindowSize int
	Pool       string
}

func errorRateAlert(r errorRateReport, at time.Time) notify.Alert {
	rate := fmt.Sprintf("%.1f%%", r.Rate)
	return notify.NewAlert(
		KindErrorRate,
		"⚠️ High Error Rate Detected",
		fmt.Sprintf("Error rate is *%s* (threshold: %s%%)", rate, formatThreshold(r.Threshold)),
		notify.SeverityDanger,
		at,
		notify.Field{Title: "Error Count", Value: fmt.Sprintf("%d/%d requests", r.Errors, r.Total), Short: true},
		notify.Field{Title: "Error Rate", Value: rate, Short: true},
		notify.Field{Title: "Window Size", Value: fmt.Sprintf("%d requests", r.WindowSize), Short: true},
		notify.Field{Title: "Current Pool", Value: r.Pool, Short: true},
	)
}

// formatThreshold prints the threshold with at least one decimal (2 -> "2.0",
// 2.25 -> "2.25").
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
