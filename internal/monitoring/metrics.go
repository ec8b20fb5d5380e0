// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters the watcher loop publishes as it goes:
//   - lines read / unparsable, entries tracked / ignored
//   - failovers seen, alerts delivered / suppressed / failed
//   - current pool and error rate (last values written by the loop)
//
// The loop is the only writer. The status server reads concurrently, so every
// field is atomic.
package monitoring

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	started time.Time

	linesRead        atomic.Int64
	linesUnparsable  atomic.Int64
	entriesTracked   atomic.Int64
	entriesIgnored   atomic.Int64
	backlogEntries   atomic.Int64
	failoversSeen    atomic.Int64
	alertsDelivered  atomic.Int64
	alertsSuppressed atomic.Int64
	alertsFailed     atomic.Int64

	currentPool    atomic.Pointer[string]
	errorRateBits  atomic.Uint64
	errorRateReady atomic.Bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{started: time.Now()}
}

// RecordLine records a raw line read from the log. parsed is false for lines
// that were not a JSON object.
func (mc *MetricsCollector) RecordLine(parsed bool) {
	mc.linesRead.Add(1)
	if !parsed {
		mc.linesUnparsable.Add(1)
	}
}

// RecordEntry records a parsed entry.
func (mc *MetricsCollector) RecordEntry(tracked bool) {
	if tracked {
		mc.entriesTracked.Add(1)
	} else {
		mc.entriesIgnored.Add(1)
	}
}

// RecordBacklog records how many entries were replayed from the backlog.
func (mc *MetricsCollector) RecordBacklog(n int) { mc.backlogEntries.Store(int64(n)) }

// RecordFailover records a pool change, alerted or not.
func (mc *MetricsCollector) RecordFailover() { mc.failoversSeen.Add(1) }

// RecordAlertDelivered records a webhook delivery.
func (mc *MetricsCollector) RecordAlertDelivered() { mc.alertsDelivered.Add(1) }

// RecordAlertSuppressed records an alert held back by maintenance mode.
func (mc *MetricsCollector) RecordAlertSuppressed() { mc.alertsSuppressed.Add(1) }

// RecordAlertFailed records a failed webhook delivery.
func (mc *MetricsCollector) RecordAlertFailed() { mc.alertsFailed.Add(1) }

// SetPool publishes the pool currently serving traffic.
func (mc *MetricsCollector) SetPool(pool string) { mc.currentPool.Store(&pool) }

// SetErrorRate publishes the current error rate.
func (mc *MetricsCollector) SetErrorRate(rate float64, ready bool) {
	mc.errorRateBits.Store(math.Float64bits(rate))
	mc.errorRateReady.Store(ready)
}

// Snapshot returns current metrics.
func (mc *MetricsCollector) Snapshot() Snapshot {
	s := Snapshot{
		LinesRead:        mc.linesRead.Load(),
		LinesUnparsable:  mc.linesUnparsable.Load(),
		EntriesTracked:   mc.entriesTracked.Load(),
		EntriesIgnored:   mc.entriesIgnored.Load(),
		BacklogEntries:   mc.backlogEntries.Load(),
		FailoversSeen:    mc.failoversSeen.Load(),
		AlertsDelivered:  mc.alertsDelivered.Load(),
		AlertsSuppressed: mc.alertsSuppressed.Load(),
		AlertsFailed:     mc.alertsFailed.Load(),
		ErrorRate:        math.Float64frombits(mc.errorRateBits.Load()),
		ErrorRateReady:   mc.errorRateReady.Load(),
		UptimeSeconds:    int64(time.Since(mc.started).Seconds()),
	}
	if p := mc.currentPool.Load(); p != nil {
		s.CurrentPool = *p
	}
	return s
}
