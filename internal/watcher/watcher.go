// Package watcher applies parsed access-log entries to the watcher state and
// decides when to alert.
//
// DESIGN: All mutable state (rolling window, last pool, both cooldowns) lives
// in one State value owned by the Watcher. The Watcher is driven by a single
// goroutine, so nothing here is locked. Per tracked entry the order is fixed:
//  1. record the status in the window
//  2. failover check (so the error alert below reports the current pool)
//  3. error-rate check
package watcher

import (
	"context"
	"time"

	"github.com/compresr/pool-watcher/internal/accesslog"
	"github.com/compresr/pool-watcher/internal/config"
	"github.com/compresr/pool-watcher/internal/cooldown"
	"github.com/compresr/pool-watcher/internal/failover"
	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
	"github.com/compresr/pool-watcher/internal/window"
)

// Notifier delivers alerts. *notify.Dispatcher satisfies it.
type Notifier interface {
	Send(ctx context.Context, a notify.Alert) notify.DeliveryStatus
}

// State is everything the watcher remembers. It is reset on restart.
type State struct {
	Window    *window.Window
	Failover  *failover.Detector
	ErrorGate *cooldown.Gate
}

// NewState creates empty state for the given settings.
func NewState(windowSize int, alertCooldown time.Duration) *State {
	return &State{
		Window:    window.New(windowSize),
		Failover:  failover.New(alertCooldown),
		ErrorGate: cooldown.New(alertCooldown),
	}
}

// Watcher processes entries one at a time.
type Watcher struct {
	threshold  float64
	windowSize int
	state      *State
	notifier   Notifier
	events     *monitoring.AlertManager
	metrics    *monitoring.MetricsCollector
	now        func() time.Time
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// WithMetrics publishes counters to mc.
func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(w *Watcher) { w.metrics = mc }
}

// WithEvents sets the local event log.
func WithEvents(am *monitoring.AlertManager) Option {
	return func(w *Watcher) { w.events = am }
}

// New creates a watcher.
func New(cfg config.WatcherConfig, notifier Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		threshold:  cfg.ErrorRateThreshold,
		windowSize: cfg.WindowSize,
		state:      NewState(cfg.WindowSize, cfg.AlertCooldown),
		notifier:   notifier,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.events == nil {
		w.events = monitoring.NewAlertManager(nil)
	}
	if w.metrics == nil {
		w.metrics = monitoring.NewMetricsCollector()
	}
	return w
}

// State exposes the watcher state for inspection.
func (w *Watcher) State() *State { return w.state }

// HandleLine parses and processes one raw line. It returns false when the
// line is not a JSON object; such lines leave the state untouched.
func (w *Watcher) HandleLine(ctx context.Context, line []byte) bool {
	entry, ok := accesslog.Parse(line)
	w.metrics.RecordLine(ok)
	if !ok {
		return false
	}
	w.Process(ctx, entry)
	return true
}

// Process applies one parsed entry. Entries without a real pool are counted
// and otherwise ignored.
func (w *Watcher) Process(ctx context.Context, e accesslog.Entry) {
	tracked := e.Tracked()
	w.metrics.RecordEntry(tracked)
	if !tracked {
		return
	}

	w.events.FlagEntry(e)
	now := w.now()

	w.state.Window.Record(e.Status)
	w.checkFailover(ctx, e.Pool, now)
	w.checkErrorRate(ctx, now)
}

func (w *Watcher) checkFailover(ctx context.Context, pool string, now time.Time) {
	res := w.state.Failover.Observe(pool, now)
	switch res.Kind {
	case failover.Baseline:
		w.events.FlagInitialPool(pool)
		w.metrics.SetPool(pool)
	case failover.Switched:
		w.metrics.RecordFailover()
		w.metrics.SetPool(pool)
		w.events.FlagFailover(res.Previous, res.Current, res.Alert)
		if res.Alert {
			w.notifier.Send(ctx, failoverAlert(res.Previous, res.Current, now))
		}
	}
}

func (w *Watcher) checkErrorRate(ctx context.Context, now time.Time) {
	rate, ready := w.state.Window.ErrorRate()
	w.metrics.SetErrorRate(rate, ready)
	if !ready || rate <= w.threshold {
		return
	}

	errCount, total := w.state.Window.Errors(), w.state.Window.Len()
	allowed := w.state.ErrorGate.Allow(now)
	w.events.FlagHighErrorRate(rate, w.threshold, errCount, total, allowed)
	if !allowed {
		return
	}

	pool, ok := w.state.Failover.Current()
	if !ok {
		pool = accesslog.DefaultPool
	}
	w.notifier.Send(ctx, errorRateAlert(errorRateReport{
		Rate:       rate,
		Threshold:  w.threshold,
		Errors:     errCount,
		Total:      total,
		WindowSize: w.windowSize,
		Pool:       pool,
	}, now))
}
