// Package failover detects changes of the serving pool between consecutive
// tracked requests.
//
// DESIGN: The detector always tracks the latest pool, even while a failover
// alert is held back by the cooldown. A burst of flaps inside one cooldown
// period therefore yields a single alert, and the next change after the
// cooldown is compared against whatever pool was seen last.
package failover

import (
	"time"

	"github.com/compresr/pool-watcher/internal/cooldown"
)

// Kind describes what an observation did to the detector.
type Kind int

const (
	// Baseline is the first pool ever observed. It never alerts.
	Baseline Kind = iota
	// Unchanged means the pool matches the last observation.
	Unchanged
	// Switched means the pool differs from the last observation.
	Switched
)

// String returns a stable name for logs.
func (k Kind) String() string {
	switch k {
	case Baseline:
		return "baseline"
	case Unchanged:
		return "unchanged"
	case Switched:
		return "failover"
	default:
		return "unknown"
	}
}

// Result is the outcome of one observation.
type Result struct {
	Kind     Kind
	Previous string
	Current  string
	At       time.Time
	// Alert is true when a failover passed the cooldown and should be sent.
	Alert bool
}

// Detector remembers the last observed pool. Not safe for concurrent use.
type Detector struct {
	lastPool string
	seen     bool
	gate     *cooldown.Gate
}

// New creates a detector whose alerts are spaced by at least period.
func New(period time.Duration) *Detector {
	return &Detector{gate: cooldown.New(period)}
}

// Observe records the pool that served a request at now.
func (d *Detector) Observe(pool string, now time.Time) Result {
	if !d.seen {
		d.lastPool = pool
		d.seen = true
		return Result{Kind: Baseline, Current: pool, At: now}
	}

	if pool == d.lastPool {
		return Result{Kind: Unchanged, Previous: pool, Current: pool, At: now}
	}

	res := Result{
		Kind:     Switched,
		Previous: d.lastPool,
		Current:  pool,
		At:       now,
		Alert:    d.gate.Allow(now),
	}
	d.lastPool = pool
	return res
}

// Current returns the last observed pool. ok is false before the first
// observation.
func (d *Detector) Current() (pool string, ok bool) {
	return d.lastPool, d.seen
}

// LastAlert returns when a failover alert last fired (zero if never).
func (d *Detector) LastAlert() time.Time {
	return d.gate.Last()
}
