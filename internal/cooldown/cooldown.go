// Package cooldown spaces out alerts of the same kind.
package cooldown

import "time"

// Gate lets an event through only when strictly more than Period has passed
// since the last event it let through. The zero Gate with a Period set has
// never fired, so its first Allow succeeds.
type Gate struct {
	Period time.Duration
	last   time.Time
}

// New creates a gate with the given period.
func New(period time.Duration) *Gate {
	return &Gate{Period: period}
}

// Allow reports whether an alert may fire at now and, if so, records now as
// the last firing time.
func (g *Gate) Allow(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) <= g.Period {
		return false
	}
	g.last = now
	return true
}

// Last returns when the gate last let an event through (zero if never).
func (g *Gate) Last() time.Time { return g.last }
