// Package monitoring - alerts.go flags watcher events on the local log.
//
// DESIGN: AlertManager is the local status output of the watcher. It never
// talks to the network; outbound alerts go through the notify package.
//   - FlagEntry:         Debug line per tracked request
//   - FlagInitialPool:   Info when the first pool is seen
//   - FlagFailover:      Warn on every pool change, alerted or not
//   - FlagHighErrorRate: Warn when the error rate crosses the threshold
//   - FlagPanic:         Error on a recovered panic
package monitoring

import (
	"unicode/utf8"

	"github.com/compresr/pool-watcher/internal/accesslog"
)

// maxRequestLen bounds the request line printed per entry.
const maxRequestLen = 50

// AlertManager flags notable watcher events.
type AlertManager struct {
	logger *Logger
}

// NewAlertManager creates a new alert manager.
func NewAlertManager(logger *Logger) *AlertManager {
	if logger == nil {
		logger = Nop()
	}
	return &AlertManager{logger: logger}
}

// FlagEntry logs a tracked request at debug level.
func (am *AlertManager) FlagEntry(e accesslog.Entry) {
	am.logger.Debug().
		Str("pool", e.Pool).
		Int("status", e.Status).
		Str("outcome", e.Outcome()).
		Str("upstream", e.UpstreamStatus).
		Float64("request_time", e.RequestTime).
		Str("request", truncate(e.Request, maxRequestLen)).
		Msg("entry")
}

// FlagInitialPool logs the boot-time pool baseline.
func (am *AlertManager) FlagInitialPool(pool string) {
	am.logger.Info().
		Str("pool", pool).
		Msg("initial pool")
}

// FlagFailover logs a pool change. alerted is false when the cooldown held
// the alert back.
func (am *AlertManager) FlagFailover(previous, current string, alerted bool) {
	am.logger.Warn().
		Str("from", previous).
		Str("to", current).
		Bool("alerted", alerted).
		Msg("failover")
}

// FlagHighErrorRate logs an error rate above threshold. Repeats inside the
// cooldown are logged at debug level only.
func (am *AlertManager) FlagHighErrorRate(rate, threshold float64, errors, total int, alerted bool) {
	event := am.logger.Debug()
	if alerted {
		event = am.logger.Warn()
	}
	event.
		Float64("error_rate", rate).
		Float64("threshold", threshold).
		Int("errors", errors).
		Int("total", total).
		Bool("alerted", alerted).
		Msg("high error rate")
}

// FlagPanic logs a recovered panic.
func (am *AlertManager) FlagPanic(panicValue interface{}, stack string) {
	am.logger.Error().
		Interface("panic", panicValue).
		Str("stack", stack).
		Msg("panic_recovered")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
