// Package tail follows a growing log file line by line.
//
// DESIGN: The follower is a small state machine:
//
//	AwaitingFile → AwaitingContent → [ReplayingBacklog] → Following
//
//   - AwaitingFile polls for the path forever. The proxy may start after us.
//   - AwaitingContent waits a bounded time for the first bytes, then moves on.
//   - ReplayingBacklog hands every existing line to the handler (optional).
//     Otherwise the follower seeks to the end and only sees new lines.
//   - Following reads until EOF, sleeps briefly, and reads again.
//
// Lines are handed to the handler synchronously on the Run goroutine. A line
// is only complete once its newline is written; partial tails are kept until
// the rest arrives.
package tail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/monitoring"
)

// Default timings.
const (
	DefaultFilePollInterval = 2 * time.Second
	DefaultContentWait      = 30 * time.Second
	DefaultIdleInterval     = 100 * time.Millisecond
)

// State is the follower phase.
type State int32

const (
	AwaitingFile State = iota
	AwaitingContent
	ReplayingBacklog
	Following
)

func (s State) String() string {
	switch s {
	case AwaitingFile:
		return "awaiting_file"
	case AwaitingContent:
		return "awaiting_content"
	case ReplayingBacklog:
		return "replaying_backlog"
	case Following:
		return "following"
	default:
		return "unknown"
	}
}

// LineHandler consumes complete lines. It returns false when a line could not
// be parsed.
type LineHandler interface {
	HandleLine(ctx context.Context, line []byte) bool
}

// LineHandlerFunc adapts a function to LineHandler.
type LineHandlerFunc func(ctx context.Context, line []byte) bool

// HandleLine calls f.
func (f LineHandlerFunc) HandleLine(ctx context.Context, line []byte) bool { return f(ctx, line) }

// Options controls follower timing and start position.
type Options struct {
	FilePollInterval time.Duration
	ContentWait      time.Duration
	IdleInterval     time.Duration
	ReadExisting     bool

	// Metrics receives the backlog count. Optional.
	Metrics *monitoring.MetricsCollector
}

func (o Options) withDefaults() Options {
	if o.FilePollInterval <= 0 {
		o.FilePollInterval = DefaultFilePollInterval
	}
	if o.ContentWait < 0 {
		o.ContentWait = DefaultContentWait
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = DefaultIdleInterval
	}
	return o
}

// Follower tails one file.
type Follower struct {
	path    string
	opts    Options
	handler LineHandler
	state   atomic.Int32
}

// New creates a follower for path.
func New(path string, opts Options, handler LineHandler) *Follower {
	return &Follower{
		path:    path,
		opts:    opts.withDefaults(),
		handler: handler,
	}
}

// State returns the current phase. Safe to call from any goroutine.
func (f *Follower) State() State { return State(f.state.Load()) }

func (f *Follower) setState(s State) { f.state.Store(int32(s)) }

// Run blocks until ctx is cancelled or reading fails. On cancellation it
// returns ctx.Err().
func (f *Follower) Run(ctx context.Context) error {
	if err := f.awaitFile(ctx); err != nil {
		return err
	}
	if err := f.awaitContent(ctx); err != nil {
		return err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if !f.opts.ReadExisting {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			log.Warn().Err(err).Str("path", f.path).Msg("seek to end failed, reading from current position")
		}
	}
	lr := newLineReader(file)

	if f.opts.ReadExisting {
		if err := f.replay(ctx, lr); err != nil {
			return err
		}
	} else {
		log.Info().Str("path", f.path).Msg("skipping existing entries")
	}

	return f.follow(ctx, lr)
}

func (f *Follower) awaitFile(ctx context.Context) error {
	f.setState(AwaitingFile)
	logged := false
	for {
		if _, err := os.Stat(f.path); err == nil {
			return nil
		}
		if !logged {
			log.Info().Str("path", f.path).Msg("waiting for log file")
			logged = true
		}
		if err := sleep(ctx, f.opts.FilePollInterval); err != nil {
			return err
		}
	}
}

func (f *Follower) awaitContent(ctx context.Context) error {
	f.setState(AwaitingContent)
	deadline := time.Now().Add(f.opts.ContentWait)
	for {
		info, err := os.Stat(f.path)
		if err == nil && info.Size() > 0 {
			return nil
		}
		if !time.Now().Before(deadline) {
			log.Warn().Str("path", f.path).Dur("waited", f.opts.ContentWait).Msg("log file still empty, continuing")
			return nil
		}
		if err := sleep(ctx, f.opts.FilePollInterval); err != nil {
			return err
		}
	}
}

func (f *Follower) replay(ctx context.Context, lr *lineReader) error {
	f.setState(ReplayingBacklog)
	parsed := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read backlog: %w", err)
		}
		if len(line) == 0 {
			continue
		}
		if f.handler.HandleLine(ctx, line) {
			parsed++
		}
	}
	if f.opts.Metrics != nil {
		f.opts.Metrics.RecordBacklog(parsed)
	}
	log.Info().Int("entries", parsed).Str("path", f.path).Msg("replayed existing entries")
	return nil
}

func (f *Follower) follow(ctx context.Context, lr *lineReader) error {
	f.setState(Following)
	log.Info().Str("path", f.path).Msg("following log file")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lr.next()
		switch {
		case err == nil:
			if len(line) > 0 {
				f.handler.HandleLine(ctx, line)
			}
		case errors.Is(err, io.EOF):
			if err := sleep(ctx, f.opts.IdleInterval); err != nil {
				return err
			}
		default:
			return fmt.Errorf("failed to read log file: %w", err)
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// trimLine drops the line terminator and surrounding blanks.
func trimLine(b []byte) []byte {
	return bytes.TrimSpace(b)
}
