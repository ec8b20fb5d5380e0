package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/pool-watcher/internal/config"
	"github.com/compresr/pool-watcher/internal/monitoring"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"interrupted", context.Canceled, 0},
		{"wrapped interrupt", fmt.Errorf("follow: %w", context.Canceled), 0},
		{"read failure", errors.New("failed to read log file"), 1},
		{"deadline", context.DeadlineExceeded, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// =============================================================================
// PANIC RECOVERY TESTS
// =============================================================================

func TestRunSafely_ConvertsPanic(t *testing.T) {
	events := monitoring.NewAlertManager(nil)

	err := runSafely(context.Background(), func(context.Context) error {
		panic("window corrupted")
	}, events)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "window corrupted")
	assert.Equal(t, 1, exitCode(err))
}

func TestRunSafely_PassesThroughResult(t *testing.T) {
	events := monitoring.NewAlertManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runSafely(ctx, func(ctx context.Context) error { return ctx.Err() }, events)

	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// STARTUP TESTS
// =============================================================================

func TestRunWatcher_InvalidConfigExitsNonZero(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvWebhookURL, "")
	t.Setenv(config.EnvLogOutput, filepath.Join(t.TempDir(), "watcher.log"))

	assert.Equal(t, 1, runWatcher(nil), "missing webhook URL")
}

func TestRunWatcher_MissingConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, 1, runWatcher([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))
}

func TestRunWatcher_BadFlag(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, 2, runWatcher([]string{"--no-such-flag"}))
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
