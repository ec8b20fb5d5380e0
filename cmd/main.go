// Package main is the entry point for the pool watcher.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/config"
	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
	"github.com/compresr/pool-watcher/internal/status"
	"github.com/compresr/pool-watcher/internal/tail"
	"github.com/compresr/pool-watcher/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

// loadEnvFiles loads .env from standard locations
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/pool-watcher/.env first
	configEnv := filepath.Join(homeDir, ".config", "pool-watcher", ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Local .env fills in anything still unset
	_ = godotenv.Load()
}

func main() {
	// Handle subcommands first (before flags)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "watch", "run":
			os.Exit(runWatcher(os.Args[2:]))
		case "version", "-v", "--version":
			PrintVersion()
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	os.Exit(runWatcher(os.Args[1:]))
}

// runWatcher loads configuration, wires the components and follows the log
// until interrupted. It returns the process exit code.
func runWatcher(args []string) int {
	loadEnvFiles()

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file (optional)")
	debugLog := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		setupLogging(config.Default().Monitoring, *debugLog)
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	logger := setupLogging(cfg.Monitoring, *debugLog)
	logConfiguration(cfg, *configPath)

	metrics := monitoring.NewMetricsCollector()
	events := monitoring.NewAlertManager(logger)

	dispatcher := notify.New(notify.Config{
		WebhookURL:  cfg.Alerts.WebhookURL,
		Timeout:     cfg.Alerts.Timeout,
		Maintenance: cfg.Alerts.Maintenance,
		Footer:      cfg.Alerts.Footer,
		UserAgent:   "pool-watcher/" + Version,
	}, notify.WithMetrics(metrics))

	w := watcher.New(cfg.Watcher, dispatcher,
		watcher.WithMetrics(metrics),
		watcher.WithEvents(events),
	)

	follower := tail.New(cfg.Watcher.LogPath, tail.Options{
		FilePollInterval: cfg.Follower.FilePollInterval,
		ContentWait:      cfg.Follower.ContentWait,
		IdleInterval:     cfg.Follower.IdleInterval,
		ReadExisting:     cfg.Watcher.ReadExisting,
		Metrics:          metrics,
	}, w)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.StatusAddr != "" {
		srv := status.New(cfg.Monitoring.StatusAddr, metrics, func() string {
			return follower.State().String()
		})
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("status server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("status server shutdown error")
			}
		}()
	}

	err = runSafely(ctx, follower.Run, events)
	code := exitCode(err)
	if code == 0 {
		log.Info().Msg("pool watcher stopped")
	} else {
		log.Error().Err(err).Msg("pool watcher failed")
	}
	return code
}

// runSafely calls fn and converts a panic into an error after logging the
// stack trace.
func runSafely(ctx context.Context, fn func(context.Context) error, events *monitoring.AlertManager) (err error) {
	defer func() {
		if r := recover(); r != nil {
			events.FlagPanic(r, string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// exitCode maps the run result to a process exit code. Interruption is a
// clean shutdown.
func exitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

// setupLogging configures the global logger. --debug wins over the configured level.
func setupLogging(mc config.MonitoringConfig, debugLog bool) *monitoring.Logger {
	lc := mc.LoggerConfig()
	if debugLog {
		lc.Level = "debug"
	}
	return monitoring.Global(lc)
}

func logConfiguration(cfg *config.Config, source string) {
	if source == "" {
		source = "(environment)"
	}
	log.Info().
		Str("version", Version).
		Str("config", source).
		Str("log_path", cfg.Watcher.LogPath).
		Float64("error_rate_threshold", cfg.Watcher.ErrorRateThreshold).
		Int("window_size", cfg.Watcher.WindowSize).
		Dur("alert_cooldown", cfg.Watcher.AlertCooldown).
		Bool("read_existing", cfg.Watcher.ReadExisting).
		Bool("maintenance_mode", cfg.Alerts.Maintenance).
		Str("status_addr", cfg.Monitoring.StatusAddr).
		Msg("pool watcher starting")
	if cfg.Alerts.Maintenance {
		log.Warn().Msg("maintenance mode enabled, alerts will not be sent")
	}
}

// printHelp prints usage information
func printHelp() {
	fmt.Println("Pool Watcher - alerts on blue/green failover and upstream error rate")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pool-watcher [options]")
	fmt.Println("  pool-watcher [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none), watch   Follow the access log and send alerts (default)")
	fmt.Println("  version         Print version information")
	fmt.Println("  help            Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config FILE   YAML config (environment variables override it)")
	fmt.Println("  --debug         Enable debug logging (one line per request)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SLACK_WEBHOOK_URL     Incoming webhook URL (required)")
	fmt.Println("  ERROR_RATE_THRESHOLD  Percent of 5xx responses that triggers an alert (default 2.0)")
	fmt.Println("  WINDOW_SIZE           Requests in the rolling window (default 200)")
	fmt.Println("  ALERT_COOLDOWN_SEC    Seconds between alerts of the same kind (default 300)")
	fmt.Println("  NGINX_LOG_PATH        Access log to follow (default /var/log/nginx/access.log)")
	fmt.Println("  READ_EXISTING_LOGS    Replay existing lines on start (default true)")
	fmt.Println("  MAINTENANCE_MODE      Suppress outbound alerts (default false)")
	fmt.Println("  LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, STATUS_ADDR")
}
