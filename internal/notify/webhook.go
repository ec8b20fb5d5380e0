package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/monitoring"
)

// DefaultTimeout bounds a single webhook POST.
const DefaultTimeout = 5 * time.Second

// HeaderAlertID carries the alert ID so receivers can correlate retries by hand.
const HeaderAlertID = "X-Alert-ID"

// DeliveryStatus is the outcome of Send.
type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	Suppressed
	Failed
)

// String returns a stable name for logs.
func (s DeliveryStatus) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Suppressed:
		return "suppressed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config configures the webhook dispatcher.
type Config struct {
	WebhookURL  string
	Timeout     time.Duration
	Maintenance bool
	Footer      string
	UserAgent   string
}

// Dispatcher posts alerts to the webhook. It makes exactly one attempt per
// alert and never returns an error to the caller.
type Dispatcher struct {
	cfg     Config
	client  *http.Client
	metrics *monitoring.MetricsCollector
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithMetrics records delivery outcomes on mc.
func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(d *Dispatcher) { d.metrics = mc }
}

// New creates a dispatcher.
func New(cfg Config, opts ...Option) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Footer == "" {
		cfg.Footer = DefaultFooter
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "pool-watcher"
	}
	d := &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Maintenance reports whether outbound alerts are suppressed.
func (d *Dispatcher) Maintenance() bool { return d.cfg.Maintenance }

// Send delivers a. In maintenance mode nothing leaves the process.
func (d *Dispatcher) Send(ctx context.Context, a Alert) DeliveryStatus {
	logger := log.With().
		Str("alert_id", a.ID).
		Str("kind", a.Kind).
		Str("title", a.Title).
		Logger()

	if d.cfg.Maintenance {
		logger.Info().Msg("alert suppressed (maintenance mode)")
		d.record(Suppressed)
		return Suppressed
	}

	if err := d.post(ctx, a); err != nil {
		logger.Error().Err(err).Msg("alert delivery failed")
		d.record(Failed)
		return Failed
	}

	logger.Info().Msg("alert sent")
	d.record(Delivered)
	return Delivered
}

func (d *Dispatcher) post(ctx context.Context, a Alert) error {
	body, err := BuildPayload(a, d.cfg.Footer)
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set(HeaderAlertID, a.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

func (d *Dispatcher) record(s DeliveryStatus) {
	if d.metrics == nil {
		return
	}
	switch s {
	case Delivered:
		d.metrics.RecordAlertDelivered()
	case Suppressed:
		d.metrics.RecordAlertSuppressed()
	case Failed:
		d.metrics.RecordAlertFailed()
	}
}
