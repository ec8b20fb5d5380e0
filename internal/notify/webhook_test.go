package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

var at = time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)

type attachment struct {
	Color  string         `json:"color"`
	Title  string         `json:"title"`
	Text   string         `json:"text"`
	Footer string         `json:"footer"`
	TS     int64          `json:"ts"`
	Fields []notify.Field `json:"fields"`
}

type payload struct {
	Attachments []attachment `json:"attachments"`
}

// recorder is a webhook endpoint that remembers every request.
type recorder struct {
	mu       sync.Mutex
	status   int
	delay    time.Duration
	bodies   [][]byte
	headers  []http.Header
	requests atomic.Int32
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.requests.Add(1)
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.headers = append(r.headers, req.Header.Clone())
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte("ok"))
}

func (r *recorder) request(i int) ([]byte, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[i], r.headers[i]
}

func newServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestBuildPayload_WithFields(t *testing.T) {
	a := notify.NewAlert("failover", "🔄 Failover Detected", "Traffic switched from *blue* to *green*", notify.SeverityWarning, at,
		notify.Field{Title: "Previous Pool", Value: "blue", Short: true},
		notify.Field{Title: "Timestamp", Value: "2025-10-30 12:00:00", Short: false},
	)

	raw, err := notify.BuildPayload(a, "")
	require.NoError(t, err)

	var p payload
	require.NoError(t, json.Unmarshal(raw, &p))
	require.Len(t, p.Attachments, 1)
	att := p.Attachments[0]
	assert.Equal(t, "warning", att.Color)
	assert.Equal(t, "🔄 Failover Detected", att.Title)
	assert.Equal(t, "Traffic switched from *blue* to *green*", att.Text)
	assert.Equal(t, notify.DefaultFooter, att.Footer)
	assert.Equal(t, at.Unix(), att.TS)
	assert.Equal(t, a.Fields, att.Fields)
}

func TestBuildPayload_OmitsEmptyFields(t *testing.T) {
	a := notify.NewAlert("test", "title", "text \"quoted\"\nline", notify.SeverityGood, at)

	raw, err := notify.BuildPayload(a, "custom footer")
	require.NoError(t, err)

	var generic map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	_, hasFields := generic["attachments"][0]["fields"]
	assert.False(t, hasFields)
	assert.Equal(t, "custom footer", generic["attachments"][0]["footer"])
	assert.Equal(t, "text \"quoted\"\nline", generic["attachments"][0]["text"])
}

func TestNewAlert_UniqueIDs(t *testing.T) {
	a := notify.NewAlert("k", "t", "x", notify.SeverityDanger, at)
	b := notify.NewAlert("k", "t", "x", notify.SeverityDanger, at)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

// =============================================================================
// DISPATCHER TESTS
// =============================================================================

func TestDispatcher_Delivers(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec)
	mc := monitoring.NewMetricsCollector()
	d := notify.New(notify.Config{WebhookURL: srv.URL}, notify.WithMetrics(mc))
	a := notify.NewAlert("error_rate", "⚠️ High Error Rate Detected", "body", notify.SeverityDanger, at)

	status := d.Send(context.Background(), a)

	assert.Equal(t, notify.Delivered, status)
	require.Equal(t, int32(1), rec.requests.Load())
	body, header := rec.request(0)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, a.ID, header.Get(notify.HeaderAlertID))
	var p payload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "danger", p.Attachments[0].Color)
	assert.Equal(t, int64(1), mc.Snapshot().AlertsDelivered)
}

func TestDispatcher_Accepts2xx(t *testing.T) {
	rec := &recorder{status: http.StatusNoContent}
	srv := newServer(t, rec)
	d := notify.New(notify.Config{WebhookURL: srv.URL})

	assert.Equal(t, notify.Delivered, d.Send(context.Background(), notify.NewAlert("k", "t", "x", notify.SeverityGood, at)))
}

func TestDispatcher_Non2xxFailsOnce(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError} {
		rec := &recorder{status: code}
		srv := newServer(t, rec)
		mc := monitoring.NewMetricsCollector()
		d := notify.New(notify.Config{WebhookURL: srv.URL}, notify.WithMetrics(mc))

		status := d.Send(context.Background(), notify.NewAlert("k", "t", "x", notify.SeverityGood, at))

		assert.Equal(t, notify.Failed, status, "status %d", code)
		assert.Equal(t, int32(1), rec.requests.Load(), "no retry for %d", code)
		assert.Equal(t, int64(1), mc.Snapshot().AlertsFailed)
	}
}

func TestDispatcher_TransportErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	d := notify.New(notify.Config{WebhookURL: url})

	assert.Equal(t, notify.Failed, d.Send(context.Background(), notify.NewAlert("k", "t", "x", notify.SeverityGood, at)))
}

func TestDispatcher_TimeoutIsBounded(t *testing.T) {
	rec := &recorder{delay: 500 * time.Millisecond}
	srv := newServer(t, rec)
	d := notify.New(notify.Config{WebhookURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	status := d.Send(context.Background(), notify.NewAlert("k", "t", "x", notify.SeverityGood, at))

	assert.Equal(t, notify.Failed, status)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestDispatcher_MaintenanceModeMakesNoCalls(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec)
	mc := monitoring.NewMetricsCollector()
	d := notify.New(notify.Config{WebhookURL: srv.URL, Maintenance: true}, notify.WithMetrics(mc))

	for i := 0; i < 5; i++ {
		status := d.Send(context.Background(), notify.NewAlert("k", "t", "x", notify.SeverityWarning, at))
		assert.Equal(t, notify.Suppressed, status)
	}

	assert.True(t, d.Maintenance())
	assert.Equal(t, int32(0), rec.requests.Load())
	assert.Equal(t, int64(5), mc.Snapshot().AlertsSuppressed)
}

func TestDeliveryStatus_String(t *testing.T) {
	assert.Equal(t, "delivered", notify.Delivered.String())
	assert.Equal(t, "suppressed", notify.Suppressed.String())
	assert.Equal(t, "failed", notify.Failed.String())
	assert.Equal(t, "unknown", notify.DeliveryStatus(9).String())
}
