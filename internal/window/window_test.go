package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/pool-watcher/internal/window"
)

func fill(w *window.Window, statuses ...int) {
	for _, s := range statuses {
		w.Record(s)
	}
}

func repeat(status, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = status
	}
	return out
}

// =============================================================================
// CAPACITY / FIFO TESTS
// =============================================================================

func TestWindow_NeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 2, 10, 200} {
		w := window.New(capacity)
		for i := 0; i < capacity*3+1; i++ {
			w.Record(200 + i%400)
			assert.LessOrEqual(t, w.Len(), capacity)
		}
		assert.Equal(t, capacity, w.Len())
		assert.Equal(t, capacity, w.Cap())
	}
}

func TestWindow_EvictsOldestFirst(t *testing.T) {
	w := window.New(3)
	fill(w, 500, 200, 201, 202)

	assert.Equal(t, []int{200, 201, 202}, w.Statuses())
	assert.Equal(t, 0, w.Errors())
}

func TestWindow_OverflowEquivalentToLastCapacityInsertions(t *testing.T) {
	inserts := []int{503, 200, 500, 404, 502, 200, 200, 504, 301, 500, 200, 500}
	capacity := 5

	overflowed := window.New(capacity)
	fill(overflowed, inserts...)

	fresh := window.New(capacity)
	fill(fresh, inserts[len(inserts)-capacity:]...)

	assert.Equal(t, fresh.Statuses(), overflowed.Statuses())
	assert.Equal(t, fresh.Errors(), overflowed.Errors())
	assert.NotContains(t, overflowed.Statuses(), 503)
}

func TestWindow_NonPositiveCapacityUsesDefault(t *testing.T) {
	assert.Equal(t, window.DefaultCapacity, window.New(0).Cap())
	assert.Equal(t, window.DefaultCapacity, window.New(-5).Cap())
}

// =============================================================================
// ERROR RATE TESTS
// =============================================================================

func TestWindow_ErrorRateColdStart(t *testing.T) {
	w := window.New(200)
	w.Record(500)

	_, ok := w.ErrorRate()
	assert.False(t, ok, "one 500 in one request must not be meaningful")

	fill(w, repeat(500, window.MinSamples-2)...)
	_, ok = w.ErrorRate()
	assert.False(t, ok, "nine entries is still below the minimum")

	w.Record(200)
	rate, ok := w.ErrorRate()
	require.True(t, ok)
	assert.InDelta(t, 90.0, rate, 1e-9)
}

func TestWindow_ErrorRateThirtyPercent(t *testing.T) {
	w := window.New(200)
	fill(w, 200, 500, 200, 502, 200, 200, 503, 200, 200, 200)

	rate, ok := w.ErrorRate()

	require.True(t, ok)
	assert.InDelta(t, 30.0, rate, 1e-9)
	assert.Greater(t, rate, 2.0)
}

func TestWindow_ErrorRateTracksEvictions(t *testing.T) {
	w := window.New(10)
	fill(w, repeat(500, 10)...)
	fill(w, repeat(200, 5)...)

	rate, ok := w.ErrorRate()

	require.True(t, ok)
	assert.InDelta(t, 50.0, rate, 1e-9)
	assert.Equal(t, 5, w.Errors())
}

func TestWindow_FourHundredsAreNotErrors(t *testing.T) {
	w := window.New(20)
	fill(w, repeat(499, 10)...)

	rate, ok := w.ErrorRate()

	require.True(t, ok)
	assert.Zero(t, rate)
}
