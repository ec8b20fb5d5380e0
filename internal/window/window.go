// Package window keeps a fixed-capacity FIFO of recent HTTP status codes and
// derives the error rate over it.
//
// DESIGN: A ring buffer with a running count of 5xx statuses, so Record and
// ErrorRate are both O(1). The window is owned by a single goroutine and is
// not safe for concurrent use.
package window

// MinSamples is the number of entries required before the error rate is
// considered meaningful.
const MinSamples = 10

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 200

// Window is a fixed-capacity FIFO of status codes.
type Window struct {
	buf    []int
	head   int // index of the oldest entry
	size   int
	errors int
}

// New creates a window holding at most capacity statuses.
func New(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{buf: make([]int, capacity)}
}

// Record appends a status, evicting the oldest one when the window is full.
func (w *Window) Record(status int) {
	if w.size == len(w.buf) {
		if isError(w.buf[w.head]) {
			w.errors--
		}
		w.buf[w.head] = status
		w.head = (w.head + 1) % len(w.buf)
	} else {
		w.buf[(w.head+w.size)%len(w.buf)] = status
		w.size++
	}
	if isError(status) {
		w.errors++
	}
}

// ErrorRate returns the percentage of statuses >= 500. The second result is
// false while fewer than MinSamples statuses have been recorded.
func (w *Window) ErrorRate() (float64, bool) {
	if w.size < MinSamples {
		return 0, false
	}
	return float64(w.errors) / float64(w.size) * 100, true
}

// Errors returns the number of 5xx statuses currently in the window.
func (w *Window) Errors() int { return w.errors }

// Len returns the number of statuses currently held.
func (w *Window) Len() int { return w.size }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Statuses returns the held statuses, oldest first.
func (w *Window) Statuses() []int {
	out := make([]int, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

func isError(status int) bool { return status >= 500 }
