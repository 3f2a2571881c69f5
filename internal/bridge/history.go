package bridge

// History is a fixed-capacity ring of samples. Push evicts the oldest
// sample once the window is full; all operations are O(1) except the
// window statistics, which walk at most the capacity.
type History struct {
	buf   []float64
	start int
	count int
}

// NewHistory creates a History holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (h *History) Push(v float64) {
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = v
		h.count++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of stored samples.
func (h *History) Len() int { return h.count }

// Cap returns the window capacity.
func (h *History) Cap() int { return len(h.buf) }

// At returns the i-th sample, 0 being the oldest.
func (h *History) At(i int) float64 {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Latest returns the most recent sample.
func (h *History) Latest() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.At(h.count - 1), true
}

// Values returns the samples oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.At(i)
	}
	return out
}

// Sum returns the sum over the window.
func (h *History) Sum() float64 {
	total := 0.0
	for i := 0; i < h.count; i++ {
		total += h.At(i)
	}
	return total
}

// Average returns the mean over the window, 0 when empty.
func (h *History) Average() float64 {
	if h.count == 0 {
		return 0
	}
	return h.Sum() / float64(h.count)
}

// RecentAverage returns the mean of the newest n samples.
func (h *History) RecentAverage(n int) float64 {
	if n > h.count {
		n = h.count
	}
	if n == 0 {
		return 0
	}
	total := 0.0
	for i := h.count - n; i < h.count; i++ {
		total += h.At(i)
	}
	return total / float64(n)
}

// Trend returns newest minus oldest, 0 with fewer than two samples.
func (h *History) Trend() float64 {
	if h.count < 2 {
		return 0
	}
	return h.At(h.count-1) - h.At(0)
}

// Declining reports whether the newest n samples are strictly decreasing.
func (h *History) Declining(n int) bool {
	if n < 2 || h.count < n {
		return false
	}
	for i := h.count - n + 1; i < h.count; i++ {
		if h.At(i) >= h.At(i-1) {
			return false
		}
	}
	return true
}
