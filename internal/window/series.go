// Package window provides the bounded collections behind the dashboard charts:
// fixed-capacity series, a FIFO dedup set, a fee window and the big
// transaction tracker.
package window

// Point is one labeled chart sample.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Series is an append-only sequence holding at most Cap elements.
// Appending to a full series evicts the oldest element. Order is preserved.
// Series is not safe for concurrent use; callers own the locking.
type Series[T any] struct {
	buf   []T
	start int // index of the oldest element
	n     int
}

// NewSeries creates a series with the given capacity (minimum 1).
func NewSeries[T any](capacity int) *Series[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Series[T]{buf: make([]T, capacity)}
}

// Append adds v at the end. When the series was full, the oldest element
// is removed and returned with evicted=true.
func (s *Series[T]) Append(v T) (old T, evicted bool) {
	if s.n < len(s.buf) {
		s.buf[(s.start+s.n)%len(s.buf)] = v
		s.n++
		return old, false
	}

	old = s.buf[s.start]
	s.buf[s.start] = v
	s.start = (s.start + 1) % len(s.buf)
	return old, true
}

// Len returns the number of elements held.
func (s *Series[T]) Len() int {
	return s.n
}

// Cap returns the maximum number of elements.
func (s *Series[T]) Cap() int {
	return len(s.buf)
}

// Items returns a copy of the elements, oldest first.
func (s *Series[T]) Items() []T {
	out := make([]T, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

// Newest returns a copy of the elements, newest first.
func (s *Series[T]) Newest() []T {
	out := make([]T, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+s.n-1-i)%len(s.buf)]
	}
	return out
}

// Reset removes all elements.
func (s *Series[T]) Reset() {
	var zero T
	for i := range s.buf {
		s.buf[i] = zero
	}
	s.start = 0
	s.n = 0
}

// Fill replaces the contents with items, keeping only the newest Cap of them.
func (s *Series[T]) Fill(items []T) {
	s.Reset()
	if len(items) > len(s.buf) {
		items = items[len(items)-len(s.buf):]
	}
	for _, v := range items {
		s.Append(v)
	}
}

// Split returns the label and value arrays handed to the chart layer.
func Split(points []Point) ([]string, []float64) {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Time
		values[i] = p.Value
	}
	return labels, values
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Max returns the largest element of xs, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
