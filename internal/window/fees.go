package window

// DefaultFeeSamples is the number of recent fees averaged by FeeWindow.
const DefaultFeeSamples = 100

// FeeWindow keeps the most recent fees and their running average and max.
type FeeWindow struct {
	fees *Series[float64]
	avg  float64
	max  float64
}

// NewFeeWindow creates a window over the last size fees.
func NewFeeWindow(size int) *FeeWindow {
	return &FeeWindow{fees: NewSeries[float64](size)}
}

// Add records fee and returns the recomputed average and max.
func (w *FeeWindow) Add(fee float64) (avg, max float64) {
	w.fees.Append(fee)
	items := w.fees.Items()
	w.avg = Mean(items)
	w.max = Max(items)
	return w.avg, w.max
}

// Stats returns the current average and max.
func (w *FeeWindow) Stats() (avg, max float64) {
	return w.avg, w.max
}

// Len returns the number of fees held.
func (w *FeeWindow) Len() int {
	return w.fees.Len()
}

// Reset clears the window.
func (w *FeeWindow) Reset() {
	w.fees.Reset()
	w.avg, w.max = 0, 0
}
