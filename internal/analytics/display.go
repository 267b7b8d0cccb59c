package analytics

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"solanalysis/internal/window"
)

// Metrics that can be marked unavailable.
const (
	MetricTPS         = "tps"
	MetricBlockHeight = "blockHeight"
	MetricPrice       = "solPrice"
	MetricValidators  = "validators"
)

// Placeholder is shown for a metric whose last fetch failed.
const Placeholder = "---"

// defaultBlockTime is shown until two block intervals are known.
const defaultBlockTime = "~0.4s"

var printer = message.NewPrinter(language.English)

// AggregateStats summarizes every recorded transaction.
type AggregateStats struct {
	Total          int64   `json:"total"`
	Successful     int64   `json:"successful"`
	SuccessRate    float64 `json:"successRate"` // percent
	TotalVolume    float64 `json:"totalVolume"` // SOL
	AvgSize        float64 `json:"avgSize"`     // SOL, over recent sizes
	ActivePrograms int     `json:"activePrograms"`
}

// Stats returns the aggregate transaction stats.
func (a *Aggregator) Stats() AggregateStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statsLocked()
}

func (a *Aggregator) statsLocked() AggregateStats {
	s := AggregateStats{
		Total:          a.total,
		Successful:     a.successful,
		TotalVolume:    a.volume,
		AvgSize:        window.Mean(a.sizes.Items()),
		ActivePrograms: len(a.programs),
	}
	if a.total > 0 {
		s.SuccessRate = float64(a.successful) / float64(a.total) * 100
	}
	return s
}

// Display returns the formatted headline values keyed by metric name.
func (a *Aggregator) Display() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayLocked()
}

func (a *Aggregator) displayLocked() map[string]string {
	n := a.network
	s := a.statsLocked()

	d := map[string]string{
		MetricTPS:            printer.Sprintf("%d", n.TPS),
		MetricBlockHeight:    printer.Sprintf("%d", n.BlockHeight),
		MetricPrice:          strconv.FormatFloat(n.SOLPrice, 'f', 2, 64),
		MetricValidators:     printer.Sprintf("%d", n.Validators),
		"peakTps":            printer.Sprintf("%d", n.PeakTPS),
		"hourlyTransactions": printer.Sprintf("%d", n.HourlyTransactions),
		"totalAnalyzed":      printer.Sprintf("%d", n.TotalAnalyzed),
		"avgBlockTime":       a.avgBlockTimeLocked(),
		"networkLoad":        strconv.FormatFloat(a.loadLocked(), 'f', 1, 64) + "%",
		"avgTxSize":          strconv.FormatFloat(s.AvgSize, 'f', 2, 64) + " SOL",
		"successRate":        strconv.FormatFloat(s.SuccessRate, 'f', 1, 64) + "%",
		"activePrograms":     printer.Sprintf("%d", s.ActivePrograms),
		"totalVolume":        printer.Sprintf("%.0f", s.TotalVolume) + " SOL",
	}
	if n.SOLPrice == 0 {
		d[MetricPrice] = Placeholder
	}
	for metric := range a.unavailable {
		d[metric] = Placeholder
	}
	return d
}

func (a *Aggregator) avgBlockTimeLocked() string {
	if a.intervals.Len() < 2 {
		return defaultBlockTime
	}
	return strconv.FormatFloat(window.Mean(a.intervals.Items()), 'f', 1, 64) + "s"
}
