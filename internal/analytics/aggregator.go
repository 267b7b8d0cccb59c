// Package analytics owns the dashboard's rolling state: bounded chart
// series, transaction type counts, aggregate stats, the live feed and the
// big transaction tracker.
package analytics

import (
	"log"
	"math"
	"sync"
	"time"

	"solanalysis/internal/domain"
	"solanalysis/internal/window"
)

// Time label layouts for chart points.
const (
	secondLabel = "15:04:05"
	minuteLabel = "15:04"
	feedLabel   = "3:04:05 PM MST"
)

// FeePoint is one point of the fee chart.
type FeePoint struct {
	Time string  `json:"time"`
	Avg  float64 `json:"avg"`
	Max  float64 `json:"max"`
}

// Aggregator is the single owner of all dashboard state.
// All methods are safe for concurrent use.
type Aggregator struct {
	opts   Options
	sink   ChartSink
	now    func() time.Time
	loc    *time.Location
	logger *log.Logger

	mu          sync.Mutex
	tps         *window.Series[window.Point]
	price       *window.Series[window.Point]
	activity    *window.Series[window.Point]
	blockTime   *window.Series[window.Point]
	fees        *window.Series[FeePoint]
	intervals   *window.Series[float64] // seconds
	sizes       *window.Series[float64] // SOL
	feeWindow   *window.FeeWindow
	seen        *window.DedupSet
	bigTx       *window.BigTxTracker
	feed        *window.Series[domain.LiveFeedRow]
	typeCounts  map[domain.Label]int64
	programs    map[string]struct{}
	total       int64
	successful  int64
	volume      float64
	network     domain.NetworkStats
	unavailable map[string]bool
	wallets     []domain.Wallet
	tokens      []domain.Token
}

// New creates an empty Aggregator.
func New(opts Options) *Aggregator {
	opts = opts.withDefaults()
	a := &Aggregator{
		opts:   opts,
		sink:   opts.Sink,
		now:    opts.Now,
		loc:    opts.Location,
		logger: opts.Logger,
	}
	a.reset()
	return a
}

func (a *Aggregator) reset() {
	o := a.opts
	a.tps = window.NewSeries[window.Point](o.SeriesCapacity)
	a.price = window.NewSeries[window.Point](o.SeriesCapacity)
	a.activity = window.NewSeries[window.Point](o.ActivityCapacity)
	a.blockTime = window.NewSeries[window.Point](o.SeriesCapacity)
	a.fees = window.NewSeries[FeePoint](o.SeriesCapacity)
	a.intervals = window.NewSeries[float64](o.BlockIntervals)
	a.sizes = window.NewSeries[float64](o.SizeSamples)
	a.feeWindow = window.NewFeeWindow(o.FeeSamples)
	a.seen = window.NewDedupSet(o.DedupCapacity)
	a.bigTx = window.NewBigTxTracker(o.BigTxTTL, o.BigTxLimit)
	a.feed = window.NewSeries[domain.LiveFeedRow](o.FeedRows)
	a.typeCounts = make(map[domain.Label]int64, len(domain.AllLabels))
	for _, l := range domain.AllLabels {
		a.typeCounts[l] = 0
	}
	a.programs = make(map[string]struct{})
	a.total = 0
	a.successful = 0
	a.volume = 0
	a.network = domain.NetworkStats{}
	a.unavailable = make(map[string]bool)
	a.wallets = nil
	a.tokens = nil
}

// Reset returns the aggregator to its initial empty state.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.reset()
	a.mu.Unlock()
}

func (a *Aggregator) label(at time.Time, layout string) string {
	return at.In(a.loc).Format(layout)
}

func (a *Aggregator) publish(events ...Event) {
	for _, ev := range events {
		a.sink.Publish(ev)
	}
}

func pointsEvent(name string, s *window.Series[window.Point]) Event {
	labels, values := window.Split(s.Items())
	return Event{Type: EventSeries, Series: name, Labels: labels, Values: values}
}

// RecordTPS appends tps to the TPS series and updates the peak.
func (a *Aggregator) RecordTPS(tps int64, at time.Time) {
	a.mu.Lock()
	a.network.TPS = tps
	if tps > a.network.PeakTPS {
		a.network.PeakTPS = tps
	}
	delete(a.unavailable, MetricTPS)
	a.tps.Append(window.Point{Time: a.label(at, secondLabel), Value: float64(tps)})
	ev := pointsEvent(SeriesTPS, a.tps)
	stats := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev, stats)
}

// RecordPrice appends price to the price series. Non-positive prices are ignored.
func (a *Aggregator) RecordPrice(price float64, at time.Time) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}

	a.mu.Lock()
	a.network.SOLPrice = price
	delete(a.unavailable, MetricPrice)
	a.price.Append(window.Point{Time: a.label(at, minuteLabel), Value: price})
	ev := pointsEvent(SeriesPrice, a.price)
	stats := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev, stats)
}

// RecordNetworkLoad derives the load percentage from the current TPS,
// appends it to the activity series and returns it.
func (a *Aggregator) RecordNetworkLoad(at time.Time) float64 {
	a.mu.Lock()
	load := a.loadLocked()
	a.activity.Append(window.Point{Time: a.label(at, minuteLabel), Value: load})
	ev := pointsEvent(SeriesActivity, a.activity)
	a.mu.Unlock()

	a.publish(ev)
	return load
}

func (a *Aggregator) loadLocked() float64 {
	return math.Min(100, float64(a.network.TPS)/a.opts.MaxTPS*100)
}

// RecordBlockInterval records the time between two observed blocks and
// appends it, in milliseconds, to the block time series.
func (a *Aggregator) RecordBlockInterval(d time.Duration, at time.Time) {
	if d < 0 {
		return
	}

	a.mu.Lock()
	a.intervals.Append(d.Seconds())
	a.blockTime.Append(window.Point{Time: a.label(at, minuteLabel), Value: float64(d.Milliseconds())})
	ev := pointsEvent(SeriesBlockTime, a.blockTime)
	stats := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev, stats)
}

// RecordTransaction folds obs into the counters, fee chart and live feed.
// It returns false, changing nothing, when the signature was seen before.
func (a *Aggregator) RecordTransaction(obs domain.Observation) bool {
	a.mu.Lock()
	if !a.seen.Add(obs.Signature) {
		a.mu.Unlock()
		return false
	}

	label := obs.Label
	if !label.Valid() {
		label = domain.LabelOther
	}
	a.typeCounts[label]++

	a.total++
	a.network.TotalAnalyzed++
	if !obs.Failed {
		a.successful++
	}
	if obs.AmountSOL > 0 {
		a.sizes.Append(obs.AmountSOL)
		a.volume += obs.AmountSOL
	}
	if len(obs.ProgramIDs) > 0 {
		for _, p := range obs.ProgramIDs {
			a.programs[p] = struct{}{}
		}
	} else if obs.Label != "" {
		a.programs[string(obs.Label)] = struct{}{}
	}

	avg, max := a.feeWindow.Add(obs.FeeSOL)
	at := obs.ObservedAt
	if at.IsZero() {
		at = a.now()
	}
	a.fees.Append(FeePoint{Time: a.label(at, minuteLabel), Avg: avg, Max: max})

	status := domain.StatusSuccess
	if obs.Failed {
		status = domain.StatusFailed
	}
	a.feed.Append(domain.LiveFeedRow{
		Time:      a.label(at, feedLabel),
		Signature: obs.Signature,
		Type:      obs.Label,
		Amount:    obs.Amount,
		Fee:       obs.Fee,
		Status:    status,
	})

	events := []Event{
		a.typesEventLocked(),
		a.feesEventLocked(),
		{Type: EventFeed, Data: a.feed.Newest()},
		a.statsEventLocked(),
	}
	a.mu.Unlock()

	a.publish(events...)
	return true
}

func (a *Aggregator) typesEventLocked() Event {
	labels := make([]string, len(domain.AllLabels))
	values := make([]float64, len(domain.AllLabels))
	for i, l := range domain.AllLabels {
		labels[i] = string(l)
		values[i] = float64(a.typeCounts[l])
	}
	return Event{Type: EventTypes, Series: SeriesTxTypes, Labels: labels, Values: values}
}

func (a *Aggregator) feesEventLocked() Event {
	points := a.fees.Items()
	ev := Event{
		Type:   EventSeries,
		Series: SeriesFees,
		Labels: make([]string, len(points)),
		Values: make([]float64, len(points)),
		Max:    make([]float64, len(points)),
	}
	for i, p := range points {
		ev.Labels[i] = p.Time
		ev.Values[i] = p.Avg
		ev.Max[i] = p.Max
	}
	return ev
}

// TrackBigTransaction adds obs to the big transaction tracker when it
// succeeded and moved more than the configured minimum.
func (a *Aggregator) TrackBigTransaction(obs domain.Observation) bool {
	if obs.Failed || obs.AmountSOL <= a.opts.BigTxMinSOL || obs.Signature == "" {
		return false
	}

	at := obs.ObservedAt
	if at.IsZero() {
		at = a.now()
	}

	a.mu.Lock()
	added := a.bigTx.Add(domain.BigTransaction{
		Signature: obs.Signature,
		Amount:    obs.AmountSOL,
		Type:      obs.Label,
		Timestamp: at.UnixMilli(),
		BlockTime: obs.BlockTime,
	})
	a.mu.Unlock()
	return added
}

// RefreshBigTransactions drops expired entries, re-sorts the rest and
// returns the top of the list.
func (a *Aggregator) RefreshBigTransactions(now time.Time) []domain.BigTransaction {
	a.mu.Lock()
	a.bigTx.Refresh(now)
	top := a.bigTx.Top()
	a.mu.Unlock()

	a.publish(Event{Type: EventBigTx, Data: top})
	return top
}

// SetBlockHeight updates the block height.
func (a *Aggregator) SetBlockHeight(height int64) {
	a.mu.Lock()
	a.network.BlockHeight = height
	delete(a.unavailable, MetricBlockHeight)
	ev := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev)
}

// SetValidators updates the active validator count.
func (a *Aggregator) SetValidators(n int) {
	a.mu.Lock()
	a.network.Validators = n
	delete(a.unavailable, MetricValidators)
	ev := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev)
}

// AddHourlyTransactions adds n to the hourly transaction counter.
func (a *Aggregator) AddHourlyTransactions(n int64) {
	if n <= 0 {
		return
	}
	a.mu.Lock()
	a.network.HourlyTransactions += n
	ev := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev)
}

// MarkUnavailable flags metric so it renders as a placeholder until the
// next successful update.
func (a *Aggregator) MarkUnavailable(metric string) {
	a.mu.Lock()
	a.unavailable[metric] = true
	ev := a.statsEventLocked()
	a.mu.Unlock()

	a.publish(ev)
}

// SetWallets replaces the whale wallet list.
func (a *Aggregator) SetWallets(wallets []domain.Wallet) {
	cp := append([]domain.Wallet(nil), wallets...)
	a.mu.Lock()
	a.wallets = cp
	a.mu.Unlock()

	a.publish(Event{Type: EventWallets, Data: cp})
}

// SetTokens replaces the popular token list.
func (a *Aggregator) SetTokens(tokens []domain.Token) {
	cp := append([]domain.Token(nil), tokens...)
	a.mu.Lock()
	a.tokens = cp
	a.mu.Unlock()

	a.publish(Event{Type: EventTokens, Data: cp})
}

// Network returns the headline network numbers.
func (a *Aggregator) Network() domain.NetworkStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.network
}

// Seen reports whether a transaction signature was already recorded.
func (a *Aggregator) Seen(sig string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen.Contains(sig)
}

func (a *Aggregator) statsEventLocked() Event {
	return Event{Type: EventStats, Data: a.displayLocked()}
}
