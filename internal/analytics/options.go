package analytics

import (
	"log"
	"time"

	"solanalysis/internal/window"
)

// Defaults for Options.
const (
	DefaultSeriesCapacity   = 60
	DefaultActivityCapacity = 24
	DefaultSizeSamples      = 100
	DefaultBlockIntervals   = 10
	DefaultFeedRows         = 20
	DefaultBigTxMinSOL      = 10
	DefaultMaxTPS           = 65000
	DefaultSnapshotMaxAge   = time.Hour
)

// Options configures an Aggregator. Zero values take the defaults.
type Options struct {
	SeriesCapacity   int           // TPS, price, block time and fee history
	ActivityCapacity int           // network load history
	DedupCapacity    int           // remembered signatures
	FeeSamples       int           // fees averaged for the fee chart
	SizeSamples      int           // transaction sizes averaged for avg size
	BlockIntervals   int           // intervals averaged for avg block time
	FeedRows         int           // live feed length
	BigTxTTL         time.Duration // how long a big transaction is shown
	BigTxLimit       int           // big transactions displayed
	BigTxMinSOL      float64       // amount above which a transaction is big
	MaxTPS           float64       // TPS that counts as 100% load
	SnapshotMaxAge   time.Duration // snapshots older than this are not restored
	Sink             ChartSink
	Now              func() time.Time
	Location         *time.Location // time zone of chart labels
	Logger           *log.Logger
}

func (o Options) withDefaults() Options {
	if o.SeriesCapacity <= 0 {
		o.SeriesCapacity = DefaultSeriesCapacity
	}
	if o.ActivityCapacity <= 0 {
		o.ActivityCapacity = DefaultActivityCapacity
	}
	if o.DedupCapacity <= 0 {
		o.DedupCapacity = window.DefaultDedupCapacity
	}
	if o.FeeSamples <= 0 {
		o.FeeSamples = window.DefaultFeeSamples
	}
	if o.SizeSamples <= 0 {
		o.SizeSamples = DefaultSizeSamples
	}
	if o.BlockIntervals <= 0 {
		o.BlockIntervals = DefaultBlockIntervals
	}
	if o.FeedRows <= 0 {
		o.FeedRows = DefaultFeedRows
	}
	if o.BigTxTTL <= 0 {
		o.BigTxTTL = window.DefaultBigTxTTL
	}
	if o.BigTxLimit <= 0 {
		o.BigTxLimit = window.DefaultBigTxLimit
	}
	if o.BigTxMinSOL <= 0 {
		o.BigTxMinSOL = DefaultBigTxMinSOL
	}
	if o.MaxTPS <= 0 {
		o.MaxTPS = DefaultMaxTPS
	}
	if o.SnapshotMaxAge <= 0 {
		o.SnapshotMaxAge = DefaultSnapshotMaxAge
	}
	if o.Sink == nil {
		o.Sink = nopSink{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}
