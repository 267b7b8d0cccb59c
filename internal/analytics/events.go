package analytics

// EventType identifies what changed in an Event.
type EventType string

// Event types published to a ChartSink.
const (
	EventSeries   EventType = "series"   // a time series gained a point
	EventTypes    EventType = "types"    // transaction type counts changed
	EventStats    EventType = "stats"    // headline numbers changed
	EventFeed     EventType = "feed"     // live feed rows changed
	EventBigTx    EventType = "bigtx"    // big transaction list changed
	EventWallets  EventType = "wallets"  // whale list replaced
	EventTokens   EventType = "tokens"   // token list replaced
	EventSnapshot EventType = "snapshot" // full dashboard view, sent on connect
)

// Series names.
const (
	SeriesTPS       = "tps"
	SeriesPrice     = "price"
	SeriesActivity  = "activity"
	SeriesBlockTime = "blockTime"
	SeriesFees      = "fees"
	SeriesTxTypes   = "txTypes"
)

// Event is one update handed to the chart collaborator.
type Event struct {
	Type   EventType   `json:"type"`
	Series string      `json:"series,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Values []float64   `json:"values,omitempty"`
	Max    []float64   `json:"max,omitempty"` // second dataset of the fee chart
	Data   interface{} `json:"data,omitempty"`
}

// ChartSink receives aggregator updates. Publish is called outside the
// aggregator lock and must not block for long.
type ChartSink interface {
	Publish(Event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}
