package v1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick represents a single normalized trade event from an upstream feed.
type Tick struct {
	Symbol     string          `json:"symbol"`
	Exchange   string          `json:"exchange"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Timestamp  time.Time       `json:"timestamp"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}

// BarState represents the lifecycle state of a bar.
type BarState string

const (
	// BarStateOpen indicates a bar still accumulating ticks for its bucket.
	BarStateOpen BarState = "open"
	// BarStateCompleted indicates a bar whose bucket has rolled over. Completed
	// bars are immutable.
	BarStateCompleted BarState = "completed"
)

// Bar represents one OHLCV candle for a (symbol, exchange, timeframe) series.
type Bar struct {
	Symbol      string          `json:"symbol"`
	Exchange    string          `json:"exchange"`
	Timeframe   string          `json:"timeframe"`
	BucketStart time.Time       `json:"bucket_start"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      decimal.Decimal `json:"volume"`
	TickCount   int64           `json:"tick_count"`
	State       BarState        `json:"state"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the bar. Decimal values are immutable, so a
// shallow struct copy is sufficient.
func (b *Bar) Clone() *Bar {
	cp := *b
	return &cp
}

// CheckKind identifies which quality gate check produced a verdict.
type CheckKind string

const (
	// CheckFreshness rejects ticks older than the configured maximum age.
	CheckFreshness CheckKind = "freshness"
	// CheckValidity rejects ticks with non-positive price or quantity or a
	// missing symbol.
	CheckValidity CheckKind = "validity"
	// CheckPriceOutlier rejects ticks whose price deviates too far from the
	// recent per-symbol distribution.
	CheckPriceOutlier CheckKind = "price_outlier"
	// CheckVolumeAnomaly rejects ticks whose quantity dwarfs the recent
	// per-symbol average.
	CheckVolumeAnomaly CheckKind = "volume_anomaly"
)

// QualityVerdict is the outcome of running a tick through the quality gate.
// Score is the smoothed per-symbol pass rate after this tick, in [0, 1].
type QualityVerdict struct {
	Passed       bool        `json:"passed"`
	FailedChecks []CheckKind `json:"failed_checks,omitempty"`
	Score        float64     `json:"score"`
}

// IndicatorSnapshot holds the indicator values computed after a bar update.
// A nil value means the series does not yet have enough history for that
// indicator.
type IndicatorSnapshot struct {
	Symbol      string              `json:"symbol"`
	Timeframe   string              `json:"timeframe"`
	BucketStart time.Time           `json:"bucket_start"`
	Values      map[string]*float64 `json:"values"`
	ComputedAt  time.Time           `json:"computed_at"`
}

// UpdateKind distinguishes in-progress bar updates from bucket rollovers.
type UpdateKind string

const (
	// UpdateKindBar is emitted while a bar is still open.
	UpdateKindBar UpdateKind = "bar"
	// UpdateKindBarClosed is emitted exactly once when a bucket rolls over.
	UpdateKindBarClosed UpdateKind = "bar_closed"
)

// Update is the unit of distribution to subscribers: a bar together with the
// indicators computed from it.
type Update struct {
	Kind       UpdateKind         `json:"kind"`
	Bar        *Bar               `json:"bar"`
	Indicators *IndicatorSnapshot `json:"indicators,omitempty"`
	EmittedAt  time.Time          `json:"emitted_at"`
}

// Topic returns the subscription topic this update belongs to.
func (u *Update) Topic() string {
	return Topic(u.Bar.Symbol, u.Bar.Timeframe)
}

// Topic builds the subscription topic for a (symbol, timeframe) pair.
func Topic(symbol, timeframe string) string {
	return symbol + "@" + timeframe
}
