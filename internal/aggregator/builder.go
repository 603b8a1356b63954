package aggregator

import (
	"sync/atomic"
	"time"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/interval"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// seriesKey identifies one bar series.
type seriesKey struct {
	symbol    string
	exchange  string
	timeframe string
}

// Result carries the bars affected by one ingested tick or flush. Updated
// holds snapshots of bars still open, Completed holds bars that just rolled
// over. All bars are clones, safe to hand to other goroutines.
type Result struct {
	Updated   []*v1.Bar
	Completed []*v1.Bar
}

func (r *Result) merge(other *Result) {
	r.Updated = append(r.Updated, other.Updated...)
	r.Completed = append(r.Completed, other.Completed...)
}

// Builder turns validated ticks into OHLCV bars. Only the 1m timeframe is
// built directly from ticks; higher timeframes are derived from completed 1m
// bars so all timeframes stay consistent by construction.
//
// Builder is not safe for concurrent use. The pipeline owns one builder per
// shard and serializes all calls for a symbol onto its shard worker.
type Builder struct {
	logger logger.Interface

	bars map[seriesKey]*v1.Bar

	// Counters are atomic so the stats surface can read them from another
	// goroutine without taking part in shard serialization.
	lateTicks atomic.Int64
	open      atomic.Int64
}

// NewBuilder creates an empty bar builder.
func NewBuilder(log logger.Interface) *Builder {
	return &Builder{
		logger: log,
		bars:   make(map[seriesKey]*v1.Bar),
	}
}

// Ingest applies one tick to the 1m series for its symbol and cascades any
// completed 1m bar into the derived timeframes. Ticks for an already
// completed bucket are dropped and counted.
func (b *Builder) Ingest(tick *v1.Tick) *Result {
	result := &Result{}

	key := seriesKey{
		symbol:    tick.Symbol,
		exchange:  tick.Exchange,
		timeframe: interval.Timeframe1m.Name,
	}
	bucket := interval.Timeframe1m.BucketStart(tick.Timestamp)

	current := b.bars[key]
	switch {
	case current == nil:
		current = openBar(tick, bucket)
		b.put(key, current)
		result.Updated = append(result.Updated, current.Clone())

	case bucket.Equal(current.BucketStart):
		applyTick(current, tick)
		result.Updated = append(result.Updated, current.Clone())

	case bucket.After(current.BucketStart):
		completed := b.complete(key, current)
		result.Completed = append(result.Completed, completed)
		result.merge(b.cascade(completed))

		next := openBar(tick, bucket)
		b.put(key, next)
		result.Updated = append(result.Updated, next.Clone())

	default:
		b.lateTicks.Add(1)
		b.logger.Warn("late tick dropped", logger.Field{
			Key:   "symbol",
			Value: tick.Symbol,
		}, logger.Field{
			Key:   "tick_bucket",
			Value: bucket,
		}, logger.Field{
			Key:   "open_bucket",
			Value: current.BucketStart,
		})
	}

	return result
}

// FlushOlderThan completes every open bar whose bucket fully elapsed before
// the cutoff. This is the expiry path for series that stopped receiving
// ticks; without it a bar could stay open indefinitely.
func (b *Builder) FlushOlderThan(cutoff time.Time) *Result {
	result := &Result{}

	// Flush 1m bars first so their completions cascade into derived series
	// before those are considered for expiry themselves. Keys are collected
	// up front because cascading mutates the series map.
	for _, timeframe := range append([]interval.Timeframe{interval.Timeframe1m}, interval.DerivedTimeframes...) {
		var expired []seriesKey
		for key, bar := range b.bars {
			if key.timeframe != timeframe.Name {
				continue
			}
			if bar.BucketStart.Add(timeframe.Duration).After(cutoff) {
				continue
			}
			expired = append(expired, key)
		}

		for _, key := range expired {
			bar, ok := b.bars[key]
			if !ok {
				continue
			}
			completed := b.complete(key, bar)
			result.Completed = append(result.Completed, completed)
			if key.timeframe == interval.Timeframe1m.Name {
				result.merge(b.cascade(completed))
			}
		}
	}

	return result
}

// LateTicks returns the number of out-of-order ticks dropped so far.
func (b *Builder) LateTicks() int64 {
	return b.lateTicks.Load()
}

// OpenBars returns the number of bars currently open across all series.
func (b *Builder) OpenBars() int {
	return int(b.open.Load())
}

// cascade merges one completed 1m bar into every derived timeframe,
// completing any derived bar whose bucket the 1m bar has moved past.
func (b *Builder) cascade(oneMinute *v1.Bar) *Result {
	result := &Result{}

	for _, timeframe := range interval.DerivedTimeframes {
		key := seriesKey{
			symbol:    oneMinute.Symbol,
			exchange:  oneMinute.Exchange,
			timeframe: timeframe.Name,
		}
		bucket := timeframe.BucketStart(oneMinute.BucketStart)

		current := b.bars[key]
		switch {
		case current == nil:
			current = deriveBar(oneMinute, timeframe.Name, bucket)
			b.put(key, current)
			result.Updated = append(result.Updated, current.Clone())

		case bucket.Equal(current.BucketStart):
			mergeBar(current, oneMinute)
			result.Updated = append(result.Updated, current.Clone())

		case bucket.After(current.BucketStart):
			completed := b.complete(key, current)
			result.Completed = append(result.Completed, completed)

			next := deriveBar(oneMinute, timeframe.Name, bucket)
			b.put(key, next)
			result.Updated = append(result.Updated, next.Clone())

		default:
			// An ordered 1m stream cannot move a derived series backwards.
			b.lateTicks.Add(1)
		}
	}

	return result
}

func (b *Builder) put(key seriesKey, bar *v1.Bar) {
	b.bars[key] = bar
	b.open.Add(1)
}

func (b *Builder) complete(key seriesKey, bar *v1.Bar) *v1.Bar {
	bar.State = v1.BarStateCompleted
	completed := bar.Clone()
	delete(b.bars, key)
	b.open.Add(-1)
	return completed
}

func openBar(tick *v1.Tick, bucket time.Time) *v1.Bar {
	return &v1.Bar{
		Symbol:      tick.Symbol,
		Exchange:    tick.Exchange,
		Timeframe:   interval.Timeframe1m.Name,
		BucketStart: bucket,
		Open:        tick.Price,
		High:        tick.Price,
		Low:         tick.Price,
		Close:       tick.Price,
		Volume:      tick.Quantity,
		TickCount:   1,
		State:       v1.BarStateOpen,
		UpdatedAt:   tick.Timestamp,
	}
}

func applyTick(bar *v1.Bar, tick *v1.Tick) {
	if tick.Price.GreaterThan(bar.High) {
		bar.High = tick.Price
	}
	if tick.Price.LessThan(bar.Low) {
		bar.Low = tick.Price
	}
	bar.Close = tick.Price
	bar.Volume = bar.Volume.Add(tick.Quantity)
	bar.TickCount++
	bar.UpdatedAt = tick.Timestamp
}

func deriveBar(src *v1.Bar, timeframe string, bucket time.Time) *v1.Bar {
	return &v1.Bar{
		Symbol:      src.Symbol,
		Exchange:    src.Exchange,
		Timeframe:   timeframe,
		BucketStart: bucket,
		Open:        src.Open,
		High:        src.High,
		Low:         src.Low,
		Close:       src.Close,
		Volume:      src.Volume,
		TickCount:   src.TickCount,
		State:       v1.BarStateOpen,
		UpdatedAt:   src.UpdatedAt,
	}
}

func mergeBar(dst, src *v1.Bar) {
	if src.High.GreaterThan(dst.High) {
		dst.High = src.High
	}
	if src.Low.LessThan(dst.Low) {
		dst.Low = src.Low
	}
	dst.Close = src.Close
	dst.Volume = dst.Volume.Add(src.Volume)
	dst.TickCount += src.TickCount
	dst.UpdatedAt = src.UpdatedAt
}
