package aggregator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	loggerMock "github.com/mytechsonamy/crypto-stock-platform/pkg/logger/mock"
)

func newTestBuilder(t *testing.T) *Builder {
	ctrl := gomock.NewController(t)
	log := loggerMock.NewMockInterface(ctrl)
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return NewBuilder(log)
}

func tickAt(ms int64, price, qty float64) *v1.Tick {
	return &v1.Tick{
		Symbol:    "BTCUSDT",
		Exchange:  "binance",
		Price:     decimal.NewFromFloat(price),
		Quantity:  decimal.NewFromFloat(qty),
		Timestamp: time.UnixMilli(ms).UTC(),
	}
}

func findBar(bars []*v1.Bar, timeframe string) *v1.Bar {
	for _, bar := range bars {
		if bar.Timeframe == timeframe {
			return bar
		}
	}
	return nil
}

func TestBuilder_Ingest_minuteRollover(t *testing.T) {
	builder := newTestBuilder(t)

	result := builder.Ingest(tickAt(0, 100, 1))
	require.Len(t, result.Updated, 1)
	assert.Empty(t, result.Completed)

	open := result.Updated[0]
	assert.Equal(t, v1.BarStateOpen, open.State)
	assert.Equal(t, "100", open.Open.String())
	assert.Equal(t, int64(0), open.BucketStart.UnixMilli())

	result = builder.Ingest(tickAt(30000, 102, 1))
	require.Len(t, result.Updated, 1)
	assert.Empty(t, result.Completed)

	// The tick at t=61000 crosses the minute boundary: bucket 0 completes
	// and a new bar opens for bucket 60000.
	result = builder.Ingest(tickAt(61000, 99, 2))
	require.Len(t, result.Completed, 1)

	completed := result.Completed[0]
	assert.Equal(t, v1.BarStateCompleted, completed.State)
	assert.Equal(t, int64(0), completed.BucketStart.UnixMilli())
	assert.Equal(t, "100", completed.Open.String())
	assert.Equal(t, "102", completed.High.String())
	assert.Equal(t, "100", completed.Low.String())
	assert.Equal(t, "102", completed.Close.String())
	assert.Equal(t, "2", completed.Volume.String())
	assert.Equal(t, int64(2), completed.TickCount)

	next := findBar(result.Updated, "1m")
	require.NotNil(t, next)
	assert.Equal(t, v1.BarStateOpen, next.State)
	assert.Equal(t, int64(60000), next.BucketStart.UnixMilli())
	assert.Equal(t, "99", next.Open.String())
	assert.Equal(t, "99", next.High.String())
	assert.Equal(t, "99", next.Low.String())
	assert.Equal(t, "99", next.Close.String())
	assert.Equal(t, "2", next.Volume.String())
}

func TestBuilder_Ingest_ohlcInvariant(t *testing.T) {
	builder := newTestBuilder(t)

	prices := []float64{100, 105, 98, 103, 101}
	for i, price := range prices {
		builder.Ingest(tickAt(int64(i*1000), price, 1))
	}

	result := builder.Ingest(tickAt(60000, 102, 1))
	require.Len(t, result.Completed, 1)

	bar := result.Completed[0]
	assert.Equal(t, "100", bar.Open.String())
	assert.Equal(t, "105", bar.High.String())
	assert.Equal(t, "98", bar.Low.String())
	assert.Equal(t, "101", bar.Close.String())
	assert.Equal(t, "5", bar.Volume.String())

	assert.True(t, bar.High.GreaterThanOrEqual(bar.Open))
	assert.True(t, bar.High.GreaterThanOrEqual(bar.Close))
	assert.True(t, bar.Low.LessThanOrEqual(bar.Open))
	assert.True(t, bar.Low.LessThanOrEqual(bar.Close))
}

func TestBuilder_Ingest_completionIdempotence(t *testing.T) {
	ticks := []*v1.Tick{
		tickAt(0, 100.5, 0.25),
		tickAt(15000, 101.25, 1.5),
		tickAt(45000, 99.75, 0.5),
		tickAt(61000, 100, 1),
		tickAt(125000, 101, 2),
	}

	run := func() []*v1.Bar {
		builder := newTestBuilder(t)
		var completed []*v1.Bar
		for _, tick := range ticks {
			result := builder.Ingest(tick)
			completed = append(completed, result.Completed...)
		}
		return completed
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestBuilder_Ingest_lateTickDropped(t *testing.T) {
	builder := newTestBuilder(t)

	builder.Ingest(tickAt(0, 100, 1))
	builder.Ingest(tickAt(61000, 99, 1))

	// Bucket 0 already completed; this tick must not reopen or mutate it.
	result := builder.Ingest(tickAt(30000, 500, 1))
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Completed)
	assert.Equal(t, int64(1), builder.LateTicks())

	result = builder.Ingest(tickAt(121000, 98, 1))
	completed := findBar(result.Completed, "1m")
	require.NotNil(t, completed)
	assert.Equal(t, int64(60000), completed.BucketStart.UnixMilli())
	assert.Equal(t, "99", completed.High.String())
}

func TestBuilder_Ingest_derivesHigherTimeframes(t *testing.T) {
	builder := newTestBuilder(t)

	// Two ticks per minute across minutes 0..5 of a 5m bucket, then one tick
	// in the next 5m bucket to force the rollover.
	prices := [][2]float64{
		{100, 101}, {103, 102}, {99, 100}, {101, 104}, {102, 103},
	}
	for minute, pair := range prices {
		base := int64(minute) * 60000
		builder.Ingest(tickAt(base, pair[0], 1))
		builder.Ingest(tickAt(base+30000, pair[1], 1))
	}

	// Minute 4 completes here and merges into the still-open 5m bar.
	result := builder.Ingest(tickAt(5*60000, 105, 1))
	assert.Nil(t, findBar(result.Completed, "5m"))

	fiveMin := findBar(result.Updated, "5m")
	require.NotNil(t, fiveMin)
	assert.Equal(t, v1.BarStateOpen, fiveMin.State)
	assert.Equal(t, "103", fiveMin.Close.String())

	// Minute 5 completes here; its bucket belongs to the next 5m window, so
	// the first 5m bar rolls over carrying minutes 0-4 only.
	result = builder.Ingest(tickAt(6*60000, 106, 1))

	fiveMin = findBar(result.Completed, "5m")
	require.NotNil(t, fiveMin)
	assert.Equal(t, int64(0), fiveMin.BucketStart.UnixMilli())
	assert.Equal(t, "100", fiveMin.Open.String())
	assert.Equal(t, "104", fiveMin.High.String())
	assert.Equal(t, "99", fiveMin.Low.String())
	assert.Equal(t, "103", fiveMin.Close.String())
	assert.Equal(t, "10", fiveMin.Volume.String())
	assert.Equal(t, int64(10), fiveMin.TickCount)

	next := findBar(result.Updated, "5m")
	require.NotNil(t, next)
	assert.Equal(t, int64(5*60000), next.BucketStart.UnixMilli())
	assert.Equal(t, "105", next.Open.String())
}

func TestBuilder_FlushOlderThan(t *testing.T) {
	builder := newTestBuilder(t)

	builder.Ingest(tickAt(0, 100, 1))
	builder.Ingest(tickAt(30000, 102, 1))

	// Cutoff before the bucket end keeps the bar open.
	result := builder.FlushOlderThan(time.UnixMilli(59000).UTC())
	assert.Empty(t, result.Completed)
	assert.Equal(t, 1, builder.OpenBars())

	result = builder.FlushOlderThan(time.UnixMilli(60000).UTC())
	oneMin := findBar(result.Completed, "1m")
	require.NotNil(t, oneMin)
	assert.Equal(t, "102", oneMin.Close.String())
	assert.Equal(t, v1.BarStateCompleted, oneMin.State)

	// The flushed 1m bar cascades into open derived bars.
	fiveMin := findBar(result.Updated, "5m")
	require.NotNil(t, fiveMin)
	assert.Equal(t, v1.BarStateOpen, fiveMin.State)
	assert.Equal(t, "100", fiveMin.Open.String())
}

func TestBuilder_Ingest_symbolsIndependent(t *testing.T) {
	builder := newTestBuilder(t)

	btc := tickAt(0, 100, 1)
	eth := tickAt(0, 2000, 1)
	eth.Symbol = "ETHUSDT"

	builder.Ingest(btc)
	builder.Ingest(eth)

	late := tickAt(61000, 101, 1)
	result := builder.Ingest(late)

	completed := findBar(result.Completed, "1m")
	require.NotNil(t, completed)
	assert.Equal(t, "BTCUSDT", completed.Symbol)
	assert.Equal(t, "100", completed.Close.String())

	// ETH bar is untouched by the BTC rollover.
	assert.Equal(t, int64(0), builder.LateTicks())
}
