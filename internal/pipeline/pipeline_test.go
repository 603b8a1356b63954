package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mytechsonamy/crypto-stock-platform/internal/distributor"
	marketMock "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/mock"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/internal/indicator"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	loggerMock "github.com/mytechsonamy/crypto-stock-platform/pkg/logger/mock"
)

type recordingSink struct {
	id string

	mu       sync.Mutex
	received []*v1.Update
}

func (s *recordingSink) ID() string { return s.id }

func (s *recordingSink) Send(update *v1.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, update)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) updates() []*v1.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*v1.Update(nil), s.received...)
}

type pipelineFixture struct {
	pipeline    *Pipeline
	distributor *distributor.Distributor
	barUsecase  *marketMock.MockBarUsecase
	cache       *marketMock.MockBarCache
}

func newFixture(t *testing.T, cfg config.PipelineConfig) *pipelineFixture {
	ctrl := gomock.NewController(t)

	log := loggerMock.NewMockInterface(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().DebugContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().InfoContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	qualityCfg := config.QualityConfig{
		MaxTickAge:       60 * time.Second,
		PriceWindowSize:  100,
		MinWindowSamples: 10,
		MaxZScore:        3.0,
		MaxDeviation:     0.10,
		MaxVolumeFactor:  100,
		ScoreAlpha:       0.1,
	}

	dist := distributor.New(config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
	}, log)

	barUsecase := marketMock.NewMockBarUsecase(ctrl)
	cache := marketMock.NewMockBarCache(ctrl)

	p := New(cfg, config.IndicatorConfig{WindowSize: 200}, qualityCfg, log, dist, barUsecase, cache)
	return &pipelineFixture{
		pipeline:    p,
		distributor: dist,
		barUsecase:  barUsecase,
		cache:       cache,
	}
}

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		IngestQueueSize:  1000,
		PersistQueueSize: 100,
		Workers:          4,
		FlushInterval:    time.Hour, // flush driven explicitly where needed
	}
}

func liveTick(offset time.Duration, price, qty float64) *v1.Tick {
	return liveTickFor("BTCUSDT", offset, price, qty)
}

func liveTickFor(symbol string, offset time.Duration, price, qty float64) *v1.Tick {
	base := time.Now().UTC().Truncate(time.Minute)
	return &v1.Tick{
		Symbol:     symbol,
		Exchange:   "binance",
		Price:      decimal.NewFromFloat(price),
		Quantity:   decimal.NewFromFloat(qty),
		Timestamp:  base.Add(offset),
		Source:     "test",
		ReceivedAt: time.Now().UTC(),
	}
}

func TestPipeline_endToEnd(t *testing.T) {
	fixture := newFixture(t, defaultPipelineConfig())
	fixture.barUsecase.EXPECT().StoreBars(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fixture.cache.EXPECT().SetLatestBar(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fixture.cache.EXPECT().SetIndicators(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	completed := make(chan *v1.Bar, 16)
	snapshots := make(chan *v1.IndicatorSnapshot, 16)
	fixture.pipeline.OnBarCompleted(func(bar *v1.Bar) { completed <- bar })
	fixture.pipeline.OnIndicatorSnapshot(func(s *v1.IndicatorSnapshot) { snapshots <- s })

	ctx := context.Background()
	fixture.distributor.Start()
	fixture.pipeline.Start(ctx)
	defer func() {
		fixture.pipeline.Stop()
		fixture.distributor.Stop()
	}()

	sink := &recordingSink{id: "conn-1"}
	require.NoError(t, fixture.distributor.Subscribe(sink, "BTCUSDT", "1m"))

	fixture.pipeline.SubmitTick(ctx, liveTick(0, 100, 1))
	fixture.pipeline.SubmitTick(ctx, liveTick(30*time.Second, 102, 1))
	fixture.pipeline.SubmitTick(ctx, liveTick(61*time.Second, 99, 2))

	select {
	case bar := <-completed:
		assert.Equal(t, "1m", bar.Timeframe)
		assert.Equal(t, "100", bar.Open.String())
		assert.Equal(t, "102", bar.High.String())
		assert.Equal(t, "100", bar.Low.String())
		assert.Equal(t, "102", bar.Close.String())
		assert.Equal(t, "2", bar.Volume.String())
		assert.Equal(t, v1.BarStateCompleted, bar.State)
	case <-time.After(2 * time.Second):
		t.Fatal("no completed bar within deadline")
	}

	select {
	case snapshot := <-snapshots:
		assert.Equal(t, "BTCUSDT", snapshot.Symbol)
		// A single completed bar is far below every indicator minimum.
		assert.Nil(t, snapshot.Values[indicator.RSI14])
		assert.NotNil(t, snapshot.Values[indicator.VWAP])
	case <-time.After(2 * time.Second):
		t.Fatal("no indicator snapshot within deadline")
	}

	// The subscriber sees at least one update for the topic.
	assert.Eventually(t, func() bool {
		return len(sink.updates()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	stats := fixture.pipeline.Stats()
	assert.Equal(t, int64(3), stats.Ingested)
	assert.Equal(t, int64(0), stats.RejectedQuality)
	assert.Contains(t, stats.QualityScores, "BTCUSDT")
}

func TestPipeline_rejectsInvalidTick(t *testing.T) {
	fixture := newFixture(t, defaultPipelineConfig())

	var calls int
	fixture.pipeline.OnBarCompleted(func(*v1.Bar) { calls++ })

	ctx := context.Background()
	fixture.pipeline.Start(ctx)
	defer fixture.pipeline.Stop()

	fixture.pipeline.SubmitTick(ctx, liveTick(0, -5, 1))

	assert.Eventually(t, func() bool {
		return fixture.pipeline.Stats().RejectedQuality == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, fixture.pipeline.Stats().OpenBars)
}

func TestPipeline_flushCompletesIdleBars(t *testing.T) {
	cfg := defaultPipelineConfig()
	cfg.FlushInterval = 10 * time.Millisecond
	// A negative grace pushes the cutoff past the open bucket's end, standing
	// in for the bucket actually elapsing on the wall clock.
	cfg.LateTickGrace = -2 * time.Minute

	fixture := newFixture(t, cfg)
	fixture.barUsecase.EXPECT().StoreBars(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fixture.cache.EXPECT().SetLatestBar(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	fixture.cache.EXPECT().SetIndicators(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	completed := make(chan *v1.Bar, 16)
	fixture.pipeline.OnBarCompleted(func(bar *v1.Bar) { completed <- bar })

	ctx := context.Background()
	fixture.pipeline.Start(ctx)
	defer fixture.pipeline.Stop()

	fixture.pipeline.SubmitTick(ctx, liveTick(0, 100, 1))

	select {
	case bar := <-completed:
		assert.Equal(t, "100", bar.Close.String())
		assert.Equal(t, v1.BarStateCompleted, bar.State)
	case <-time.After(2 * time.Second):
		t.Fatal("idle bar was not flushed")
	}
}

func TestPipeline_seedLoadsHistory(t *testing.T) {
	fixture := newFixture(t, defaultPipelineConfig())

	history := make([]*v1.Bar, 0, 20)
	base := time.Now().UTC().Truncate(time.Minute).Add(-30 * time.Minute)
	for i := 0; i < 20; i++ {
		price := decimal.NewFromInt(100)
		history = append(history, &v1.Bar{
			Symbol:      "BTCUSDT",
			Exchange:    "binance",
			Timeframe:   "1m",
			BucketStart: base.Add(time.Duration(i) * time.Minute),
			Open:        price,
			High:        price,
			Low:         price,
			Close:       price,
			Volume:      decimal.NewFromInt(1),
			State:       v1.BarStateCompleted,
		})
	}

	fixture.barUsecase.EXPECT().
		RecentBars(gomock.Any(), "BTCUSDT", "binance", gomock.Any(), 200).
		Return(history, nil).
		Times(6)

	fixture.pipeline.Seed(context.Background(), []string{"BTCUSDT"}, "binance")

	s := fixture.pipeline.shardFor("BTCUSDT")
	assert.Equal(t, 20, s.engine.WindowLen("BTCUSDT", "1m"))
}

func TestPipeline_qualityGateIsPerShard(t *testing.T) {
	fixture := newFixture(t, defaultPipelineConfig())
	p := fixture.pipeline

	// Find a symbol that routes to a different worker than BTCUSDT.
	home := p.shardFor("BTCUSDT")
	other := ""
	for _, candidate := range []string{
		"ETHUSDT", "SOLUSDT", "XRPUSDT", "ADAUSDT", "DOGEUSDT",
		"BNBUSDT", "LTCUSDT", "DOTUSDT", "AVAXUSDT", "LINKUSDT",
	} {
		if p.shardFor(candidate) != home {
			other = candidate
			break
		}
	}
	require.NotEmpty(t, other)

	// Symbols on different workers must not share gate state or locks.
	assert.NotSame(t, home.gate, p.shardFor(other).gate)

	ctx := context.Background()
	p.Start(ctx)
	defer p.Stop()

	p.SubmitTick(ctx, liveTickFor("BTCUSDT", 0, 100, 1))
	p.SubmitTick(ctx, liveTickFor(other, 0, 3000, 1))

	// Stats merges the per-shard score maps back into one view.
	assert.Eventually(t, func() bool {
		scores := p.Stats().QualityScores
		_, homeScored := scores["BTCUSDT"]
		_, otherScored := scores[other]
		return homeScored && otherScored
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipeline_shardRoutingIsStable(t *testing.T) {
	fixture := newFixture(t, defaultPipelineConfig())

	first := fixture.pipeline.shardFor("BTCUSDT")
	for i := 0; i < 10; i++ {
		assert.Same(t, first, fixture.pipeline.shardFor("BTCUSDT"))
	}
}
