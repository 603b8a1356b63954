package pipeline

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mytechsonamy/crypto-stock-platform/internal/aggregator"
	"github.com/mytechsonamy/crypto-stock-platform/internal/distributor"
	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/internal/indicator"
	"github.com/mytechsonamy/crypto-stock-platform/internal/quality"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/interval"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// persistBatchMax bounds how many completed bars one repository write may carry.
const persistBatchMax = 100

// BarCallback observes every completed bar.
type BarCallback func(bar *v1.Bar)

// SnapshotCallback observes every indicator snapshot.
type SnapshotCallback func(snapshot *v1.IndicatorSnapshot)

// shard owns the processing state for a subset of symbols. All ticks for a
// symbol land on the same shard, so gate, builder, and engine never contend
// across symbols owned by different workers.
type shard struct {
	ticks   chan *v1.Tick
	flush   chan time.Time
	gate    *quality.Gate
	builder *aggregator.Builder
	engine  *indicator.Engine
}

// Pipeline connects the stages: quality gate, bar builder, indicator engine,
// persistence, and distribution. Symbols are sharded by hash onto worker
// goroutines; stages communicate over bounded channels so a slow stage
// applies backpressure instead of queueing without bound.
type Pipeline struct {
	config      config.PipelineConfig
	windowSize  int
	logger      logger.Interface
	distributor *distributor.Distributor
	barUsecase  market.BarUsecase
	cache       market.BarCache

	shards  []*shard
	persist chan *v1.Bar

	// Callbacks are registered during wiring, before Start.
	barCallbacks      []BarCallback
	snapshotCallbacks []SnapshotCallback

	ingested         atomic.Int64
	rejected         atomic.Int64
	droppedQueueFull atomic.Int64
	persisted        atomic.Int64
	persistFailures  atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a pipeline. Cache may be nil; the pipeline then skips cache
// writes and nothing else changes.
func New(
	cfg config.PipelineConfig,
	indicatorCfg config.IndicatorConfig,
	qualityCfg config.QualityConfig,
	log logger.Interface,
	dist *distributor.Distributor,
	barUsecase market.BarUsecase,
	cache market.BarCache,
) *Pipeline {
	p := &Pipeline{
		config:      cfg,
		windowSize:  indicatorCfg.WindowSize,
		logger:      log,
		distributor: dist,
		barUsecase:  barUsecase,
		cache:       cache,
		persist:     make(chan *v1.Bar, cfg.PersistQueueSize),
	}

	shardQueue := cfg.IngestQueueSize / cfg.Workers
	if shardQueue < 1 {
		shardQueue = 1
	}
	// Each shard gets its own gate: symbols on different workers never share
	// a lock anywhere on the tick path.
	for i := 0; i < cfg.Workers; i++ {
		p.shards = append(p.shards, &shard{
			ticks:   make(chan *v1.Tick, shardQueue),
			flush:   make(chan time.Time, 1),
			gate:    quality.NewGate(qualityCfg, log),
			builder: aggregator.NewBuilder(log),
			engine:  indicator.NewEngine(indicatorCfg.WindowSize),
		})
	}
	return p
}

// OnBarCompleted registers a completed-bar tap. Must be called before Start.
func (p *Pipeline) OnBarCompleted(cb BarCallback) {
	p.barCallbacks = append(p.barCallbacks, cb)
}

// OnIndicatorSnapshot registers a snapshot tap. Must be called before Start.
func (p *Pipeline) OnIndicatorSnapshot(cb SnapshotCallback) {
	p.snapshotCallbacks = append(p.snapshotCallbacks, cb)
}

// Seed preloads indicator windows from persisted history. Must be called
// before Start; it touches shard-owned state directly.
func (p *Pipeline) Seed(ctx context.Context, symbols []string, exchange string) {
	for _, symbol := range symbols {
		s := p.shardFor(symbol)
		for _, timeframe := range interval.AllTimeframes {
			bars, err := p.barUsecase.RecentBars(ctx, symbol, exchange, timeframe.Name, p.windowSize)
			if err != nil {
				p.logger.WarnContext(ctx, "failed to seed indicator window", logger.Field{
					Key:   "symbol",
					Value: symbol,
				}, logger.Field{
					Key:   "timeframe",
					Value: timeframe.Name,
				})
				continue
			}
			s.engine.Seed(symbol, timeframe.Name, bars)
		}
	}
}

// Start launches the shard workers, the persister, and the flush timer.
func (p *Pipeline) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for _, s := range p.shards {
		p.wg.Add(1)
		go p.runShard(runCtx, s)
	}

	p.wg.Add(1)
	go p.runPersister(runCtx)

	p.wg.Add(1)
	go p.runFlusher(runCtx)

	p.logger.InfoContext(ctx, "pipeline started", logger.Field{
		Key:   "workers",
		Value: p.config.Workers,
	})
}

// Stop terminates all workers and waits for them to drain.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// SubmitTick is the collector entry point. It never blocks: when the owning
// shard's queue is full the tick is dropped and counted.
func (p *Pipeline) SubmitTick(ctx context.Context, tick *v1.Tick) {
	s := p.shardFor(tick.Symbol)
	select {
	case s.ticks <- tick:
		p.ingested.Add(1)
	default:
		p.droppedQueueFull.Add(1)
	}
}

func (p *Pipeline) shardFor(symbol string) *shard {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return p.shards[int(h.Sum32())%len(p.shards)]
}

func (p *Pipeline) runShard(ctx context.Context, s *shard) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-s.ticks:
			p.processTick(ctx, s, tick)
		case cutoff := <-s.flush:
			p.handleResult(ctx, s, s.builder.FlushOlderThan(cutoff))
		}
	}
}

func (p *Pipeline) processTick(ctx context.Context, s *shard, tick *v1.Tick) {
	verdict := s.gate.Validate(tick)
	if !verdict.Passed {
		p.rejected.Add(1)
		p.logger.DebugContext(ctx, "tick rejected by quality gate", logger.Field{
			Key:   "symbol",
			Value: tick.Symbol,
		}, logger.Field{
			Key:   "failed_checks",
			Value: verdict.FailedChecks,
		})
		return
	}

	p.handleResult(ctx, s, s.builder.Ingest(tick))
}

func (p *Pipeline) handleResult(ctx context.Context, s *shard, result *aggregator.Result) {
	now := time.Now().UTC()

	for _, bar := range result.Completed {
		p.enqueuePersist(ctx, bar)

		snapshot := s.engine.OnBarCompleted(bar)
		p.distributor.Publish(&v1.Update{
			Kind:       v1.UpdateKindBarClosed,
			Bar:        bar,
			Indicators: snapshot,
			EmittedAt:  now,
		})

		if p.cache != nil {
			if err := p.cache.SetLatestBar(ctx, bar); err != nil {
				p.logger.WarnContext(ctx, "failed to cache completed bar", logger.Field{
					Key:   "symbol",
					Value: bar.Symbol,
				})
			}
			if err := p.cache.SetIndicators(ctx, snapshot); err != nil {
				p.logger.WarnContext(ctx, "failed to cache indicators", logger.Field{
					Key:   "symbol",
					Value: bar.Symbol,
				})
			}
		}

		for _, cb := range p.barCallbacks {
			cb(bar)
		}
		for _, cb := range p.snapshotCallbacks {
			cb(snapshot)
		}
	}

	for _, bar := range result.Updated {
		p.distributor.Publish(&v1.Update{
			Kind:      v1.UpdateKindBar,
			Bar:       bar,
			EmittedAt: now,
		})
	}
}

// enqueuePersist blocks when the persist queue is full. This is the one
// intended backpressure point between aggregation and storage.
func (p *Pipeline) enqueuePersist(ctx context.Context, bar *v1.Bar) {
	select {
	case p.persist <- bar:
	case <-ctx.Done():
	}
}

func (p *Pipeline) runPersister(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.drainPersist()
			return
		case bar := <-p.persist:
			bars := []*v1.Bar{bar}
		batch:
			for len(bars) < persistBatchMax {
				select {
				case next := <-p.persist:
					bars = append(bars, next)
				default:
					break batch
				}
			}
			p.writeBars(ctx, bars)
		}
	}
}

// drainPersist flushes whatever is still queued during shutdown, with a
// fresh context since the run context is already cancelled.
func (p *Pipeline) drainPersist() {
	var bars []*v1.Bar
	for {
		select {
		case bar := <-p.persist:
			bars = append(bars, bar)
		default:
			if len(bars) > 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				p.writeBars(ctx, bars)
				cancel()
			}
			return
		}
	}
}

func (p *Pipeline) writeBars(ctx context.Context, bars []*v1.Bar) {
	if err := p.barUsecase.StoreBars(ctx, bars); err != nil {
		p.persistFailures.Add(int64(len(bars)))
		p.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "persist_bars",
		}, logger.Field{
			Key:   "count",
			Value: len(bars),
		})
		return
	}
	p.persisted.Add(int64(len(bars)))
}

// runFlusher periodically expires open bars whose bucket has fully elapsed,
// so series that stop ticking still complete.
func (p *Pipeline) runFlusher(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-p.config.LateTickGrace)
			for _, s := range p.shards {
				select {
				case s.flush <- cutoff:
				default:
					// Shard still working on the previous flush.
				}
			}
		}
	}
}
