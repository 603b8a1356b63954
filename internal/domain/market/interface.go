package market

import (
	"context"
	"time"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/breaker"
)

// BarRepository persists completed and in-progress bars.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=market_mock
type BarRepository interface {
	Upsert(ctx context.Context, bar *v1.Bar) error
	UpsertBatch(ctx context.Context, bars []*v1.Bar) error
	GetRecent(ctx context.Context, symbol, exchange, timeframe string, limit int) ([]*v1.Bar, error)
}

// BarUsecase wraps the repository with retry and caching behavior.
type BarUsecase interface {
	StoreBar(ctx context.Context, bar *v1.Bar) error
	StoreBars(ctx context.Context, bars []*v1.Bar) error
	RecentBars(ctx context.Context, symbol, exchange, timeframe string, limit int) ([]*v1.Bar, error)
}

// BarCache keeps the latest bar and indicator snapshot per series for cheap
// reads by other services.
type BarCache interface {
	SetLatestBar(ctx context.Context, bar *v1.Bar) error
	SetIndicators(ctx context.Context, snapshot *v1.IndicatorSnapshot) error
}

// TickHandler receives normalized ticks from a collector.
type TickHandler func(ctx context.Context, tick *v1.Tick)

// Collector is a managed upstream feed that produces normalized ticks.
// CircuitState exposes the feed's breaker on the health surface.
type Collector interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Healthy() bool
	CircuitState() breaker.State
}

// SubscriberSink receives updates for one subscriber. Send must not block;
// implementations report delivery failure through the error return.
type SubscriberSink interface {
	ID() string
	Send(update *v1.Update) error
	Close() error
}

// BarStream is implemented by the pipeline for subscriber-facing transports.
type BarStream interface {
	Subscribe(sink SubscriberSink, symbol, timeframe string) error
	Unsubscribe(sinkID, symbol, timeframe string)
	Drop(sinkID string)
}

// Clock abstracts time for deterministic tests.
type Clock func() time.Time
