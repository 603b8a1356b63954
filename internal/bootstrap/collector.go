package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/internal/collector"
	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/breaker"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// Collectors holds the enabled upstream feeds.
type Collectors struct {
	Feeds []market.Collector
}

// registerCollectors registers the enabled feeds, all submitting into the
// pipeline ingest queue.
func (b *Bootstrap) registerCollectors() {
	breakerCfg := breaker.Config{
		FailureThreshold: b.Config.Breaker.FailureThreshold,
		Timeout:          b.Config.Breaker.Timeout,
		SuccessThreshold: b.Config.Breaker.SuccessThreshold,
	}

	onTransition := func(name string, from, to breaker.State) {
		b.Logger.Warn("feed circuit breaker transition",
			logger.Field{Key: "breaker", Value: name},
			logger.Field{Key: "from", Value: string(from)},
			logger.Field{Key: "to", Value: string(to)},
		)
	}

	if b.Config.Binance.Enabled {
		b.Collectors.Feeds = append(b.Collectors.Feeds, collector.NewBinanceCollector(
			b.Config.Binance, breakerCfg, b.Logger, b.Processing.Pipeline.SubmitTick, onTransition,
		))
	}

	if b.Config.TradeKafka.Enabled {
		b.Collectors.Feeds = append(b.Collectors.Feeds, collector.NewKafkaCollector(
			b.Config.TradeKafka, breakerCfg, b.Logger, b.Processing.Pipeline.SubmitTick, onTransition,
		))
	}
}
