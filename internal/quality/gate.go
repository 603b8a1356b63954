package quality

import (
	"fmt"
	"math"
	"sync"
	"time"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// Gate validates ticks before they enter aggregation. It owns a rolling
// per-symbol price/volume history and a smoothed per-symbol quality score.
// Rejection is a normal filtering outcome, not a fault.
type Gate struct {
	config config.QualityConfig
	logger logger.Interface

	mu      sync.RWMutex
	symbols map[string]*symbolState

	now func() time.Time
}

// symbolState is the rolling baseline for one symbol. Prices and quantities
// share one bounded window; running sums keep the stats O(1) per tick.
type symbolState struct {
	prices     []float64
	quantities []float64
	head       int
	count      int

	priceSum   float64
	priceSumSq float64
	qtySum     float64

	score    float64
	hasScore bool
}

// NewGate creates a quality gate with the provided configuration.
func NewGate(cfg config.QualityConfig, log logger.Interface) *Gate {
	return &Gate{
		config:  cfg,
		logger:  log,
		symbols: make(map[string]*symbolState),
		now:     time.Now,
	}
}

// Validate runs all checks against the tick and returns the verdict. All
// checks run even after one fails so the verdict lists every failed check.
// Only passing ticks feed the rolling baseline.
func (g *Gate) Validate(tick *v1.Tick) *v1.QualityVerdict {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.symbols[tick.Symbol]
	if !ok {
		state = &symbolState{
			prices:     make([]float64, g.config.PriceWindowSize),
			quantities: make([]float64, g.config.PriceWindowSize),
		}
		g.symbols[tick.Symbol] = state
	}

	var failed []v1.CheckKind

	if g.now().Sub(tick.Timestamp) > g.config.MaxTickAge {
		failed = append(failed, v1.CheckFreshness)
	}

	price := tick.Price.InexactFloat64()
	qty := tick.Quantity.InexactFloat64()
	if tick.Symbol == "" || price <= 0 || qty < 0 || !isFinite(price) || !isFinite(qty) {
		failed = append(failed, v1.CheckValidity)
	}

	if reason := state.priceOutlier(price, g.config); reason != "" {
		failed = append(failed, v1.CheckPriceOutlier)
		g.logger.Debug("price outlier rejected", logger.Field{
			Key:   "symbol",
			Value: tick.Symbol,
		}, logger.Field{
			Key:   "reason",
			Value: reason,
		})
	}

	if state.volumeAnomaly(qty, g.config) {
		failed = append(failed, v1.CheckVolumeAnomaly)
	}

	passed := len(failed) == 0
	if passed {
		state.push(price, qty)
	}
	score := state.observe(passed, g.config.ScoreAlpha)

	return &v1.QualityVerdict{
		Passed:       passed,
		FailedChecks: failed,
		Score:        score,
	}
}

// Score returns the smoothed quality score for a symbol, or 1 if the symbol
// has not been observed yet.
func (g *Gate) Score(symbol string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state, ok := g.symbols[symbol]
	if !ok || !state.hasScore {
		return 1
	}
	return state.score
}

// Scores returns a copy of all per-symbol quality scores.
func (g *Gate) Scores() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	scores := make(map[string]float64, len(g.symbols))
	for symbol, state := range g.symbols {
		if state.hasScore {
			scores[symbol] = state.score
		}
	}
	return scores
}

func (s *symbolState) priceOutlier(price float64, cfg config.QualityConfig) string {
	if s.count < cfg.MinWindowSamples {
		return ""
	}

	mean := s.priceSum / float64(s.count)
	variance := s.priceSumSq/float64(s.count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)

	if stddev > 0 {
		z := math.Abs(price-mean) / stddev
		if z > cfg.MaxZScore {
			return fmt.Sprintf("z-score %.2f exceeds %.2f", z, cfg.MaxZScore)
		}
	}

	if mean > 0 {
		deviation := math.Abs(price-mean) / mean
		if deviation > cfg.MaxDeviation {
			return fmt.Sprintf("deviation %.2f exceeds %.2f", deviation, cfg.MaxDeviation)
		}
	}

	return ""
}

func (s *symbolState) volumeAnomaly(qty float64, cfg config.QualityConfig) bool {
	if s.count == 0 || s.qtySum <= 0 {
		return false
	}
	avg := s.qtySum / float64(s.count)
	return qty > cfg.MaxVolumeFactor*avg
}

func (s *symbolState) push(price, qty float64) {
	if s.count == len(s.prices) {
		evictedPrice := s.prices[s.head]
		evictedQty := s.quantities[s.head]
		s.priceSum -= evictedPrice
		s.priceSumSq -= evictedPrice * evictedPrice
		s.qtySum -= evictedQty
	} else {
		s.count++
	}

	s.prices[s.head] = price
	s.quantities[s.head] = qty
	s.head = (s.head + 1) % len(s.prices)

	s.priceSum += price
	s.priceSumSq += price * price
	s.qtySum += qty
}

func (s *symbolState) observe(passed bool, alpha float64) float64 {
	sample := 0.0
	if passed {
		sample = 1.0
	}

	if !s.hasScore {
		s.score = sample
		s.hasScore = true
		return s.score
	}

	s.score = alpha*sample + (1-alpha)*s.score
	return s.score
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
