package indicator

import (
	"time"

	"github.com/markcheno/go-talib"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
)

// Indicator value names exposed in snapshots.
const (
	SMA20       = "sma_20"
	SMA50       = "sma_50"
	SMA100      = "sma_100"
	SMA200      = "sma_200"
	EMA12       = "ema_12"
	EMA26       = "ema_26"
	EMA50       = "ema_50"
	RSI14       = "rsi_14"
	StochK      = "stoch_k"
	StochD      = "stoch_d"
	MACD        = "macd"
	MACDSignal  = "macd_signal"
	MACDHist    = "macd_hist"
	BBUpper     = "bb_upper"
	BBMiddle    = "bb_middle"
	BBLower     = "bb_lower"
	VolumeSMA20 = "volume_sma_20"
	VWAP        = "vwap"
)

type windowKey struct {
	symbol    string
	timeframe string
}

// window is the bounded most-recent-N bar buffer for one series, kept as
// parallel float64 slices in talib input form.
type window struct {
	high   []float64
	low    []float64
	close  []float64
	volume []float64
	limit  int
}

func (w *window) push(bar *v1.Bar) {
	if len(w.close) == w.limit {
		w.high = w.high[1:]
		w.low = w.low[1:]
		w.close = w.close[1:]
		w.volume = w.volume[1:]
	}
	w.high = append(w.high, bar.High.InexactFloat64())
	w.low = append(w.low, bar.Low.InexactFloat64())
	w.close = append(w.close, bar.Close.InexactFloat64())
	w.volume = append(w.volume, bar.Volume.InexactFloat64())
}

// Engine computes rolling technical indicators from completed bars. Each
// (symbol, timeframe) series owns one bounded window; all indicators for a
// snapshot are computed against the same window state.
//
// Engine is not safe for concurrent use. The pipeline owns one engine per
// shard, matching the single-writer discipline of the bar builder.
type Engine struct {
	windowSize int
	windows    map[windowKey]*window
}

// NewEngine creates an indicator engine with the given window size.
func NewEngine(windowSize int) *Engine {
	return &Engine{
		windowSize: windowSize,
		windows:    make(map[windowKey]*window),
	}
}

// Seed preloads a series window from historical bars, oldest first. Used at
// startup so indicators do not need 200 live bars before producing values.
func (e *Engine) Seed(symbol, timeframe string, bars []*v1.Bar) {
	w := e.window(symbol, timeframe)
	for _, bar := range bars {
		w.push(bar)
	}
}

// OnBarCompleted pushes the bar into its series window and returns the
// indicator snapshot for the updated window. Indicators without enough
// history carry a nil value, never zero.
func (e *Engine) OnBarCompleted(bar *v1.Bar) *v1.IndicatorSnapshot {
	w := e.window(bar.Symbol, bar.Timeframe)
	w.push(bar)

	values := make(map[string]*float64, 18)
	n := len(w.close)

	// The talib functions index into the lookback region unconditionally, so
	// every call is gated on the window holding at least the full lookback.
	values[SMA20] = guarded(n >= 20, func() []float64 { return talib.Sma(w.close, 20) })
	values[SMA50] = guarded(n >= 50, func() []float64 { return talib.Sma(w.close, 50) })
	values[SMA100] = guarded(n >= 100, func() []float64 { return talib.Sma(w.close, 100) })
	values[SMA200] = guarded(n >= 200, func() []float64 { return talib.Sma(w.close, 200) })

	values[EMA12] = guarded(n >= 12, func() []float64 { return talib.Ema(w.close, 12) })
	values[EMA26] = guarded(n >= 26, func() []float64 { return talib.Ema(w.close, 26) })
	values[EMA50] = guarded(n >= 50, func() []float64 { return talib.Ema(w.close, 50) })

	// RSI lookback is one bar longer than its period.
	values[RSI14] = guarded(n >= 15, func() []float64 { return talib.Rsi(w.close, 14) })

	if n >= 18 {
		slowK, slowD := talib.Stoch(w.high, w.low, w.close, 14, 3, talib.SMA, 3, talib.SMA)
		values[StochK] = lastOf(slowK)
		values[StochD] = lastOf(slowD)
	} else {
		values[StochK] = nil
		values[StochD] = nil
	}

	// MACD lookback: slow period + signal period - 2.
	if n >= 34 {
		macd, signal, hist := talib.Macd(w.close, 12, 26, 9)
		values[MACD] = lastOf(macd)
		values[MACDSignal] = lastOf(signal)
		values[MACDHist] = lastOf(hist)
	} else {
		values[MACD] = nil
		values[MACDSignal] = nil
		values[MACDHist] = nil
	}

	if n >= 20 {
		upper, middle, lower := talib.BBands(w.close, 20, 2, 2, talib.SMA)
		values[BBUpper] = lastOf(upper)
		values[BBMiddle] = lastOf(middle)
		values[BBLower] = lastOf(lower)
	} else {
		values[BBUpper] = nil
		values[BBMiddle] = nil
		values[BBLower] = nil
	}

	values[VolumeSMA20] = guarded(n >= 20, func() []float64 { return talib.Sma(w.volume, 20) })
	values[VWAP] = vwap(w)

	return &v1.IndicatorSnapshot{
		Symbol:      bar.Symbol,
		Timeframe:   bar.Timeframe,
		BucketStart: bar.BucketStart,
		Values:      values,
		ComputedAt:  time.Now().UTC(),
	}
}

// WindowLen returns the number of bars currently buffered for a series.
func (e *Engine) WindowLen(symbol, timeframe string) int {
	w, ok := e.windows[windowKey{symbol: symbol, timeframe: timeframe}]
	if !ok {
		return 0
	}
	return len(w.close)
}

func (e *Engine) window(symbol, timeframe string) *window {
	key := windowKey{symbol: symbol, timeframe: timeframe}
	w, ok := e.windows[key]
	if !ok {
		w = &window{limit: e.windowSize}
		e.windows[key] = w
	}
	return w
}

func guarded(ok bool, compute func() []float64) *float64 {
	if !ok {
		return nil
	}
	return lastOf(compute())
}

func lastOf(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	value := series[len(series)-1]
	return &value
}

// vwap is sum(typical price * volume) / sum(volume) over the window, with
// typical price (high+low+close)/3. Nil when the window carries no volume.
func vwap(w *window) *float64 {
	var pv, volume float64
	for i := range w.close {
		typical := (w.high[i] + w.low[i] + w.close[i]) / 3
		pv += typical * w.volume[i]
		volume += w.volume[i]
	}
	if volume == 0 {
		return nil
	}
	value := pv / volume
	return &value
}
