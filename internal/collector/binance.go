package collector

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/breaker"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/util"
)

// aggTradeEvent is the Binance aggTrade stream payload.
type aggTradeEvent struct {
	EventType    string `json:"e"`
	Symbol       string `json:"s"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTimeMs  int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// BinanceCollector streams aggregated trades over a websocket. Connection
// attempts run through a circuit breaker; while the circuit is open no ticks
// are emitted and the collector reports unhealthy. Read failures reconnect
// with jittered exponential backoff.
type BinanceCollector struct {
	config  config.BinanceConfig
	logger  logger.Interface
	breaker *breaker.Breaker
	handler market.TickHandler

	connected   atomic.Bool
	parseErrors atomic.Int64
	cancel      context.CancelFunc
	done        chan struct{}
}

var _ market.Collector = (*BinanceCollector)(nil)

// NewBinanceCollector creates a collector for the configured symbols.
func NewBinanceCollector(cfg config.BinanceConfig, breakerCfg breaker.Config, log logger.Interface, handler market.TickHandler, onTransition breaker.TransitionFunc) *BinanceCollector {
	return &BinanceCollector{
		config:  cfg,
		logger:  log,
		breaker: breaker.New("binance-ws", breakerCfg, log, onTransition),
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Name implements market.Collector.
func (c *BinanceCollector) Name() string {
	return "binance-ws"
}

// Healthy reports whether the websocket is currently connected.
func (c *BinanceCollector) Healthy() bool {
	return c.connected.Load()
}

// ParseErrors returns the number of messages dropped as unparseable.
func (c *BinanceCollector) ParseErrors() int64 {
	return c.parseErrors.Load()
}

// CircuitState returns the breaker state for the health surface.
func (c *BinanceCollector) CircuitState() breaker.State {
	return c.breaker.State()
}

// Start launches the connect/read loop. It returns immediately.
func (c *BinanceCollector) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.run(runCtx)
	return nil
}

// Stop terminates the loop and waits for it to exit.
func (c *BinanceCollector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	select {
	case <-c.done:
	case <-ctx.Done():
	}
	return nil
}

func (c *BinanceCollector) run(ctx context.Context) {
	defer close(c.done)

	ctx = util.WithSource(ctx, c.Name())
	delay := &backoff.Backoff{
		Min:    time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// One request id per connection session correlates its logs.
		connCtx := util.WithRequestID(ctx, "")

		conn, err := breaker.Do(c.breaker, connCtx, c.connect)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			wait := delay.Duration()
			if openErr, ok := err.(*breaker.OpenError); ok && openErr.RetryAfter > wait {
				wait = openErr.RetryAfter
			}
			c.logger.WarnContext(connCtx, "binance connect failed, backing off", logger.Field{
				Key:   "retry_in",
				Value: wait,
			})
			c.sleep(ctx, wait)
			continue
		}

		delay.Reset()
		c.connected.Store(true)
		c.readLoop(connCtx, conn)
		c.connected.Store(false)
		conn.Close()
	}
}

func (c *BinanceCollector) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}

	params := make([]string, 0, len(c.config.Symbols))
	for _, symbol := range c.config.Symbols {
		params = append(params, strings.ToLower(symbol)+"@aggTrade")
	}

	if err := conn.WriteJSON(subscribeRequest{
		Method: "SUBSCRIBE",
		Params: params,
		ID:     1,
	}); err != nil {
		conn.Close()
		return nil, err
	}

	c.logger.InfoContext(ctx, "binance stream connected", logger.Field{
		Key:   "symbols",
		Value: c.config.Symbols,
	})
	return conn, nil
}

func (c *BinanceCollector) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the read when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.WarnContext(ctx, "binance stream read failed", logger.Field{
					Key:   "error",
					Value: err.Error(),
				})
			}
			return
		}

		tick, ok := c.parse(payload)
		if !ok {
			continue
		}
		c.handler(ctx, tick)
	}
}

// parse returns ok=false for control frames, subscribe acks, and malformed
// events. Only malformed aggTrade events count as parse errors.
func (c *BinanceCollector) parse(payload []byte) (*v1.Tick, bool) {
	var event aggTradeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.parseErrors.Add(1)
		return nil, false
	}
	if event.EventType != "aggTrade" {
		return nil, false
	}

	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		c.parseErrors.Add(1)
		return nil, false
	}
	quantity, err := decimal.NewFromString(event.Quantity)
	if err != nil {
		c.parseErrors.Add(1)
		return nil, false
	}

	return &v1.Tick{
		Symbol:     event.Symbol,
		Exchange:   "binance",
		Price:      price,
		Quantity:   quantity,
		Timestamp:  time.UnixMilli(event.TradeTimeMs).UTC(),
		Source:     c.Name(),
		ReceivedAt: time.Now().UTC(),
	}, true
}

func (c *BinanceCollector) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
