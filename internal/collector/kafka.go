package collector

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/breaker"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/util"
)

// rawTradeEvent is the wire format on the trade topic. Price and quantity
// arrive as strings to survive producers with differing numeric precision.
type rawTradeEvent struct {
	Exchange    string `json:"exchange"`
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	TimestampMs int64  `json:"timestamp_ms"`
	IsBuyer     bool   `json:"is_buyer_maker"`
}

// KafkaCollector consumes normalized trade events from a Kafka topic and
// feeds them to the pipeline. Reads run through a circuit breaker so a broker
// outage backs the consumer off instead of hot-looping.
type KafkaCollector struct {
	config  config.TradeKafkaConfig
	logger  logger.Interface
	reader  *kafka.Reader
	breaker *breaker.Breaker
	handler market.TickHandler

	parseErrors atomic.Int64
	cancel      context.CancelFunc
	done        chan struct{}
}

var _ market.Collector = (*KafkaCollector)(nil)

// NewKafkaCollector creates a collector reading from the configured topic.
func NewKafkaCollector(cfg config.TradeKafkaConfig, breakerCfg breaker.Config, log logger.Interface, handler market.TickHandler, onTransition breaker.TransitionFunc) *KafkaCollector {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &KafkaCollector{
		config:  cfg,
		logger:  log,
		reader:  reader,
		breaker: breaker.New("kafka-trades", breakerCfg, log, onTransition),
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Name implements market.Collector.
func (c *KafkaCollector) Name() string {
	return "kafka-trades"
}

// Healthy reports whether the breaker currently admits reads.
func (c *KafkaCollector) Healthy() bool {
	return c.breaker.State() == breaker.StateClosed
}

// ParseErrors returns the number of messages dropped as unparseable.
func (c *KafkaCollector) ParseErrors() int64 {
	return c.parseErrors.Load()
}

// CircuitState returns the breaker state for the health surface.
func (c *KafkaCollector) CircuitState() breaker.State {
	return c.breaker.State()
}

// Start launches the read loop. It returns immediately; the loop runs until
// Stop or context cancellation.
func (c *KafkaCollector) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.run(runCtx)
	return nil
}

// Stop terminates the read loop and closes the reader.
func (c *KafkaCollector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	select {
	case <-c.done:
	case <-ctx.Done():
	}
	return c.reader.Close()
}

func (c *KafkaCollector) run(ctx context.Context) {
	defer close(c.done)

	ctx = util.WithSource(ctx, c.Name())
	c.logger.InfoContext(ctx, "starting kafka collector", logger.Field{
		Key:   "topic",
		Value: c.config.Topic,
	})

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "kafka collector stopped")
			return
		default:
		}

		msg, err := breaker.Do(c.breaker, ctx, func(ctx context.Context) (kafka.Message, error) {
			return c.reader.ReadMessage(ctx)
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			if openErr, ok := err.(*breaker.OpenError); ok {
				c.sleep(ctx, openErr.RetryAfter)
				continue
			}
			c.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "read_message",
			})
			continue
		}

		// Every message gets its own request id so all logs it produces
		// downstream correlate.
		msgCtx := util.WithRequestID(ctx, "")

		tick, err := c.parse(msg.Value)
		if err != nil {
			c.parseErrors.Add(1)
			c.logger.WarnContext(msgCtx, "dropping unparseable trade event", logger.Field{
				Key:   "error",
				Value: err.Error(),
			})
			continue
		}

		c.handler(msgCtx, tick)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(msgCtx, err, logger.Field{
				Key:   "action",
				Value: "commit_message",
			})
		}
	}
}

func (c *KafkaCollector) parse(value []byte) (*v1.Tick, error) {
	var event rawTradeEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		return nil, err
	}
	quantity, err := decimal.NewFromString(event.Quantity)
	if err != nil {
		return nil, err
	}

	return &v1.Tick{
		Symbol:     event.Symbol,
		Exchange:   event.Exchange,
		Price:      price,
		Quantity:   quantity,
		Timestamp:  time.UnixMilli(event.TimestampMs).UTC(),
		Source:     c.Name(),
		ReceivedAt: time.Now().UTC(),
	}, nil
}

func (c *KafkaCollector) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
