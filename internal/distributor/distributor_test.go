package distributor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	loggerMock "github.com/mytechsonamy/crypto-stock-platform/pkg/logger/mock"
)

// testSink records deliveries and can be told to fail every Send.
type testSink struct {
	id   string
	fail bool

	mu       sync.Mutex
	received []*v1.Update
	closed   bool
}

func (s *testSink) ID() string { return s.id }

func (s *testSink) Send(update *v1.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("buffer full")
	}
	s.received = append(s.received, update)
	return nil
}

func (s *testSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *testSink) updates() []*v1.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*v1.Update(nil), s.received...)
}

func (s *testSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestDistributor(t *testing.T, cfg config.DistributorConfig) *Distributor {
	ctrl := gomock.NewController(t)
	log := loggerMock.NewMockInterface(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return New(cfg, log)
}

func updateFor(symbol, timeframe string, seq int64) *v1.Update {
	price := decimal.NewFromInt(seq)
	return &v1.Update{
		Kind: v1.UpdateKindBar,
		Bar: &v1.Bar{
			Symbol:      symbol,
			Exchange:    "binance",
			Timeframe:   timeframe,
			BucketStart: time.UnixMilli(0).UTC(),
			Open:        price,
			High:        price,
			Low:         price,
			Close:       price,
			State:       v1.BarStateOpen,
		},
		EmittedAt: time.Now().UTC(),
	}
}

func TestDistributor_throttleCoalescesBurst(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  10 * time.Millisecond,
		ThrottlePerSec: 20,
	})
	d.Start()

	sink := &testSink{id: "conn-1"}
	require.NoError(t, d.Subscribe(sink, "BTCUSDT", "1m"))

	// A burst well inside one throttle window must collapse into a single
	// delivery carrying the last update's data.
	for i := int64(0); i < 50; i++ {
		d.Publish(updateFor("BTCUSDT", "1m", i))
	}

	time.Sleep(300 * time.Millisecond)
	d.Stop()

	received := sink.updates()
	require.Len(t, received, 1)
	assert.Equal(t, "49", received[0].Bar.Close.String())
	assert.Equal(t, int64(1), d.Delivered())
}

func TestDistributor_slowConsumerEvicted(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
	})
	d.Start()

	bad := &testSink{id: "conn-bad", fail: true}
	good := &testSink{id: "conn-good"}
	require.NoError(t, d.Subscribe(bad, "BTCUSDT", "1m"))
	require.NoError(t, d.Subscribe(good, "BTCUSDT", "1m"))

	for i := int64(0); i < 8; i++ {
		d.Publish(updateFor("BTCUSDT", "1m", i))
		time.Sleep(15 * time.Millisecond)
	}
	d.Stop()

	// The failing sink is dropped after repeated failures; the healthy one
	// keeps receiving throughout.
	assert.Equal(t, int64(1), d.Evicted())
	assert.True(t, bad.isClosed())
	assert.NotEmpty(t, good.updates())
	assert.GreaterOrEqual(t, d.Failures(), int64(evictAfterFailures))
}

func TestDistributor_unsubscribeStopsDelivery(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
	})
	d.Start()

	sink := &testSink{id: "conn-1"}
	require.NoError(t, d.Subscribe(sink, "BTCUSDT", "1m"))
	assert.Equal(t, 1, d.Subscriptions())

	d.Unsubscribe("conn-1", "BTCUSDT", "1m")
	assert.Equal(t, 0, d.Subscriptions())

	d.Publish(updateFor("BTCUSDT", "1m", 1))
	time.Sleep(30 * time.Millisecond)
	d.Stop()

	assert.Empty(t, sink.updates())
	// Unsubscribe from one topic must not close the sink.
	assert.False(t, sink.isClosed())
}

func TestDistributor_topicsAreIndependent(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
	})
	d.Start()

	btc := &testSink{id: "conn-btc"}
	eth := &testSink{id: "conn-eth"}
	require.NoError(t, d.Subscribe(btc, "BTCUSDT", "1m"))
	require.NoError(t, d.Subscribe(eth, "ETHUSDT", "1m"))

	// No subscribers for the 5m topic; publishing there is a no-op.
	d.Publish(updateFor("BTCUSDT", "5m", 7))
	time.Sleep(20 * time.Millisecond)

	d.Publish(updateFor("ETHUSDT", "1m", 42))
	time.Sleep(50 * time.Millisecond)
	d.Stop()

	assert.Empty(t, btc.updates())

	received := eth.updates()
	require.Len(t, received, 1)
	assert.Equal(t, "42", received[0].Bar.Close.String())
}

func TestDistributor_idleSubscriptionExpires(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
		IdleTimeout:    50 * time.Millisecond,
	})
	d.Start()

	quiet := &testSink{id: "conn-quiet"}
	active := &testSink{id: "conn-active"}
	require.NoError(t, d.Subscribe(quiet, "BTCUSDT", "1m"))
	require.NoError(t, d.Subscribe(active, "ETHUSDT", "1m"))

	// Keep the active topic delivering well inside the idle window while the
	// quiet one sees no traffic at all.
	for i := int64(0); i < 40; i++ {
		d.Publish(updateFor("ETHUSDT", "1m", i))
		time.Sleep(5 * time.Millisecond)
	}
	d.Stop()

	assert.Equal(t, int64(1), d.Expired())
	assert.Equal(t, 1, d.Subscriptions())
	assert.NotEmpty(t, active.updates())
	// Expiry removes the subscription only; the connection stays usable.
	assert.False(t, quiet.isClosed())
}

func TestDistributor_dropClosesSink(t *testing.T) {
	d := newTestDistributor(t, config.DistributorConfig{
		BatchInterval:  5 * time.Millisecond,
		ThrottlePerSec: 1000,
	})
	d.Start()

	sink := &testSink{id: "conn-1"}
	require.NoError(t, d.Subscribe(sink, "BTCUSDT", "1m"))
	require.NoError(t, d.Subscribe(sink, "BTCUSDT", "5m"))
	assert.Equal(t, 2, d.Subscriptions())

	d.Drop("conn-1")
	assert.Equal(t, 0, d.Subscriptions())
	assert.True(t, sink.isClosed())

	d.Stop()
}
