package distributor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

// evictAfterFailures is how many consecutive delivery failures a sink may
// accumulate before it is dropped entirely.
const evictAfterFailures = 3

// Distributor fans bar and indicator updates out to subscribers. Publishing
// never blocks: updates land in a per-subscription pending slot where the
// latest always wins, and a background flusher delivers pending updates on a
// batching interval subject to each subscription's rate limit. A failing or
// slow sink only ever loses its own updates. Subscriptions with no delivery
// activity past the idle timeout are destroyed.
type Distributor struct {
	config config.DistributorConfig
	logger logger.Interface

	mu     sync.RWMutex
	topics map[string]map[string]*subscription
	sinks  map[string]market.SubscriberSink

	delivered atomic.Int64
	failures  atomic.Int64
	evicted   atomic.Int64
	expired   atomic.Int64

	stop chan struct{}
	done chan struct{}
}

var _ market.BarStream = (*Distributor)(nil)

// New creates a distributor. Call Start to run the flusher.
func New(cfg config.DistributorConfig, log logger.Interface) *Distributor {
	return &Distributor{
		config: cfg,
		logger: log,
		topics: make(map[string]map[string]*subscription),
		sinks:  make(map[string]market.SubscriberSink),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the batch flusher until Stop is called.
func (d *Distributor) Start() {
	go d.flushLoop()
}

// Stop terminates the flusher after one final flush and closes every sink.
func (d *Distributor) Stop() {
	close(d.stop)
	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			d.logger.Warn("failed to close subscriber sink", logger.Field{
				Key:   "sink_id",
				Value: id,
			})
		}
	}
	d.topics = make(map[string]map[string]*subscription)
	d.sinks = make(map[string]market.SubscriberSink)
}

// Subscribe attaches a sink to a (symbol, timeframe) topic.
func (d *Distributor) Subscribe(sink market.SubscriberSink, symbol, timeframe string) error {
	topic := v1.Topic(symbol, timeframe)

	d.mu.Lock()
	defer d.mu.Unlock()

	subs, ok := d.topics[topic]
	if !ok {
		subs = make(map[string]*subscription)
		d.topics[topic] = subs
	}
	subs[sink.ID()] = newSubscription(sink, d.config.ThrottlePerSec)
	d.sinks[sink.ID()] = sink

	d.logger.Info("subscriber attached", logger.Field{
		Key:   "sink_id",
		Value: sink.ID(),
	}, logger.Field{
		Key:   "topic",
		Value: topic,
	})
	return nil
}

// Unsubscribe detaches a sink from one topic. The sink itself stays open as
// long as it holds other subscriptions.
func (d *Distributor) Unsubscribe(sinkID, symbol, timeframe string) {
	topic := v1.Topic(symbol, timeframe)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.detach(sinkID, topic)
}

// Drop removes every subscription of a sink and closes it.
func (d *Distributor) Drop(sinkID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drop(sinkID)
}

// Publish offers an update to every subscription of its topic. Never blocks,
// never returns an error: delivery problems are handled per subscription by
// the flusher.
func (d *Distributor) Publish(update *v1.Update) {
	topic := update.Topic()

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, sub := range d.topics[topic] {
		sub.offer(update)
	}
}

// Delivered returns the number of updates handed to sinks so far.
func (d *Distributor) Delivered() int64 {
	return d.delivered.Load()
}

// Failures returns the number of failed deliveries so far.
func (d *Distributor) Failures() int64 {
	return d.failures.Load()
}

// Evicted returns the number of sinks dropped for repeated failures.
func (d *Distributor) Evicted() int64 {
	return d.evicted.Load()
}

// Expired returns the number of subscriptions destroyed by the idle timeout.
func (d *Distributor) Expired() int64 {
	return d.expired.Load()
}

// Subscriptions returns the number of active (topic, sink) pairs.
func (d *Distributor) Subscriptions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := 0
	for _, subs := range d.topics {
		count += len(subs)
	}
	return count
}

func (d *Distributor) flushLoop() {
	defer close(d.done)

	ticker := time.NewTicker(d.config.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			d.flush()
			return
		case <-ticker.C:
			d.flush()
		}
	}
}

func (d *Distributor) flush() {
	type delivery struct {
		sinkID string
		sub    *subscription
		update *v1.Update
	}

	d.mu.RLock()
	var deliveries []delivery
	for _, subs := range d.topics {
		for sinkID, sub := range subs {
			if update := sub.take(); update != nil {
				deliveries = append(deliveries, delivery{sinkID: sinkID, sub: sub, update: update})
			}
		}
	}
	d.mu.RUnlock()

	var evict []string
	for _, del := range deliveries {
		if err := del.sub.sink.Send(del.update); err != nil {
			d.failures.Add(1)
			failures := del.sub.recordFailure()
			d.logger.Warn("delivery failed", logger.Field{
				Key:   "sink_id",
				Value: del.sinkID,
			}, logger.Field{
				Key:   "consecutive_failures",
				Value: failures,
			})
			if failures >= evictAfterFailures {
				evict = append(evict, del.sinkID)
			}
			continue
		}
		del.sub.recordSuccess()
		d.delivered.Add(1)
	}

	if len(evict) > 0 {
		d.mu.Lock()
		for _, sinkID := range evict {
			d.evicted.Add(1)
			d.drop(sinkID)
		}
		d.mu.Unlock()
	}

	if d.config.IdleTimeout > 0 {
		d.reapIdle(time.Now(), d.config.IdleTimeout)
	}
}

// reapIdle destroys subscriptions with no delivery activity for longer than
// timeout. The sink itself stays open; a quiet client can resubscribe.
func (d *Distributor) reapIdle(now time.Time, timeout time.Duration) {
	type stale struct {
		sinkID string
		topic  string
	}

	d.mu.RLock()
	var idle []stale
	for topic, subs := range d.topics {
		for sinkID, sub := range subs {
			if sub.expired(now, timeout) {
				idle = append(idle, stale{sinkID: sinkID, topic: topic})
			}
		}
	}
	d.mu.RUnlock()

	if len(idle) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range idle {
		d.detach(s.sinkID, s.topic)
		d.expired.Add(1)
		d.logger.Info("idle subscription expired", logger.Field{
			Key:   "sink_id",
			Value: s.sinkID,
		}, logger.Field{
			Key:   "topic",
			Value: s.topic,
		})
	}
}

// detach removes one (sink, topic) pair. Caller holds the write lock.
func (d *Distributor) detach(sinkID, topic string) {
	subs, ok := d.topics[topic]
	if !ok {
		return
	}
	delete(subs, sinkID)
	if len(subs) == 0 {
		delete(d.topics, topic)
	}
}

// drop removes a sink from every topic and closes it. Caller holds the
// write lock.
func (d *Distributor) drop(sinkID string) {
	for topic := range d.topics {
		d.detach(sinkID, topic)
	}

	sink, ok := d.sinks[sinkID]
	if !ok {
		return
	}
	delete(d.sinks, sinkID)

	if err := sink.Close(); err != nil {
		d.logger.Warn("failed to close subscriber sink", logger.Field{
			Key:   "sink_id",
			Value: sinkID,
		})
	}
	d.logger.Info("subscriber dropped", logger.Field{
		Key:   "sink_id",
		Value: sinkID,
	})
}
