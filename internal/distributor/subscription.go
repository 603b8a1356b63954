package distributor

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
)

// subscription binds one sink to one topic. It holds a single pending slot
// where newer updates overwrite older ones, and a per-subscription rate
// limiter so no connection receives more than the configured rate for a
// topic regardless of publish frequency.
type subscription struct {
	sink    market.SubscriberSink
	limiter *rate.Limiter

	mu           sync.Mutex
	pending      *v1.Update
	failures     int
	lastDelivery time.Time
}

func newSubscription(sink market.SubscriberSink, perSec float64) *subscription {
	limiter := rate.NewLimiter(rate.Limit(perSec), 1)
	// Consume the initial token so a burst right after subscribing coalesces
	// into one delivery at the throttle boundary instead of two.
	limiter.Allow()

	return &subscription{
		sink:    sink,
		limiter: limiter,
		// A fresh subscription starts its idle clock at attach time.
		lastDelivery: time.Now(),
	}
}

// offer replaces the pending update. Latest always wins; intermediate
// updates are meant to be lost.
func (s *subscription) offer(update *v1.Update) {
	s.mu.Lock()
	s.pending = update
	s.mu.Unlock()
}

// take returns the pending update if the rate limiter permits a delivery
// now, clearing the slot. Returns nil when there is nothing to send or the
// throttle window has not elapsed.
func (s *subscription) take() *v1.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil
	}
	if !s.limiter.Allow() {
		return nil
	}

	update := s.pending
	s.pending = nil
	return update
}

func (s *subscription) recordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return s.failures
}

func (s *subscription) recordSuccess() {
	s.mu.Lock()
	s.failures = 0
	s.lastDelivery = time.Now()
	s.mu.Unlock()
}

// expired reports whether the subscription has gone without a successful
// delivery for longer than timeout.
func (s *subscription) expired(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastDelivery) > timeout
}
