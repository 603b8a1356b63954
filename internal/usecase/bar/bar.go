package bar

import (
	"context"
	"time"

	"github.com/jpillora/backoff"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/errors"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
)

const storeMaxAttempts = 4

// Usecase wraps the bar repository with retry behavior. Upserts are
// idempotent on (bucket_start, symbol, exchange, timeframe), so retrying a
// partially applied batch is safe.
type Usecase struct {
	barRepository market.BarRepository
	logger        logger.Interface
}

var _ market.BarUsecase = (*Usecase)(nil)

// NewUsecase creates a new bar usecase.
func NewUsecase(barRepository market.BarRepository, logger logger.Interface) *Usecase {
	return &Usecase{barRepository: barRepository, logger: logger}
}

// StoreBar upserts one bar, retrying transient failures with exponential
// backoff.
func (u *Usecase) StoreBar(ctx context.Context, bar *v1.Bar) error {
	return u.withRetry(ctx, func(ctx context.Context) error {
		return u.barRepository.Upsert(ctx, bar)
	})
}

// StoreBars upserts a batch of bars, retrying transient failures with
// exponential backoff.
func (u *Usecase) StoreBars(ctx context.Context, bars []*v1.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	return u.withRetry(ctx, func(ctx context.Context) error {
		return u.barRepository.UpsertBatch(ctx, bars)
	})
}

// RecentBars returns the most recent bars for a series, oldest first, for
// seeding indicator windows.
func (u *Usecase) RecentBars(ctx context.Context, symbol, exchange, timeframe string, limit int) ([]*v1.Bar, error) {
	bars, err := u.barRepository.GetRecent(ctx, symbol, exchange, timeframe, limit)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return bars, nil
}

func (u *Usecase) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 1; attempt <= storeMaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == storeMaxAttempts || ctx.Err() != nil {
			break
		}

		wait := delay.Duration()
		u.logger.WarnContext(ctx, "bar write failed, retrying", logger.Field{
			Key:   "attempt",
			Value: attempt,
		}, logger.Field{
			Key:   "retry_in",
			Value: wait,
		})

		select {
		case <-ctx.Done():
			return errors.TracerFromError(ctx.Err())
		case <-time.After(wait):
		}
	}

	return errors.NewErrorDetails(
		"bar write failed after retries: "+err.Error(),
		string(errors.PersistenceFailureError),
		"store",
	)
}
