package bar

import (
	"context"
	"fmt"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/postgres"
)

const upsertQuery = `INSERT INTO bars (bucket_start, symbol, exchange, timeframe, open, high, low, close, volume, tick_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (bucket_start, symbol, exchange, timeframe) DO UPDATE SET
	open = EXCLUDED.open,
	high = EXCLUDED.high,
	low = EXCLUDED.low,
	close = EXCLUDED.close,
	volume = EXCLUDED.volume,
	tick_count = EXCLUDED.tick_count,
	updated_at = EXCLUDED.updated_at`

// Repository persists bars in Postgres. The upsert key makes at-least-once
// delivery from the pipeline safe: replaying a completed bar overwrites the
// row with identical values.
type Repository struct {
	client postgres.PostgresClient
}

var _ market.BarRepository = (*Repository)(nil)

// NewRepository creates a new bar repository.
func NewRepository(client postgres.PostgresClient) *Repository {
	return &Repository{
		client: client,
	}
}

// Upsert stores one bar.
func (r *Repository) Upsert(ctx context.Context, bar *v1.Bar) error {
	row := fromDomain(bar)
	err := r.client.Exec(ctx, upsertQuery,
		row.BucketStart, row.Symbol, row.Exchange, row.Timeframe,
		row.Open, row.High, row.Low, row.Close, row.Volume,
		row.TickCount, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bar: %w", err)
	}
	return nil
}

// UpsertBatch stores a batch of bars in one transaction so a replayed batch
// lands atomically.
func (r *Repository) UpsertBatch(ctx context.Context, bars []*v1.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	txCtx, err := postgres.Begin(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to begin bar batch: %w", err)
	}

	for _, b := range bars {
		if err := r.Upsert(txCtx, b); err != nil {
			_ = postgres.Rollback(txCtx)
			return err
		}
	}

	if err := postgres.Commit(txCtx); err != nil {
		return fmt.Errorf("failed to commit bar batch: %w", err)
	}
	return nil
}

// GetRecent returns the most recent bars for a series, oldest first.
func (r *Repository) GetRecent(ctx context.Context, symbol, exchange, timeframe string, limit int) ([]*v1.Bar, error) {
	query := `SELECT bucket_start, symbol, exchange, timeframe, open, high, low, close, volume, tick_count, updated_at
FROM bars
WHERE symbol = $1 AND exchange = $2 AND timeframe = $3
ORDER BY bucket_start DESC
LIMIT $4`

	rows, err := r.client.Query(ctx, query, symbol, exchange, timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bars: %w", err)
	}
	defer rows.Close()

	var bars []*v1.Bar
	for rows.Next() {
		var row Bar
		if err := rows.Scan(
			&row.BucketStart, &row.Symbol, &row.Exchange, &row.Timeframe,
			&row.Open, &row.High, &row.Low, &row.Close, &row.Volume,
			&row.TickCount, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bars: %w", err)
	}

	// Query returns newest first; callers seed windows oldest first.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}
