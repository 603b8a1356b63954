package bar

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
)

// Bar is the storage row for one OHLCV bucket. Only completed bars are
// persisted; the open/completed lifecycle exists in memory only.
type Bar struct {
	BucketStart time.Time
	Symbol      string
	Exchange    string
	Timeframe   string
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      decimal.Decimal
	TickCount   int64
	UpdatedAt   time.Time
}

func fromDomain(bar *v1.Bar) *Bar {
	return &Bar{
		BucketStart: bar.BucketStart,
		Symbol:      bar.Symbol,
		Exchange:    bar.Exchange,
		Timeframe:   bar.Timeframe,
		Open:        bar.Open,
		High:        bar.High,
		Low:         bar.Low,
		Close:       bar.Close,
		Volume:      bar.Volume,
		TickCount:   bar.TickCount,
		UpdatedAt:   bar.UpdatedAt,
	}
}

func (b *Bar) toDomain() *v1.Bar {
	return &v1.Bar{
		BucketStart: b.BucketStart,
		Symbol:      b.Symbol,
		Exchange:    b.Exchange,
		Timeframe:   b.Timeframe,
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close,
		Volume:      b.Volume,
		TickCount:   b.TickCount,
		State:       v1.BarStateCompleted,
		UpdatedAt:   b.UpdatedAt,
	}
}
