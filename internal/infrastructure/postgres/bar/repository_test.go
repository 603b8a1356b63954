package bar

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	postgresMock "github.com/mytechsonamy/crypto-stock-platform/pkg/postgres/mock"
)

func domainBar(bucketMs int64) *v1.Bar {
	price := decimal.NewFromInt(100)
	return &v1.Bar{
		Symbol:      "BTCUSDT",
		Exchange:    "binance",
		Timeframe:   "1m",
		BucketStart: time.UnixMilli(bucketMs).UTC(),
		Open:        price,
		High:        price,
		Low:         price,
		Close:       price,
		Volume:      decimal.NewFromInt(1),
		TickCount:   1,
		State:       v1.BarStateCompleted,
		UpdatedAt:   time.UnixMilli(bucketMs + 59000).UTC(),
	}
}

func TestRepository_Upsert(t *testing.T) {
	testCases := []struct {
		name     string
		mockFn   func(client *postgresMock.MockPostgresClient)
		assertFn func(t *testing.T, err error)
	}{
		{
			name: "success",
			mockFn: func(client *postgresMock.MockPostgresClient) {
				client.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			assertFn: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "error",
			mockFn: func(client *postgresMock.MockPostgresClient) {
				client.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(stderrors.New("connection refused"))
			},
			assertFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := postgresMock.NewMockPostgresClient(ctrl)
			testCase.mockFn(client)

			err := NewRepository(client).Upsert(context.Background(), domainBar(0))
			testCase.assertFn(t, err)
		})
	}
}

func TestRepository_GetRecent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := postgresMock.NewMockPostgresClient(ctrl)
	rows := postgresMock.NewMockRowsInterface(ctrl)

	// Newest first out of the database.
	stored := []*Bar{
		fromDomain(domainBar(120000)),
		fromDomain(domainBar(60000)),
	}
	i := 0

	client.EXPECT().
		Query(gomock.Any(), gomock.Any(), "BTCUSDT", "binance", "1m", 200).
		Return(rows, nil)
	rows.EXPECT().Next().DoAndReturn(func() bool { return i < len(stored) }).Times(3)
	rows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
		row := stored[i]
		*(dest[0].(*time.Time)) = row.BucketStart
		*(dest[1].(*string)) = row.Symbol
		*(dest[2].(*string)) = row.Exchange
		*(dest[3].(*string)) = row.Timeframe
		*(dest[4].(*decimal.Decimal)) = row.Open
		*(dest[5].(*decimal.Decimal)) = row.High
		*(dest[6].(*decimal.Decimal)) = row.Low
		*(dest[7].(*decimal.Decimal)) = row.Close
		*(dest[8].(*decimal.Decimal)) = row.Volume
		*(dest[9].(*int64)) = row.TickCount
		*(dest[10].(*time.Time)) = row.UpdatedAt
		i++
		return nil
	}).Times(2)
	rows.EXPECT().Err().Return(nil)
	rows.EXPECT().Close()

	bars, err := NewRepository(client).GetRecent(context.Background(), "BTCUSDT", "binance", "1m", 200)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	// Oldest first for window seeding.
	assert.Equal(t, int64(60000), bars[0].BucketStart.UnixMilli())
	assert.Equal(t, int64(120000), bars[1].BucketStart.UnixMilli())
	assert.Equal(t, v1.BarStateCompleted, bars[0].State)
}

func TestRepository_GetRecent_queryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := postgresMock.NewMockPostgresClient(ctrl)
	client.EXPECT().
		Query(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, stderrors.New("relation does not exist"))

	_, err := NewRepository(client).GetRecent(context.Background(), "BTCUSDT", "binance", "1m", 200)
	assert.Error(t, err)
}
