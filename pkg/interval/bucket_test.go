package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_BucketStart(t *testing.T) {
	testCases := []struct {
		name      string
		timeframe Timeframe
		timestamp time.Time
		expected  time.Time
	}{
		{
			name:      "1m zeroes seconds and millis",
			timeframe: Timeframe1m,
			timestamp: time.Date(2024, 3, 15, 10, 37, 42, 900e6, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 37, 0, 0, time.UTC),
		},
		{
			name:      "5m rounds minute down to nearest multiple",
			timeframe: Timeframe5m,
			timestamp: time.Date(2024, 3, 15, 10, 37, 42, 0, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 35, 0, 0, time.UTC),
		},
		{
			name:      "15m rounds minute down to nearest multiple",
			timeframe: Timeframe15m,
			timestamp: time.Date(2024, 3, 15, 10, 44, 59, 0, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:      "1h zeroes minutes and seconds",
			timeframe: Timeframe1h,
			timestamp: time.Date(2024, 3, 15, 10, 59, 59, 999e6, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "4h aligns to epoch multiples",
			timeframe: Timeframe4h,
			timestamp: time.Date(2024, 3, 15, 15, 0, 1, 0, time.UTC),
			expected:  time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "1d starts at UTC midnight",
			timeframe: Timeframe1d,
			timestamp: time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
			expected:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "timestamp on boundary maps to itself",
			timeframe: Timeframe5m,
			timestamp: time.Date(2024, 3, 15, 10, 35, 0, 0, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 35, 0, 0, time.UTC),
		},
		{
			name:      "last instant before boundary stays in previous bucket",
			timeframe: Timeframe1m,
			timestamp: time.Date(2024, 3, 15, 10, 37, 59, 999e6, time.UTC),
			expected:  time.Date(2024, 3, 15, 10, 37, 0, 0, time.UTC),
		},
		{
			name:      "non-UTC input is normalized to UTC buckets",
			timeframe: Timeframe1h,
			timestamp: time.Date(2024, 3, 15, 12, 30, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			expected:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := testCase.timeframe.BucketStart(testCase.timestamp)
			assert.True(t, testCase.expected.Equal(got), "expected %s, got %s", testCase.expected, got)
		})
	}
}

func TestTimeframe_BucketStart_Properties(t *testing.T) {
	timestamps := []time.Time{
		time.UnixMilli(0),
		time.UnixMilli(1),
		time.UnixMilli(59_999),
		time.UnixMilli(60_000),
		time.UnixMilli(61_000),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 999e6, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, tf := range AllTimeframes {
		for _, ts := range timestamps {
			start := tf.BucketStart(ts)

			// start <= ts < start + duration
			assert.False(t, start.After(ts.UTC()), "%s: bucket start %s after %s", tf.Name, start, ts)
			assert.True(t, ts.UTC().Before(start.Add(tf.Duration)), "%s: %s outside bucket starting %s", tf.Name, ts, start)

			// idempotence
			assert.True(t, start.Equal(tf.BucketStart(start)), "%s: BucketStart not idempotent for %s", tf.Name, ts)
		}
	}
}

func TestTimeframe_BucketStartMs(t *testing.T) {
	// t=61000 belongs to the bucket starting at 60000 for 1m.
	assert.Equal(t, int64(60_000), Timeframe1m.BucketStartMs(61_000))
	assert.Equal(t, int64(0), Timeframe1m.BucketStartMs(59_999))
	assert.Equal(t, int64(0), Timeframe1d.BucketStartMs(1_000))
}

func TestTimeframe_SameBucket(t *testing.T) {
	a := time.Date(2024, 3, 15, 10, 37, 1, 0, time.UTC)
	b := time.Date(2024, 3, 15, 10, 37, 59, 0, time.UTC)
	c := time.Date(2024, 3, 15, 10, 38, 0, 0, time.UTC)

	assert.True(t, Timeframe1m.SameBucket(a, b))
	assert.False(t, Timeframe1m.SameBucket(b, c))
	assert.True(t, Timeframe1h.SameBucket(b, c))
}

func TestGetTimeframe(t *testing.T) {
	tf, err := GetTimeframe("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, tf.Duration)

	_, err = GetTimeframe("2m")
	assert.Error(t, err)

	assert.True(t, IsValidTimeframe("1d"))
	assert.False(t, IsValidTimeframe("1w"))
}
