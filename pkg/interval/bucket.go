package interval

import (
	"time"
)

// BucketStart calculates the start time of the bucket containing timestamp.
// The result always satisfies BucketStart(t) <= t < BucketStart(t)+Duration
// and is idempotent: BucketStart(BucketStart(t)) == BucketStart(t).
// Buckets align to UTC; a daily bucket starts at UTC midnight.
func (tf Timeframe) BucketStart(timestamp time.Time) time.Time {
	ts := timestamp.UTC()

	switch tf.Name {
	case "1d":
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return ts.Truncate(tf.Duration)
	}
}

// BucketStartMs calculates the bucket start for a unix-millisecond timestamp,
// returned in unix milliseconds. Collectors hand the pipeline millisecond
// timestamps, so this is the hot-path form of BucketStart.
func (tf Timeframe) BucketStartMs(timestampMs int64) int64 {
	return tf.BucketStart(time.UnixMilli(timestampMs)).UnixMilli()
}

// BucketRange returns the start and end time of the bucket containing timestamp.
func (tf Timeframe) BucketRange(timestamp time.Time) (start, end time.Time) {
	start = tf.BucketStart(timestamp)
	end = start.Add(tf.Duration)
	return start, end
}

// SameBucket checks if two timestamps fall within the same bucket.
func (tf Timeframe) SameBucket(a, b time.Time) bool {
	return tf.BucketStart(a).Equal(tf.BucketStart(b))
}
