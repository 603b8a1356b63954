package interval

import (
	"fmt"
	"time"
)

// Timeframe represents a bar aggregation period.
type Timeframe struct {
	Name     string
	Duration time.Duration
}

// Supported timeframes.
var (
	Timeframe1m  = Timeframe{Name: "1m", Duration: time.Minute}
	Timeframe5m  = Timeframe{Name: "5m", Duration: 5 * time.Minute}
	Timeframe15m = Timeframe{Name: "15m", Duration: 15 * time.Minute}
	Timeframe1h  = Timeframe{Name: "1h", Duration: time.Hour}
	Timeframe4h  = Timeframe{Name: "4h", Duration: 4 * time.Hour}
	Timeframe1d  = Timeframe{Name: "1d", Duration: 24 * time.Hour}
)

// AllTimeframes lists every supported timeframe in ascending duration order.
var AllTimeframes = []Timeframe{
	Timeframe1m, Timeframe5m, Timeframe15m,
	Timeframe1h, Timeframe4h, Timeframe1d,
}

// DerivedTimeframes lists the timeframes built by re-bucketing completed 1m bars.
var DerivedTimeframes = []Timeframe{
	Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1d,
}

// Timeframe registry for lookup.
var timeframeRegistry = make(map[string]Timeframe)

func init() {
	for _, tf := range AllTimeframes {
		timeframeRegistry[tf.Name] = tf
	}
}

// GetTimeframe returns a timeframe by name.
func GetTimeframe(name string) (Timeframe, error) {
	tf, exists := timeframeRegistry[name]
	if !exists {
		return Timeframe{}, fmt.Errorf("unsupported timeframe: %s", name)
	}
	return tf, nil
}

// IsValidTimeframe checks if a timeframe name is supported.
func IsValidTimeframe(name string) bool {
	_, exists := timeframeRegistry[name]
	return exists
}

// AllTimeframeNames returns all supported timeframe names.
func AllTimeframeNames() []string {
	names := make([]string, 0, len(AllTimeframes))
	for _, tf := range AllTimeframes {
		names = append(names, tf.Name)
	}
	return names
}
