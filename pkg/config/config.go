package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mytechsonamy/crypto-stock-platform/pkg/postgres"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App         AppConfig         `envPrefix:"APP_"`
	Postgres    postgres.Config   `envPrefix:"POSTGRES_"`
	Redis       redis.Config      `envPrefix:"REDIS_"`
	TradeKafka  TradeKafkaConfig  `envPrefix:"TRADE_KAFKA_"`
	Binance     BinanceConfig     `envPrefix:"BINANCE_"`
	Pipeline    PipelineConfig    `envPrefix:"PIPELINE_"`
	Quality     QualityConfig     `envPrefix:"QUALITY_"`
	Indicator   IndicatorConfig   `envPrefix:"INDICATOR_"`
	Distributor DistributorConfig `envPrefix:"DISTRIBUTOR_"`
	Breaker     BreakerConfig     `envPrefix:"BREAKER_"`
	WS          WSConfig          `envPrefix:"WS_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"market-data-pipeline"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// TradeKafkaConfig represents the Kafka trade feed configuration. Exchange
// and Symbols name the series this topic carries so their indicator windows
// can be seeded from history on startup.
type TradeKafkaConfig struct {
	Enabled         bool     `env:"ENABLED" envDefault:"false"`
	Brokers         []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic           string   `env:"TOPIC" envDefault:"trades"`
	ConsumerGroup   string   `env:"CONSUMER_GROUP" envDefault:"market-data-pipeline"`
	ConsumerTimeout int      `env:"CONSUMER_TIMEOUT" envDefault:"5"`
	MaxRetries      int      `env:"MAX_RETRIES" envDefault:"3"`
	Exchange        string   `env:"EXCHANGE" envDefault:"binance"`
	Symbols         []string `env:"SYMBOLS" envSeparator:","`
}

// BinanceConfig represents the Binance websocket feed configuration.
type BinanceConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"true"`
	URL     string   `env:"URL" envDefault:"wss://stream.binance.com:9443/ws"`
	Symbols []string `env:"SYMBOLS" envSeparator:"," envDefault:"BTCUSDT,ETHUSDT"`
}

// PipelineConfig represents the processing pipeline configuration.
type PipelineConfig struct {
	IngestQueueSize  int           `env:"INGEST_QUEUE_SIZE" envDefault:"10000"`
	PersistQueueSize int           `env:"PERSIST_QUEUE_SIZE" envDefault:"1000"`
	Workers          int           `env:"WORKERS" envDefault:"4"`
	FlushInterval    time.Duration `env:"FLUSH_INTERVAL" envDefault:"1s"`
	LateTickGrace    time.Duration `env:"LATE_TICK_GRACE" envDefault:"0s"`
}

// QualityConfig represents the tick quality gate configuration.
type QualityConfig struct {
	MaxTickAge       time.Duration `env:"MAX_TICK_AGE" envDefault:"60s"`
	PriceWindowSize  int           `env:"PRICE_WINDOW_SIZE" envDefault:"100"`
	MinWindowSamples int           `env:"MIN_WINDOW_SAMPLES" envDefault:"10"`
	MaxZScore        float64       `env:"MAX_Z_SCORE" envDefault:"3.0"`
	MaxDeviation     float64       `env:"MAX_DEVIATION" envDefault:"0.10"`
	MaxVolumeFactor  float64       `env:"MAX_VOLUME_FACTOR" envDefault:"100"`
	ScoreAlpha       float64       `env:"SCORE_ALPHA" envDefault:"0.1"`
}

// IndicatorConfig represents the indicator engine configuration.
type IndicatorConfig struct {
	WindowSize int `env:"WINDOW_SIZE" envDefault:"200"`
}

// DistributorConfig represents the update distributor configuration.
type DistributorConfig struct {
	BatchInterval   time.Duration `env:"BATCH_INTERVAL" envDefault:"100ms"`
	ThrottlePerSec  float64       `env:"THROTTLE_PER_SEC" envDefault:"1"`
	SubscriberQueue int           `env:"SUBSCRIBER_QUEUE" envDefault:"256"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"5m"`
}

// BreakerConfig represents the circuit breaker configuration shared by
// collectors and the persistence path.
type BreakerConfig struct {
	FailureThreshold int           `env:"FAILURE_THRESHOLD" envDefault:"5"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"60s"`
	SuccessThreshold int           `env:"SUCCESS_THRESHOLD" envDefault:"2"`
}

// WSConfig represents the subscriber websocket endpoint configuration.
type WSConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"true"`
	ReadBufferSize  int           `env:"READ_BUFFER_SIZE" envDefault:"1024"`
	WriteBufferSize int           `env:"WRITE_BUFFER_SIZE" envDefault:"4096"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}

// SeedTarget names one exchange's symbol set to preload on startup.
type SeedTarget struct {
	Exchange string
	Symbols  []string
}

// SeedTargets returns the symbol sets of every enabled feed, so indicator
// windows can be warmed for all series that will receive live ticks.
func (c *Config) SeedTargets() []SeedTarget {
	var targets []SeedTarget
	if c.Binance.Enabled && len(c.Binance.Symbols) > 0 {
		targets = append(targets, SeedTarget{Exchange: "binance", Symbols: c.Binance.Symbols})
	}
	if c.TradeKafka.Enabled && len(c.TradeKafka.Symbols) > 0 {
		targets = append(targets, SeedTarget{Exchange: c.TradeKafka.Exchange, Symbols: c.TradeKafka.Symbols})
	}
	return targets
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
