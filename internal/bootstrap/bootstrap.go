package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/postgres"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/redis"
)

// Bootstrap wires the market data pipeline together.
type Bootstrap struct {
	Config     *config.Config
	Logger     logger.Interface
	Repository Repository
	Usecase    Usecase
	Processing Processing
	Collectors Collectors
	Transport  Transport

	Postgres postgres.PostgresClient
	Redis    redis.Client
}

// BootstrapConfig is the config for the bootstrap. Redis may be nil; the
// pipeline then runs without the latest-bar cache.
type BootstrapConfig struct {
	Config   *config.Config
	Logger   logger.Interface
	Postgres postgres.PostgresClient
	Redis    redis.Client
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.Config = config.Config
	b.Logger = config.Logger
	b.Postgres = config.Postgres
	b.Redis = config.Redis

	b.registerRepository()
	b.registerUsecase()
	b.registerPipeline()
	b.registerCollectors()
	b.registerTransport()

	return *b
}
