package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	barInfra "github.com/mytechsonamy/crypto-stock-platform/internal/infrastructure/postgres/bar"
	"github.com/mytechsonamy/crypto-stock-platform/internal/infrastructure/rediscache"
)

// Repository holds the storage adapters. BarCache is nil when Redis is not
// connected.
type Repository struct {
	BarRepository market.BarRepository
	BarCache      market.BarCache
}

// registerRepository registers the storage adapters.
func (b *Bootstrap) registerRepository() {
	b.Repository.BarRepository = barInfra.NewRepository(b.Postgres)

	if b.Redis != nil {
		b.Repository.BarCache = rediscache.NewCache(b.Redis, &b.Config.Redis)
	}
}
