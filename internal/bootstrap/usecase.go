package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	barUc "github.com/mytechsonamy/crypto-stock-platform/internal/usecase/bar"
)

// Usecase holds the application usecases.
type Usecase struct {
	BarUsecase market.BarUsecase
}

// registerUsecase registers the usecases.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.BarUsecase = barUc.NewUsecase(b.Repository.BarRepository, b.Logger)
}
