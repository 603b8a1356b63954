package bootstrap

import (
	"github.com/mytechsonamy/crypto-stock-platform/internal/distributor"
	"github.com/mytechsonamy/crypto-stock-platform/internal/pipeline"
)

// Processing holds the streaming pipeline and its shared stages. Quality
// gates live inside the pipeline, one per shard.
type Processing struct {
	Distributor *distributor.Distributor
	Pipeline    *pipeline.Pipeline
}

// registerPipeline registers the distributor and the processing pipeline.
func (b *Bootstrap) registerPipeline() {
	b.Processing.Distributor = distributor.New(b.Config.Distributor, b.Logger)
	b.Processing.Pipeline = pipeline.New(
		b.Config.Pipeline,
		b.Config.Indicator,
		b.Config.Quality,
		b.Logger,
		b.Processing.Distributor,
		b.Usecase.BarUsecase,
		b.Repository.BarCache,
	)
}
