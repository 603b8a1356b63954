package pipeline

// Stats is the health surface scraped by monitoring. Collector circuit
// states are reported by the collectors themselves; everything pipeline-owned
// is here.
type Stats struct {
	IngestQueueDepth  int
	PersistQueueDepth int
	OpenBars          int
	Subscriptions     int

	Ingested         int64
	RejectedQuality  int64
	DroppedQueueFull int64
	LateTicks        int64
	Persisted        int64
	PersistFailures  int64

	Delivered            int64
	DeliveryFailures     int64
	EvictedSinks         int64
	ExpiredSubscriptions int64

	QualityScores map[string]float64
}

// Stats snapshots the pipeline counters and queue depths. Quality scores are
// merged across the per-shard gates; a symbol only ever lives on one shard.
func (p *Pipeline) Stats() Stats {
	stats := Stats{
		PersistQueueDepth:    len(p.persist),
		Subscriptions:        p.distributor.Subscriptions(),
		Ingested:             p.ingested.Load(),
		RejectedQuality:      p.rejected.Load(),
		DroppedQueueFull:     p.droppedQueueFull.Load(),
		Persisted:            p.persisted.Load(),
		PersistFailures:      p.persistFailures.Load(),
		Delivered:            p.distributor.Delivered(),
		DeliveryFailures:     p.distributor.Failures(),
		EvictedSinks:         p.distributor.Evicted(),
		ExpiredSubscriptions: p.distributor.Expired(),
		QualityScores:        make(map[string]float64),
	}

	for _, s := range p.shards {
		stats.IngestQueueDepth += len(s.ticks)
		stats.LateTicks += s.builder.LateTicks()
		stats.OpenBars += s.builder.OpenBars()
		for symbol, score := range s.gate.Scores() {
			stats.QualityScores[symbol] = score
		}
	}
	return stats
}
