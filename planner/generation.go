package planner

import (
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/routing"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Generation is an immutable snapshot that searches run against
type Generation struct {
	ID         uint64
	Data       *transit.Data
	Transfers  []transfer.ConstrainedTransfer
	Index      *constrained.Index
	Graph      *routing.Graph
	IndexStats constrained.IndexStats
	GraphStats routing.BuildStats
	BuiltAt    time.Time
}

func (p *Planner) buildGeneration(data *transit.Data, transfers []transfer.ConstrainedTransfer) *Generation {
	start := time.Now()
	index, indexStats := constrained.NewIndexGenerator(transfers, data, p.logger).Generate()
	p.metrics.ObserveIndexBuild(time.Since(start), indexStats.Transfers-indexStats.Dropped, indexStats.Dropped)

	b := &routing.GraphBuilder{
		Data:           data,
		Index:          index,
		TransferRadius: p.cfg.TransferRadius,
		Distance:       p.distance,
		Logger:         p.logger,
	}
	graph, graphStats := b.Build()

	return &Generation{
		ID:         p.nextID.Add(1),
		Data:       data,
		Transfers:  transfers,
		Index:      index,
		Graph:      graph,
		IndexStats: indexStats,
		GraphStats: graphStats,
		BuiltAt:    time.Now(),
	}
}
