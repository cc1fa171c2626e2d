package constrained

import (
	"log/slog"
	"slices"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Index holds the forward and reverse search of every pattern
type Index struct {
	forward []*Search // by pattern index
	reverse []*Search
}

// Forward returns the search used when boarding p forward in time. It is
// never nil for a pattern of the indexed data.
func (x *Index) Forward(p *transit.TripPattern) *Search {
	if x == nil || p == nil || p.Index >= len(x.forward) {
		return nil
	}
	return x.forward[p.Index]
}

// Reverse returns the search used by arrive-by searches when boarding p
// backwards in time.
func (x *Index) Reverse(p *transit.TripPattern) *Search {
	if x == nil || p == nil || p.Index >= len(x.reverse) {
		return nil
	}
	return x.reverse[p.Index]
}

// IndexStats summarises one index build
type IndexStats struct {
	Transfers      int
	Dropped        int
	Ambiguous      int
	ForwardEntries int
	ReverseEntries int
}

// IndexGenerator distributes constrained transfers over the stop positions of
// the patterns they touch.
type IndexGenerator struct {
	transfers []transfer.ConstrainedTransfer
	data      *transit.Data
	logger    *slog.Logger
	throttle  *internal.ThrottleLogger
}

// NewIndexGenerator prepares a generator over transfers. A nil logger falls
// back to the default one.
func NewIndexGenerator(transfers []transfer.ConstrainedTransfer, data *transit.Data, logger *slog.Logger) *IndexGenerator {
	logger = internal.OrDefault(logger)
	return &IndexGenerator{
		transfers: transfers,
		data:      data,
		logger:    logger,
		throttle:  internal.NewThrottleLogger(logger, 0),
	}
}

// Generate builds the index. Records referencing unknown entities or
// ambiguous route positions are logged and dropped.
func (g *IndexGenerator) Generate() (*Index, IndexStats) {
	patterns := g.data.Patterns()
	idx := &Index{
		forward: make([]*Search, len(patterns)),
		reverse: make([]*Search, len(patterns)),
	}
	for _, p := range patterns {
		idx.forward[p.Index] = newSearch(p, true)
		idx.reverse[p.Index] = newSearch(p, false)
	}
	stats := IndexStats{Transfers: len(g.transfers)}

	sorted := slices.Clone(g.transfers)
	transfer.Sort(sorted)

	for _, tx := range sorted {
		if !g.valid(tx, &stats) {
			stats.Dropped++
			continue
		}
		for _, p := range patterns {
			for pos := 0; pos < p.NumStops(); pos++ {
				if p.CanBoard(pos) && g.touches(tx.To, p, pos) {
					e := TransferForPattern{Source: tx.From, TargetTrip: tx.To.Trip(), Transfer: tx}
					idx.forward[p.Index].transfers[pos] = append(idx.forward[p.Index].transfers[pos], e)
					stats.ForwardEntries++
				}
				if p.CanAlight(pos) && g.touches(tx.From, p, pos) {
					e := TransferForPattern{Source: tx.To, TargetTrip: tx.From.Trip(), Transfer: tx}
					idx.reverse[p.Index].transfers[pos] = append(idx.reverse[p.Index].transfers[pos], e)
					stats.ReverseEntries++
				}
			}
		}
	}

	g.logger.Info("constrained transfer index generated",
		"transfers", stats.Transfers,
		"dropped", stats.Dropped,
		"ambiguous", stats.Ambiguous,
		"forward", stats.ForwardEntries,
		"reverse", stats.ReverseEntries)
	return idx, stats
}

func (g *IndexGenerator) valid(tx transfer.ConstrainedTransfer, stats *IndexStats) bool {
	for _, p := range []transfer.Point{tx.From, tx.To} {
		if !g.known(p) {
			g.logger.Warn("constrained transfer references unknown entity, dropped",
				"transfer", tx.ID, "point", p.String())
			return false
		}
		if p.IsRoute() && g.ambiguous(p) {
			stats.Ambiguous++
			g.throttle.Error("route transfer point is ambiguous, transfer dropped",
				"transfer", tx.ID, "point", p.String())
			return false
		}
	}
	return true
}

// known reports whether the entity of p belongs to the indexed data
func (g *IndexGenerator) known(p transfer.Point) bool {
	switch p.Kind() {
	case transfer.KindStation:
		return p.Station() != nil && g.data.StationByID(p.Station().ID) == p.Station()
	case transfer.KindStop:
		return p.Stop() != nil && g.data.StopByID(p.Stop().ID) == p.Stop()
	case transfer.KindRoute:
		return p.Route() != nil && g.data.RouteByID(p.Route().ID) == p.Route()
	case transfer.KindTrip:
		if p.Trip() == nil || g.data.TripByID(p.Trip().ID) != p.Trip() {
			return false
		}
		pattern := g.data.PatternForTrip(p.Trip())
		return pattern != nil && p.StopPos() >= 0 && p.StopPos() < pattern.NumStops()
	}
	return false
}

// ambiguous reports whether a route point fails to identify one stop: the
// position is unresolved, or the route's patterns serve different stops there.
func (g *IndexGenerator) ambiguous(p transfer.Point) bool {
	if p.StopPos() < 0 {
		return true
	}
	var stop *transit.Stop
	for _, pattern := range g.data.PatternsForRoute(p.Route()) {
		if p.StopPos() >= pattern.NumStops() {
			return true
		}
		s := pattern.Stop(p.StopPos())
		if stop != nil && s != stop {
			return true
		}
		stop = s
	}
	return stop == nil
}

func (g *IndexGenerator) touches(point transfer.Point, p *transit.TripPattern, pos int) bool {
	switch point.Kind() {
	case transfer.KindStation:
		return p.Stop(pos).Station == point.Station()
	case transfer.KindStop:
		return p.Stop(pos) == point.Stop()
	case transfer.KindRoute:
		return p.Route == point.Route() && pos == point.StopPos()
	case transfer.KindTrip:
		return g.data.PatternForTrip(point.Trip()) == p && pos == point.StopPos()
	}
	return false
}
