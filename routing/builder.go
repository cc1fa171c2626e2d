package routing

import (
	"log/slog"
	"sort"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// BuildStats counts what GraphBuilder created
type BuildStats struct {
	StopVertices    int
	OnboardVertices int
	TransitEdges    int
	WalkLinks       int
}

// GraphBuilder creates the routing graph of one generation
type GraphBuilder struct {
	Data  *transit.Data
	Index *constrained.Index
	// TransferRadius links stops within this many metres by walking edges;
	// 0 disables linking.
	TransferRadius float64
	Distance       DistanceCalculator
	Logger         *slog.Logger
}

// Build creates stop and onboard vertices, transit edges and walking links
func (b *GraphBuilder) Build() (*Graph, BuildStats) {
	logger := internal.OrDefault(b.Logger)
	dist := b.Distance
	if dist == nil {
		dist = Haversine{}
	}
	g := NewGraph(b.Data, b.Index)
	var stats BuildStats

	for _, stop := range b.Data.Stops() {
		g.AddStopVertex(stop)
		stats.StopVertices++
	}

	for _, p := range b.Data.Patterns() {
		onboard := g.AddOnboardVertices(p)
		stats.OnboardVertices += len(onboard)
		fwd, rev := b.Index.Forward(p), b.Index.Reverse(p)
		for pos, v := range onboard {
			stopV := g.StopVertex(p.Stop(pos))
			if p.CanBoard(pos) {
				g.AddEdge(NewBoardEdge(stopV, v, fwd))
				stats.TransitEdges++
			}
			// riders stay on through stops without pickup
			if pos < len(onboard)-1 {
				g.AddEdge(NewHopEdge(v, onboard[pos+1]))
				stats.TransitEdges++
			}
			if p.CanAlight(pos) {
				g.AddEdge(NewAlightEdge(v, stopV, rev))
				stats.TransitEdges++
			}
		}
	}

	if b.TransferRadius > 0 {
		stats.WalkLinks = linkStops(g, b.Data.Stops(), b.TransferRadius, dist)
	}

	logger.Info("routing graph built",
		"vertices", g.NumVertices(),
		"edges", g.NumEdges(),
		"stops", stats.StopVertices,
		"walkLinks", stats.WalkLinks)
	return g, stats
}

// linkStops adds walking edges in both directions between stops closer than
// radius. Stops are swept in latitude order so only a band is compared.
func linkStops(g *Graph, stops []*transit.Stop, radius float64, dist DistanceCalculator) int {
	sorted := append([]*transit.Stop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lat < sorted[j].Lat })

	band := radius / MetersPerDegreeLat
	links := 0
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if b.Lat-a.Lat > band {
				break
			}
			d := dist.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
			if d > radius {
				continue
			}
			va, vb := g.StopVertex(a), g.StopVertex(b)
			g.AddEdge(NewStreetEdge(va, vb, d, ""))
			g.AddEdge(NewStreetEdge(vb, va, d, ""))
			links++
		}
	}
	return links
}

// Link connects a street vertex to every stop within radius in both
// directions and returns the number of stops linked.
func (g *Graph) Link(v *Vertex, radius float64, dist DistanceCalculator) int {
	if dist == nil {
		dist = Haversine{}
	}
	n := 0
	for _, sv := range g.stopVertex {
		if sv == nil {
			continue
		}
		d := dist.Distance(v.Lat, v.Lon, sv.Lat, sv.Lon)
		if d <= radius {
			g.AddEdge(NewStreetEdge(v, sv, d, ""))
			g.AddEdge(NewStreetEdge(sv, v, d, ""))
			n++
		}
	}
	return n
}
