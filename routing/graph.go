package routing

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Graph is the routing graph of one generation. Once built it is read-only.
type Graph struct {
	vertices   []*Vertex
	stopVertex []*Vertex   // by stop index
	onboard    [][]*Vertex // by pattern index, stop position
	numEdges   int

	data  *transit.Data
	index *constrained.Index
}

// NewGraph creates an empty graph over data. index may be nil.
func NewGraph(data *transit.Data, index *constrained.Index) *Graph {
	return &Graph{data: data, index: index}
}

func (g *Graph) Data() *transit.Data { return g.data }

func (g *Graph) TransferIndex() *constrained.Index { return g.index }

func (g *Graph) Vertices() []*Vertex { return g.vertices }

func (g *Graph) NumVertices() int { return len(g.vertices) }

func (g *Graph) NumEdges() int { return g.numEdges }

// StopVertex returns the vertex of stop, or nil
func (g *Graph) StopVertex(stop *transit.Stop) *Vertex {
	if stop == nil || stop.Index >= len(g.stopVertex) {
		return nil
	}
	return g.stopVertex[stop.Index]
}

// OnboardVertex returns the vertex of (p, stopPos), or nil
func (g *Graph) OnboardVertex(p *transit.TripPattern, stopPos int) *Vertex {
	if p == nil || p.Index >= len(g.onboard) || stopPos < 0 || stopPos >= len(g.onboard[p.Index]) {
		return nil
	}
	return g.onboard[p.Index][stopPos]
}

// AddStreetVertex adds a free-standing street vertex
func (g *Graph) AddStreetVertex(label string, lat, lon float64) *Vertex {
	return g.addVertex(&Vertex{Label: label, Lat: lat, Lon: lon, Kind: VertexStreet})
}

// AddStopVertex adds the vertex of stop. Adding a stop twice returns the
// existing vertex.
func (g *Graph) AddStopVertex(stop *transit.Stop) *Vertex {
	if v := g.StopVertex(stop); v != nil {
		return v
	}
	for len(g.stopVertex) <= stop.Index {
		g.stopVertex = append(g.stopVertex, nil)
	}
	v := g.addVertex(&Vertex{Label: stop.ID, Lat: stop.Lat, Lon: stop.Lon, Kind: VertexStop, Stop: stop})
	g.stopVertex[stop.Index] = v
	return v
}

// AddOnboardVertices adds one onboard vertex per stop position of p
func (g *Graph) AddOnboardVertices(p *transit.TripPattern) []*Vertex {
	for len(g.onboard) <= p.Index {
		g.onboard = append(g.onboard, nil)
	}
	if g.onboard[p.Index] != nil {
		return g.onboard[p.Index]
	}
	vs := make([]*Vertex, p.NumStops())
	for pos := range vs {
		stop := p.Stop(pos)
		vs[pos] = g.addVertex(&Vertex{
			Label:   fmt.Sprintf("%s:%d", p.ID, pos),
			Lat:     stop.Lat,
			Lon:     stop.Lon,
			Kind:    VertexOnboard,
			Stop:    stop,
			Pattern: p,
			StopPos: pos,
		})
	}
	g.onboard[p.Index] = vs
	return vs
}

// AddEdge links e into its end vertices
func (g *Graph) AddEdge(e Edge) {
	e.From().outgoing = append(e.From().outgoing, e)
	e.To().incoming = append(e.To().incoming, e)
	g.numEdges++
}

func (g *Graph) addVertex(v *Vertex) *Vertex {
	v.Index = len(g.vertices)
	g.vertices = append(g.vertices, v)
	return v
}
