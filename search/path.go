package search

import (
	"slices"

	"github.com/theoremus-urban-solutions/tripsearch/routing"
)

// GraphPath is a sequence of states in travel order (earliest first),
// regardless of the direction the search ran in.
type GraphPath struct {
	States []*routing.State
	Edges  []routing.Edge // Edges[i] connects States[i] and States[i+1]
}

// NewGraphPath follows the back pointers of s to the root
func NewGraphPath(s *routing.State) *GraphPath {
	var states []*routing.State
	var edges []routing.Edge
	for cur := s; cur != nil; cur = cur.BackState() {
		states = append(states, cur)
		if cur.BackEdge() != nil {
			edges = append(edges, cur.BackEdge())
		}
	}
	// a forward chain runs target to origin; an arrive-by chain already runs
	// origin to target
	if !s.ArriveBy() {
		slices.Reverse(states)
		slices.Reverse(edges)
	}
	return &GraphPath{States: states, Edges: edges}
}

func (p *GraphPath) First() *routing.State { return p.States[0] }

func (p *GraphPath) Last() *routing.State { return p.States[len(p.States)-1] }

func (p *GraphPath) StartTime() int64 { return p.First().Time() }

func (p *GraphPath) EndTime() int64 { return p.Last().Time() }

// Duration in seconds
func (p *GraphPath) Duration() int64 { return p.EndTime() - p.StartTime() }

// Weight is the total weight, taken from the final state of the search
func (p *GraphPath) Weight() float64 {
	return max(p.First().Weight(), p.Last().Weight())
}

// NumBoardings counts boardings along the path
func (p *GraphPath) NumBoardings() int {
	return max(p.First().NumBoardings(), p.Last().NumBoardings())
}

func (p *GraphPath) WalkDistance() float64 {
	return max(p.First().WalkDistance(), p.Last().WalkDistance())
}
