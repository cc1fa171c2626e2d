package search

import (
	"slices"

	"github.com/theoremus-urban-solutions/tripsearch/routing"
)

// ShortestPathTree keeps, per vertex, the states not dominated by another
// state at the same vertex.
type ShortestPathTree struct {
	states  map[*routing.Vertex][]*routing.State
	visited map[*routing.Vertex]bool
}

func NewShortestPathTree() *ShortestPathTree {
	return &ShortestPathTree{
		states:  map[*routing.Vertex][]*routing.State{},
		visited: map[*routing.Vertex]bool{},
	}
}

// Add inserts s unless an existing state dominates it. States dominated by s
// are removed. Reports whether s was retained.
func (t *ShortestPathTree) Add(s *routing.State) bool {
	v := s.Vertex()
	existing := t.states[v]
	for _, o := range existing {
		if o.Dominates(s) {
			return false
		}
	}
	kept := existing[:0]
	for _, o := range existing {
		if !s.Dominates(o) {
			kept = append(kept, o)
		}
	}
	t.states[v] = append(kept, s)
	return true
}

// Visit marks the vertex of s visited. It reports false when s has been
// dominated since it was queued, in which case it should not be expanded.
func (t *ShortestPathTree) Visit(s *routing.State) bool {
	if !slices.Contains(t.states[s.Vertex()], s) {
		return false
	}
	t.visited[s.Vertex()] = true
	return true
}

func (t *ShortestPathTree) Visited(v *routing.Vertex) bool { return t.visited[v] }

// States returns the retained states at v
func (t *ShortestPathTree) States(v *routing.Vertex) []*routing.State { return t.states[v] }

// State returns the retained state at v with the lowest weight, or nil
func (t *ShortestPathTree) State(v *routing.Vertex) *routing.State {
	var best *routing.State
	for _, s := range t.states[v] {
		if best == nil || s.Weight() < best.Weight() {
			best = s
		}
	}
	return best
}

// Path reconstructs the path to the best state at v, or nil
func (t *ShortestPathTree) Path(v *routing.Vertex) *GraphPath {
	s := t.State(v)
	if s == nil {
		return nil
	}
	return NewGraphPath(s)
}

// NumVertices is the number of vertices holding at least one state
func (t *ShortestPathTree) NumVertices() int { return len(t.states) }

// NumStates is the number of retained states
func (t *ShortestPathTree) NumStates() int {
	n := 0
	for _, ss := range t.states {
		n += len(ss)
	}
	return n
}
