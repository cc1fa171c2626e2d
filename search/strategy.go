package search

import (
	"fmt"
	"math"

	"github.com/theoremus-urban-solutions/tripsearch/routing"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Heuristic estimates the remaining weight from s to target. It must never
// overestimate for the search to stay optimal.
type Heuristic interface {
	RemainingWeight(s *routing.State, target *routing.Vertex) float64
}

// HeuristicFunc adapts a function to Heuristic
type HeuristicFunc func(s *routing.State, target *routing.Vertex) float64

func (f HeuristicFunc) RemainingWeight(s *routing.State, target *routing.Vertex) float64 {
	return f(s, target)
}

// TerminationStrategy decides whether the search stops after current was
// dequeued.
type TerminationStrategy interface {
	ShouldSearchTerminate(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool
}

type TerminationFunc func(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool

func (f TerminationFunc) ShouldSearchTerminate(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool {
	return f(origin, target, current, spt, req)
}

// SkipTraverseResultStrategy filters successor states before they enter the
// tree.
type SkipTraverseResultStrategy interface {
	ShouldSkip(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool
}

type SkipFunc func(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool

func (f SkipFunc) ShouldSkip(origin, target *routing.Vertex, current *routing.State, spt *ShortestPathTree, req *routing.Request) bool {
	return f(origin, target, current, spt, req)
}

// TrivialHeuristic always estimates zero, turning the search into Dijkstra
var TrivialHeuristic Heuristic = HeuristicFunc(func(*routing.State, *routing.Vertex) float64 { return 0 })

// StopAtTarget terminates once the target vertex is dequeued
var StopAtTarget TerminationStrategy = TerminationFunc(
	func(_, target *routing.Vertex, current *routing.State, _ *ShortestPathTree, _ *routing.Request) bool {
		return current.Vertex() == target
	})

// EuclideanHeuristic bounds the remaining weight by the straight-line
// distance travelled at the cheapest rate per metre the request allows:
// riding at MaxSpeed (weight 1 per second) or walking.
type EuclideanHeuristic struct {
	Distance routing.DistanceCalculator
	MaxSpeed float64 // m/s of the fastest vehicle
}

func NewEuclideanHeuristic(dist routing.DistanceCalculator, maxSpeed float64) *EuclideanHeuristic {
	if dist == nil {
		dist = routing.Haversine{}
	}
	return &EuclideanHeuristic{Distance: dist, MaxSpeed: maxSpeed}
}

func (h *EuclideanHeuristic) RemainingWeight(s *routing.State, target *routing.Vertex) float64 {
	v := s.Vertex()
	d := h.Distance.Distance(v.Lat, v.Lon, target.Lat, target.Lon)
	return d * h.weightPerMetre(s.Request())
}

func (h *EuclideanHeuristic) weightPerMetre(req *routing.Request) float64 {
	rate := math.Inf(1)
	if req.Modes.Walk() && req.WalkSpeed > 0 {
		rate = req.WalkReluctance / req.WalkSpeed
	}
	if req.Modes.Transit() && h.MaxSpeed > 0 {
		rate = math.Min(rate, 1/h.MaxSpeed)
	}
	if math.IsInf(rate, 1) {
		return 0
	}
	return rate
}

// HeuristicByName returns the heuristic configured as "euclidean" or
// "trivial".
func HeuristicByName(name string, dist routing.DistanceCalculator, maxSpeed float64) (Heuristic, error) {
	switch name {
	case "", "euclidean":
		return NewEuclideanHeuristic(dist, maxSpeed), nil
	case "trivial":
		return TrivialHeuristic, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}

// SkipRoutes skips every state that boarded one of the banned routes
func SkipRoutes(routes ...*transit.Route) SkipTraverseResultStrategy {
	banned := make(map[*transit.Route]bool, len(routes))
	for _, r := range routes {
		banned[r] = true
	}
	return SkipFunc(func(_, _ *routing.Vertex, current *routing.State, _ *ShortestPathTree, _ *routing.Request) bool {
		r := current.Ride()
		return r != nil && banned[r.Trip.Trip().Route]
	})
}
