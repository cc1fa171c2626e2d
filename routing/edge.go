package routing

import "iter"

// Edge connects two vertices. Traverse yields the states reachable by
// crossing the edge from s, in the direction of s's request: from From to To
// in a forward search, from To to From in an arrive-by search. The sequence
// is finite, possibly empty, and consumed at most once.
type Edge interface {
	From() *Vertex
	To() *Vertex
	Traverse(s *State) iter.Seq[*State]
	String() string
}

// RideStarter is implemented by edges that may begin a transit ride
type RideStarter interface {
	// StartsRide reports whether traversing in the given direction boards a
	// vehicle, which counts towards the transfer limit.
	StartsRide(arriveBy bool) bool
}

// StartsRide reports whether traversing e in the given direction boards
func StartsRide(e Edge, arriveBy bool) bool {
	rs, ok := e.(RideStarter)
	return ok && rs.StartsRide(arriveBy)
}

func none(yield func(*State) bool) {}

func single(s *State) iter.Seq[*State] {
	return func(yield func(*State) bool) { yield(s) }
}
