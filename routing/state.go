package routing

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Ride is the trip a state is on board of
type Ride struct {
	Trip       *transit.TripSchedule
	ServiceDay int64 // midnight, unix seconds
	StartPos   int   // stop position where the ride began in search direction
}

// LastRide is the most recently ended ride, consulted for constrained
// transfers at the next boarding.
type LastRide struct {
	Trip       *transit.TripSchedule
	StopIndex  int
	Time       int64
	ServiceDay int64
}

// State is an immutable snapshot of a search at a vertex
type State struct {
	vertex       *Vertex
	weight       float64
	time         int64
	numBoardings int
	walkDistance float64
	ride         *Ride
	lastRide     *LastRide
	constraint   transfer.Constraint

	backState *State
	backEdge  Edge
	request   *Request
}

// NewInitialState creates the root state of a search at v
func NewInitialState(v *Vertex, req *Request) *State {
	return &State{
		vertex:     v,
		time:       req.StartTime(),
		constraint: transfer.Regular,
		request:    req,
	}
}

func (s *State) Vertex() *Vertex { return s.vertex }

func (s *State) Weight() float64 { return s.weight }

// Time is the clock time at the vertex in unix seconds
func (s *State) Time() int64 { return s.time }

func (s *State) NumBoardings() int { return s.numBoardings }

func (s *State) WalkDistance() float64 { return s.walkDistance }

// Ride is nil unless the state is on board a trip
func (s *State) Ride() *Ride { return s.ride }

func (s *State) LastRide() *LastRide { return s.lastRide }

// Constraint is the transfer constraint of the boarding that started the
// current ride.
func (s *State) Constraint() transfer.Constraint { return s.constraint }

func (s *State) BackState() *State { return s.backState }

func (s *State) BackEdge() Edge { return s.backEdge }

func (s *State) Request() *Request { return s.request }

func (s *State) ArriveBy() bool { return s.request.ArriveBy }

func (s *State) IsOnboard() bool { return s.ride != nil }

// ElapsedSeconds is the absolute time since the search started
func (s *State) ElapsedSeconds() int64 {
	d := s.time - s.request.StartTime()
	if d < 0 {
		return -d
	}
	return d
}

// Dominates reports whether s is at least as good as o on weight, time and
// boardings. States on different vertices never dominate each other.
func (s *State) Dominates(o *State) bool {
	if s.vertex != o.vertex {
		return false
	}
	if s.weight > o.weight || s.numBoardings > o.numBoardings {
		return false
	}
	if s.ArriveBy() {
		return s.time >= o.time
	}
	return s.time <= o.time
}

func (s *State) String() string {
	return fmt.Sprintf("State{%s w=%.1f t=%d b=%d}", s.vertex, s.weight, s.time, s.numBoardings)
}

// editor derives a child state. Only edges use it.
type editor struct {
	s State
}

func (s *State) edit(e Edge) *editor {
	child := *s
	child.backState = s
	child.backEdge = e
	return &editor{s: child}
}

func (ed *editor) setVertex(v *Vertex) { ed.s.vertex = v }

func (ed *editor) incrementWeight(w float64) { ed.s.weight += w }

// advance moves the clock by seconds in the search direction
func (ed *editor) advance(seconds int64) {
	if ed.s.request.ArriveBy {
		ed.s.time -= seconds
	} else {
		ed.s.time += seconds
	}
}

func (ed *editor) setTime(t int64) { ed.s.time = t }

func (ed *editor) incrementWalkDistance(d float64) { ed.s.walkDistance += d }

func (ed *editor) beginRide(r *Ride, c transfer.Constraint) {
	ed.s.ride = r
	ed.s.constraint = c
	ed.s.numBoardings++
}

func (ed *editor) endRide(stopIndex int) {
	r := ed.s.ride
	ed.s.lastRide = &LastRide{Trip: r.Trip, StopIndex: stopIndex, Time: ed.s.time, ServiceDay: r.ServiceDay}
	ed.s.ride = nil
}

func (ed *editor) makeState() *State {
	s := ed.s
	return &s
}
