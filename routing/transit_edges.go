package routing

import (
	"fmt"
	"iter"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// BoardEdge leads from a stop onto a pattern at one stop position
type BoardEdge struct {
	stop, onboard *Vertex
	Pattern       *transit.TripPattern
	StopPos       int
	search        *constrained.Search // forward constrained search, may be nil
}

func NewBoardEdge(stop, onboard *Vertex, search *constrained.Search) *BoardEdge {
	return &BoardEdge{stop: stop, onboard: onboard, Pattern: onboard.Pattern, StopPos: onboard.StopPos, search: search}
}

func (e *BoardEdge) From() *Vertex { return e.stop }

func (e *BoardEdge) To() *Vertex { return e.onboard }

func (e *BoardEdge) StartsRide(arriveBy bool) bool { return !arriveBy }

func (e *BoardEdge) Traverse(s *State) iter.Seq[*State] {
	if s.ArriveBy() {
		return endRide(e, s, e.stop, e.Pattern, e.StopPos)
	}
	return startRide(e, s, e.onboard, e.Pattern, e.StopPos, e.search)
}

func (e *BoardEdge) String() string {
	return fmt.Sprintf("BoardEdge(%s @%d)", e.Pattern.ID, e.StopPos)
}

// HopEdge rides from one stop position of a pattern to the next
type HopEdge struct {
	from, to *Vertex
	Pattern  *transit.TripPattern
	StopPos  int // position of From
}

func NewHopEdge(from, to *Vertex) *HopEdge {
	return &HopEdge{from: from, to: to, Pattern: from.Pattern, StopPos: from.StopPos}
}

func (e *HopEdge) From() *Vertex { return e.from }

func (e *HopEdge) To() *Vertex { return e.to }

func (e *HopEdge) Traverse(s *State) iter.Seq[*State] {
	r := s.Ride()
	if r == nil || r.Trip.Pattern() != e.Pattern {
		return none
	}
	ed := s.edit(e)
	var t int64
	if s.ArriveBy() {
		ed.setVertex(e.from)
		t = r.ServiceDay + int64(r.Trip.Departure(e.StopPos))
	} else {
		ed.setVertex(e.to)
		t = r.ServiceDay + int64(r.Trip.Arrival(e.StopPos+1))
	}
	ed.incrementWeight(float64(abs(t - s.Time())))
	ed.setTime(t)
	return single(ed.makeState())
}

func (e *HopEdge) String() string {
	return fmt.Sprintf("HopEdge(%s %d->%d)", e.Pattern.ID, e.StopPos, e.StopPos+1)
}

// AlightEdge leads from a pattern back to the stop at one stop position
type AlightEdge struct {
	onboard, stop *Vertex
	Pattern       *transit.TripPattern
	StopPos       int
	search        *constrained.Search // reverse constrained search, may be nil
}

func NewAlightEdge(onboard, stop *Vertex, search *constrained.Search) *AlightEdge {
	return &AlightEdge{onboard: onboard, stop: stop, Pattern: onboard.Pattern, StopPos: onboard.StopPos, search: search}
}

func (e *AlightEdge) From() *Vertex { return e.onboard }

func (e *AlightEdge) To() *Vertex { return e.stop }

func (e *AlightEdge) StartsRide(arriveBy bool) bool { return arriveBy }

func (e *AlightEdge) Traverse(s *State) iter.Seq[*State] {
	if s.ArriveBy() {
		return startRide(e, s, e.onboard, e.Pattern, e.StopPos, e.search)
	}
	return endRide(e, s, e.stop, e.Pattern, e.StopPos)
}

func (e *AlightEdge) String() string {
	return fmt.Sprintf("AlightEdge(%s @%d)", e.Pattern.ID, e.StopPos)
}

// startRide boards p at pos in the search direction, yielding one state per
// service day on which a trip qualifies.
func startRide(e Edge, s *State, v *Vertex, p *transit.TripPattern, pos int, search *constrained.Search) iter.Seq[*State] {
	req := s.Request()
	if s.IsOnboard() || !req.Modes.Allows(p.Route.Mode) {
		return none
	}
	return func(yield func(*State) bool) {
		for _, sd := range req.ServiceDays {
			trip, t, c, ok := selectTrip(s, p, pos, search, sd)
			if !ok {
				continue
			}
			at := sd + int64(t)
			cost := float64(abs(at-s.Time()))*req.WaitReluctance + req.BoardCost
			if s.NumBoardings() > 0 {
				cost += req.TransferCost * c.CostFactor()
			}
			ed := s.edit(e)
			ed.setVertex(v)
			ed.setTime(at)
			ed.incrementWeight(cost)
			ed.beginRide(&Ride{Trip: trip, ServiceDay: sd, StartPos: pos}, c)
			if !yield(ed.makeState()) {
				return
			}
		}
	}
}

// selectTrip picks the trip to board on service day sd: the constrained
// search decides when it has an opinion, otherwise the earliest (forward) or
// latest (arrive-by) trip at pos respecting the minimum transfer time. Trips
// of a pattern may overtake each other, so the whole timetable is scanned.
func selectTrip(s *State, p *transit.TripPattern, pos int, search *constrained.Search, sd int64) (*transit.TripSchedule, int, transfer.Constraint, bool) {
	local := int(s.Time() - sd)
	tt := p.Timetable()
	last := s.LastRide()
	transferring := s.NumBoardings() > 0 && last != nil

	if transferring && search != nil && search.TransferExist(pos) {
		if b, ok := search.FindAt(tt, last.Trip, last.StopIndex, pos, local); ok {
			if !b.Boardable() {
				return nil, 0, b.Constraint, false
			}
			return b.Trip, b.Time, b.Constraint, true
		}
	}

	if !s.ArriveBy() {
		earliest := local
		if transferring {
			earliest += p.MinTransferTime
		}
		var best *transit.TripSchedule
		for i := 0; i < tt.NumTrips(); i++ {
			trip := tt.TripSchedule(i)
			if dep := trip.Departure(pos); dep >= earliest && (best == nil || dep < best.Departure(pos)) {
				best = trip
			}
		}
		if best == nil {
			return nil, 0, transfer.Regular, false
		}
		return best, best.Departure(pos), transfer.Regular, true
	}

	latest := local
	if transferring {
		latest -= last.Trip.Pattern().MinTransferTime
	}
	var best *transit.TripSchedule
	for i := tt.NumTrips() - 1; i >= 0; i-- {
		trip := tt.TripSchedule(i)
		if arr := trip.Arrival(pos); arr <= latest && (best == nil || arr > best.Arrival(pos)) {
			best = trip
		}
	}
	if best == nil {
		return nil, 0, transfer.Regular, false
	}
	return best, best.Arrival(pos), transfer.Regular, true
}

// endRide leaves the current trip at pos. A ride cannot end where it began.
func endRide(e Edge, s *State, v *Vertex, p *transit.TripPattern, pos int) iter.Seq[*State] {
	r := s.Ride()
	if r == nil || r.Trip.Pattern() != p || r.StartPos == pos {
		return none
	}
	ed := s.edit(e)
	ed.setVertex(v)
	ed.endRide(p.Stop(pos).Index)
	return single(ed.makeState())
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
