package constrained

import (
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Search finds constrained boardings onto one pattern in one direction
type Search struct {
	pattern   *transit.TripPattern
	forward   bool
	transfers [][]TransferForPattern // by stop position, most specific first
}

func newSearch(p *transit.TripPattern, forward bool) *Search {
	return &Search{pattern: p, forward: forward, transfers: make([][]TransferForPattern, p.NumStops())}
}

// Pattern is the pattern boarded by this search
func (s *Search) Pattern() *transit.TripPattern { return s.pattern }

// Forward is true for the boarding search, false for the reverse one
func (s *Search) Forward() bool { return s.forward }

// TransferExist reports whether any constrained transfer touches stopPos
func (s *Search) TransferExist(stopPos int) bool {
	return stopPos >= 0 && stopPos < len(s.transfers) && len(s.transfers[stopPos]) > 0
}

// Transfers returns the entries at stopPos, most specific first
func (s *Search) Transfers(stopPos int) []TransferForPattern {
	if stopPos < 0 || stopPos >= len(s.transfers) {
		return nil
	}
	return s.transfers[stopPos]
}

// Find resolves the stop position of stopIndex in the pattern and calls
// FindAt. Forward searches use the first matching position, reverse searches
// the last.
func (s *Search) Find(timetable *transit.Timetable, source *transit.TripSchedule, stopIndex, sourceTime int) (Boarding, bool) {
	n := s.pattern.NumStops()
	for i := 0; i < n; i++ {
		pos := i
		if !s.forward {
			pos = n - 1 - i
		}
		if s.pattern.Stop(pos).Index == stopIndex && s.TransferExist(pos) {
			return s.FindAt(timetable, source, stopIndex, pos, sourceTime)
		}
	}
	return Boarding{}, false
}

// FindAt searches timetable for the trip to board at stopPos coming from the
// source trip at stopIndex at sourceTime (seconds since service-day
// midnight). It returns false when no constrained transfer applies to the
// source; the caller then uses the regular transfer rule. Otherwise the
// returned Boarding is authoritative: Boardable reports whether it may be
// used.
func (s *Search) FindAt(timetable *transit.Timetable, source *transit.TripSchedule, stopIndex, stopPos, sourceTime int) (Boarding, bool) {
	if !s.TransferExist(stopPos) || source == nil {
		return Boarding{}, false
	}
	var list []TransferForPattern
	for _, tx := range s.transfers[stopPos] {
		if tx.matchesSource(source, stopIndex) {
			list = append(list, tx)
		}
	}
	if len(list) == 0 {
		return Boarding{}, false
	}
	if s.forward {
		return s.findForward(timetable, list, stopIndex, stopPos, sourceTime), true
	}
	return s.findReverse(timetable, source, list, stopIndex, stopPos, sourceTime), true
}

// findForward boards the trip departing earliest at stopPos. A trip blocked
// by a NOT_ALLOWED record for all target trips does not end the scan; its
// boarding is returned only when no other trip qualifies.
func (s *Search) findForward(tt *transit.Timetable, list []TransferForPattern, stopIndex, stopPos, sourceTime int) Boarding {
	minTransferTime := tt.Pattern().MinTransferTime
	best, blocked := -1, -1
	var bestC, blockedC transfer.Constraint
	for i := 0; i < tt.NumTrips(); i++ {
		dep := tt.TripSchedule(i).Departure(stopPos)
		if dep < sourceTime {
			continue
		}
		c, decide := evaluate(list, tt.TripSchedule(i).Trip())
		switch {
		case decide == reject:
			if blocked < 0 || dep < tt.TripSchedule(blocked).Departure(stopPos) {
				blocked, blockedC = i, c
			}
			continue
		case decide == skip:
			continue
		case !c.IsFacilitated() && dep < sourceTime+minTransferTime:
			continue
		}
		if best < 0 || dep < tt.TripSchedule(best).Departure(stopPos) {
			best, bestC = i, c
		}
	}
	switch {
	case best >= 0:
		trip := tt.TripSchedule(best)
		return boarding(best, trip, stopPos, stopIndex, trip.Departure(stopPos), bestC)
	case blocked >= 0:
		trip := tt.TripSchedule(blocked)
		return boarding(blocked, trip, stopPos, stopIndex, trip.Departure(stopPos), blockedC)
	}
	return noBoarding(stopPos, stopIndex)
}

// findReverse is findForward backwards in time: the trip arriving latest at
// stopPos.
func (s *Search) findReverse(tt *transit.Timetable, source *transit.TripSchedule, list []TransferForPattern, stopIndex, stopPos, sourceTime int) Boarding {
	minTransferTime := source.Pattern().MinTransferTime
	best, blocked := -1, -1
	var bestC, blockedC transfer.Constraint
	for i := tt.NumTrips() - 1; i >= 0; i-- {
		arr := tt.TripSchedule(i).Arrival(stopPos)
		if arr > sourceTime {
			continue
		}
		c, decide := evaluate(list, tt.TripSchedule(i).Trip())
		switch {
		case decide == reject:
			if blocked < 0 || arr > tt.TripSchedule(blocked).Arrival(stopPos) {
				blocked, blockedC = i, c
			}
			continue
		case decide == skip:
			continue
		case !c.IsFacilitated() && arr > sourceTime-minTransferTime:
			continue
		}
		if best < 0 || arr > tt.TripSchedule(best).Arrival(stopPos) {
			best, bestC = i, c
		}
	}
	switch {
	case best >= 0:
		trip := tt.TripSchedule(best)
		return boarding(best, trip, stopPos, stopIndex, trip.Arrival(stopPos), bestC)
	case blocked >= 0:
		trip := tt.TripSchedule(blocked)
		return boarding(blocked, trip, stopPos, stopIndex, trip.Arrival(stopPos), blockedC)
	}
	return noBoarding(stopPos, stopIndex)
}

type decision int

const (
	accept decision = iota
	skip
	reject
)

// evaluate applies the first entry that applies to the target trip. With no
// applicable entry the transfer is regular. A NOT_ALLOWED entry for all
// target trips rejects the trip, one bound to the trip skips it; either way
// the caller keeps scanning.
func evaluate(list []TransferForPattern, target *transit.Trip) (transfer.Constraint, decision) {
	for _, tx := range list {
		if !tx.appliesToTarget(target) {
			continue
		}
		c := tx.Constraint()
		if c.IsNotAllowed() {
			if tx.AppliesToAllTargetTrips() {
				return c, reject
			}
			return c, skip
		}
		return c, accept
	}
	return transfer.Regular, accept
}

func boarding(i int, trip *transit.TripSchedule, stopPos, stopIndex, time int, c transfer.Constraint) Boarding {
	return Boarding{
		TripIndex:             i,
		Trip:                  trip,
		StopPositionInPattern: stopPos,
		BoardStopIndex:        stopIndex,
		Time:                  time,
		Constraint:            c,
	}
}
