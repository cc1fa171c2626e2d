package transit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
)

var (
	// ErrTripShape is returned when a schedule does not match its pattern
	ErrTripShape = errors.New("trip times do not match pattern length")
	// ErrNonIncreasingTimes is returned when times go backwards along a trip
	ErrNonIncreasingTimes = errors.New("trip times decrease along the trip")
)

// TripSchedule holds the times of one trip along its pattern
type TripSchedule struct {
	trip       *Trip
	pattern    *TripPattern
	arrivals   []int
	departures []int
}

func (s *TripSchedule) Trip() *Trip { return s.trip }

func (s *TripSchedule) Pattern() *TripPattern { return s.pattern }

func (s *TripSchedule) Arrival(stopPos int) int { return s.arrivals[stopPos] }

func (s *TripSchedule) Departure(stopPos int) int { return s.departures[stopPos] }

// StopIndex returns the stop index served at stopPos
func (s *TripSchedule) StopIndex(stopPos int) int { return s.pattern.stops[stopPos].Index }

func (s *TripSchedule) String() string {
	return fmt.Sprintf("%s[%s]", s.trip.ID, internal.FormatGTFSTime(s.departures[0]))
}

// Timetable lists the trips of a pattern sorted by first departure
type Timetable struct {
	pattern *TripPattern
	trips   []*TripSchedule
}

func (t *Timetable) Pattern() *TripPattern { return t.pattern }

func (t *Timetable) NumTrips() int { return len(t.trips) }

func (t *Timetable) TripSchedule(i int) *TripSchedule { return t.trips[i] }

// IndexOf returns the position of trip in the timetable, or -1
func (t *Timetable) IndexOf(trip *Trip) int {
	for i, s := range t.trips {
		if s.trip == trip {
			return i
		}
	}
	return -1
}

// TripPattern is a stop sequence shared by one or more trips of a route
type TripPattern struct {
	Index           int
	ID              string
	Route           *Route
	MinTransferTime int // seconds required for a regular transfer onto this pattern

	stops     []*Stop
	noPickup  []bool // nil when every position allows boarding
	noDropOff []bool
	timetable *Timetable
}

func (p *TripPattern) NumStops() int { return len(p.stops) }

func (p *TripPattern) Stop(stopPos int) *Stop { return p.stops[stopPos] }

func (p *TripPattern) Stops() []*Stop { return p.stops }

func (p *TripPattern) Timetable() *Timetable { return p.timetable }

func (p *TripPattern) String() string { return p.ID }

// StopPositions returns every position in the pattern serving stop
func (p *TripPattern) StopPositions(stop *Stop) []int {
	var out []int
	for i, s := range p.stops {
		if s == stop {
			out = append(out, i)
		}
	}
	return out
}

// CanBoard reports whether boarding at stopPos is possible: not the last
// stop, and pickup is not disabled there.
func (p *TripPattern) CanBoard(stopPos int) bool {
	if stopPos < 0 || stopPos >= len(p.stops)-1 {
		return false
	}
	return p.noPickup == nil || !p.noPickup[stopPos]
}

// CanAlight reports whether alighting at stopPos is possible: not the first
// stop, and drop-off is not disabled there.
func (p *TripPattern) CanAlight(stopPos int) bool {
	if stopPos <= 0 || stopPos >= len(p.stops) {
		return false
	}
	return p.noDropOff == nil || !p.noDropOff[stopPos]
}

// SetStopRules disables pickup or drop-off per stop position. Either slice
// may be nil; otherwise it must have one entry per stop.
func (p *TripPattern) SetStopRules(noPickup, noDropOff []bool) {
	if noPickup != nil && len(noPickup) == len(p.stops) {
		p.noPickup = append([]bool(nil), noPickup...)
	}
	if noDropOff != nil && len(noDropOff) == len(p.stops) {
		p.noDropOff = append([]bool(nil), noDropOff...)
	}
}

func (p *TripPattern) addTrip(trip *Trip, arrivals, departures []int) (*TripSchedule, error) {
	if len(arrivals) != len(p.stops) || len(departures) != len(p.stops) {
		return nil, fmt.Errorf("%w: trip %s has %d/%d times for %d stops",
			ErrTripShape, trip.ID, len(arrivals), len(departures), len(p.stops))
	}
	if err := checkTimes(arrivals, departures); err != nil {
		return nil, fmt.Errorf("trip %s: %w", trip.ID, err)
	}
	s := &TripSchedule{
		trip:       trip,
		pattern:    p,
		arrivals:   append([]int(nil), arrivals...),
		departures: append([]int(nil), departures...),
	}
	p.timetable.trips = append(p.timetable.trips, s)
	return s, nil
}

func (p *TripPattern) sortTrips() {
	sort.SliceStable(p.timetable.trips, func(i, j int) bool {
		return p.timetable.trips[i].departures[0] < p.timetable.trips[j].departures[0]
	})
}

func checkTimes(arrivals, departures []int) error {
	prev := -1 << 31
	for i := range arrivals {
		if arrivals[i] < prev || departures[i] < arrivals[i] {
			return ErrNonIncreasingTimes
		}
		prev = departures[i]
	}
	return nil
}
