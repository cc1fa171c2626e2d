package constrained

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Boarding is the outcome of a constrained boarding search. A boarding with a
// NOT_ALLOWED constraint, or with no trip, must be rejected by the caller.
type Boarding struct {
	TripIndex             int // index in the target timetable, -1 if no trip qualifies
	Trip                  *transit.TripSchedule
	StopPositionInPattern int
	BoardStopIndex        int
	Time                  int // departure (forward) or arrival (reverse) of Trip at the stop
	Constraint            transfer.Constraint
}

// Found reports whether a trip was selected
func (b Boarding) Found() bool { return b.TripIndex >= 0 && b.Trip != nil }

// Boardable reports whether the caller may board Trip
func (b Boarding) Boardable() bool { return b.Found() && !b.Constraint.IsNotAllowed() }

func (b Boarding) String() string {
	if !b.Found() {
		return fmt.Sprintf("Boarding{none, stop: %d %s}", b.BoardStopIndex, b.Constraint)
	}
	return fmt.Sprintf("Boarding{trip: %s #%d, stopPos: %d, stop: %d, time: %d %s}",
		b.Trip.Trip().ID, b.TripIndex, b.StopPositionInPattern, b.BoardStopIndex, b.Time, b.Constraint)
}

func noBoarding(stopPos, stopIndex int) Boarding {
	return Boarding{TripIndex: -1, StopPositionInPattern: stopPos, BoardStopIndex: stopIndex, Constraint: transfer.Regular}
}
