package constrained

import (
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// TransferForPattern is one index entry: a constrained transfer seen from the
// pattern it boards. Source is the point at the other end of the transfer.
type TransferForPattern struct {
	Source     transfer.Point
	TargetTrip *transit.Trip // nil applies to every trip of the pattern
	Transfer   transfer.ConstrainedTransfer
}

func (t TransferForPattern) Constraint() transfer.Constraint { return t.Transfer.Constraint }

// AppliesToAllTargetTrips is true unless the entry is bound to one trip
func (t TransferForPattern) AppliesToAllTargetTrips() bool { return t.TargetTrip == nil }

func (t TransferForPattern) appliesToTarget(trip *transit.Trip) bool {
	return t.TargetTrip == nil || t.TargetTrip == trip
}

// matchesSource reports whether the source point applies to source at any
// position where its pattern serves stopIndex.
func (t TransferForPattern) matchesSource(source *transit.TripSchedule, stopIndex int) bool {
	p := source.Pattern()
	for pos := 0; pos < p.NumStops(); pos++ {
		stop := p.Stop(pos)
		if stop.Index == stopIndex && t.Source.Matches(source.Trip(), stop, pos) {
			return true
		}
	}
	return false
}

func (t TransferForPattern) String() string {
	target := "*"
	if t.TargetTrip != nil {
		target = t.TargetTrip.ID
	}
	return t.Source.String() + " -> " + target + " " + t.Transfer.Constraint.String()
}
