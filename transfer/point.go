package transfer

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// Kind discriminates the Point variants. Its value is the specificity rank.
type Kind int

const (
	KindStation Kind = iota
	KindStop
	KindRoute
	KindTrip
)

func (k Kind) String() string {
	switch k {
	case KindStation:
		return "station"
	case KindStop:
		return "stop"
	case KindRoute:
		return "route"
	case KindTrip:
		return "trip"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Point is one end of a constrained transfer. The zero value is not valid;
// use the constructors.
type Point struct {
	kind    Kind
	station *transit.Station
	stop    *transit.Stop
	route   *transit.Route
	trip    *transit.Trip
	stopPos int
}

func NewStationPoint(station *transit.Station) Point {
	return Point{kind: KindStation, station: station, stopPos: -1}
}

func NewStopPoint(stop *transit.Stop) Point {
	return Point{kind: KindStop, stop: stop, stopPos: -1}
}

// NewRoutePoint refers to stopPos of every pattern of route. A negative
// position means it could not be resolved and the point is ambiguous.
func NewRoutePoint(route *transit.Route, stopPos int) Point {
	return Point{kind: KindRoute, route: route, stopPos: stopPos}
}

// NewTripPoint refers to stopPos in the pattern of trip
func NewTripPoint(trip *transit.Trip, stopPos int) Point {
	return Point{kind: KindTrip, trip: trip, stopPos: stopPos}
}

func (p Point) Kind() Kind { return p.kind }

// Specificity ranks the point: station 0, stop 1, route 2, trip 3
func (p Point) Specificity() int { return int(p.kind) }

func (p Point) Station() *transit.Station { return p.station }

func (p Point) Stop() *transit.Stop { return p.stop }

func (p Point) Route() *transit.Route { return p.route }

func (p Point) Trip() *transit.Trip { return p.trip }

// StopPos is the stop position of route and trip points, -1 otherwise
func (p Point) StopPos() int { return p.stopPos }

func (p Point) IsStation() bool { return p.kind == KindStation }

func (p Point) IsStop() bool { return p.kind == KindStop }

func (p Point) IsRoute() bool { return p.kind == KindRoute }

func (p Point) IsTrip() bool { return p.kind == KindTrip }

// Matches reports whether the point applies to the given trip leaving or
// entering stop at stopPos of its pattern.
func (p Point) Matches(trip *transit.Trip, stop *transit.Stop, stopPos int) bool {
	switch p.kind {
	case KindStation:
		return stop != nil && p.station != nil && stop.Station == p.station
	case KindStop:
		return stop == p.stop
	case KindRoute:
		return trip != nil && trip.Route == p.route && stopPos == p.stopPos
	case KindTrip:
		return trip == p.trip && stopPos == p.stopPos
	}
	return false
}

func (p Point) String() string {
	switch p.kind {
	case KindStation:
		return fmt.Sprintf("<Station %s>", p.station.ID)
	case KindStop:
		return fmt.Sprintf("<Stop %s>", p.stop.ID)
	case KindRoute:
		return fmt.Sprintf("<Route %s @stopPos:%d>", p.route.ID, p.stopPos)
	case KindTrip:
		return fmt.Sprintf("<Trip %s @stopPos:%d>", p.trip.ID, p.stopPos)
	}
	return "<invalid point>"
}
