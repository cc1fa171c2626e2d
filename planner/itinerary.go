package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/routing"
	"github.com/theoremus-urban-solutions/tripsearch/search"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
)

// LegMode of walking legs; transit legs carry the route mode
const LegModeWalk = "WALK"

// Leg is one walk or one ride of an itinerary
type Leg struct {
	Mode      string
	From      string // stop id or vertex label
	To        string
	StartTime time.Time
	EndTime   time.Time

	// Walking legs
	Distance float64

	// Transit legs
	RouteID  string
	Route    string // short name
	TripID   string
	Headsign string
	// Constraint of the transfer that led onto this ride. The first ride is
	// always a regular boarding.
	Constraint transfer.Constraint
}

func (l Leg) IsTransit() bool { return l.Mode != LegModeWalk }

func (l Leg) Duration() time.Duration { return l.EndTime.Sub(l.StartTime) }

// Itinerary is the assembled result of one plan request
type Itinerary struct {
	RequestID  string
	Generation uint64
	Found      bool
	Truncated  bool
	Expanded   int

	StartTime    time.Time
	EndTime      time.Time
	Weight       float64
	Transfers    int
	WalkDistance float64
	Legs         []Leg
}

func (it *Itinerary) Duration() time.Duration { return it.EndTime.Sub(it.StartTime) }

// assemble turns the best path of res into legs
func assemble(res *search.Result) *Itinerary {
	it := &Itinerary{Truncated: res.Truncated, Expanded: res.Expanded}
	path := res.Path()
	if path == nil {
		return it
	}
	it.Found = true
	it.StartTime = time.Unix(path.StartTime(), 0)
	it.EndTime = time.Unix(path.EndTime(), 0)
	it.Weight = path.Weight()
	it.WalkDistance = path.WalkDistance()
	if n := path.NumBoardings(); n > 0 {
		it.Transfers = n - 1
	}

	arriveBy := res.ArriveBy
	// arrive-by searches record a transfer constraint on the ride before the
	// transfer; carry it over to the next ride
	pending := transfer.Regular
	var walk *Leg
	var ride *Leg
	states := path.States
	for i, e := range path.Edges {
		before, after := states[i], states[i+1]
		switch edge := e.(type) {
		case *routing.StreetEdge:
			if walk == nil {
				walk = &Leg{
					Mode:      LegModeWalk,
					From:      vertexName(edge.From()),
					StartTime: time.Unix(before.Time(), 0),
				}
			}
			walk.To = vertexName(edge.To())
			walk.EndTime = time.Unix(after.Time(), 0)
			walk.Distance += edge.Length
		case *routing.BoardEdge:
			if walk != nil {
				it.Legs = append(it.Legs, *walk)
				walk = nil
			}
			r := after.Ride()
			if r == nil {
				continue
			}
			trip := r.Trip.Trip()
			ride = &Leg{
				Mode:      trip.Route.Mode.String(),
				From:      vertexName(edge.From()),
				StartTime: time.Unix(after.Time(), 0),
				RouteID:   trip.Route.ID,
				Route:     trip.Route.ShortName,
				TripID:    trip.ID,
				Headsign:  trip.Headsign,
			}
			if arriveBy {
				ride.Constraint = pending
			} else {
				ride.Constraint = after.Constraint()
			}
		case *routing.AlightEdge:
			if ride == nil {
				continue
			}
			ride.To = vertexName(edge.To())
			ride.EndTime = time.Unix(before.Time(), 0)
			if arriveBy {
				pending = before.Constraint()
			}
			it.Legs = append(it.Legs, *ride)
			ride = nil
		}
	}
	if walk != nil {
		it.Legs = append(it.Legs, *walk)
	}
	return it
}

func vertexName(v *routing.Vertex) string {
	if v.Stop != nil {
		return v.Stop.ID
	}
	return v.Label
}

// Format renders the itinerary as text with times in loc
func (it *Itinerary) Format(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	if !it.Found {
		b.WriteString("no itinerary found")
		if it.Truncated {
			b.WriteString(" (search truncated)")
		}
		b.WriteString("\n")
		return b.String()
	}
	clock := func(t time.Time) string { return t.In(loc).Format("15:04:05") }
	fmt.Fprintf(&b, "%s -> %s  duration %s  transfers %d  walk %.0fm  weight %.0f\n",
		clock(it.StartTime), clock(it.EndTime), it.Duration(), it.Transfers, it.WalkDistance, it.Weight)
	for _, l := range it.Legs {
		if !l.IsTransit() {
			fmt.Fprintf(&b, "  %s-%s  WALK %s -> %s (%.0fm)\n",
				clock(l.StartTime), clock(l.EndTime), l.From, l.To, l.Distance)
			continue
		}
		fmt.Fprintf(&b, "  %s-%s  %s %s trip %s %s -> %s",
			clock(l.StartTime), clock(l.EndTime), l.Mode, l.Route, l.TripID, l.From, l.To)
		if !l.Constraint.IsRegularTransfer() {
			fmt.Fprintf(&b, " %s", l.Constraint)
		}
		b.WriteString("\n")
	}
	if it.Truncated {
		b.WriteString("  (search truncated, result may not be optimal)\n")
	}
	return b.String()
}
