// Package transittest provides small transit networks for tests.
package transittest

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// HM returns hh:mm as seconds since midnight
func HM(h, m int) int { return h*3600 + m*60 }

// Scenario is the two-route network used across the test suites:
//
//	                   A      B      C      D
//	Route R1
//	  - Trip R1-1:   10:00  10:10  10:20
//	  - Trip R1-2:   10:05  10:15  10:25
//	Route R2
//	  - Trip R2-1:          10:15  10:30  10:40
//	  - Trip R2-2:          10:20  10:35  10:45
//
// Every stop has its own parent station. Stops are about 1 km apart.
type Scenario struct {
	Data *transit.Data

	StopA, StopB, StopC, StopD             *transit.Stop
	StationA, StationB, StationC, StationD *transit.Station

	R1, R2 *transit.Route
	P1, P2 *transit.TripPattern

	R1Trip1, R1Trip2 *transit.Trip
	R2Trip1, R2Trip2 *transit.Trip
}

// TwoRoutes builds the scenario with the given regular minimum transfer time
// (seconds) on both patterns.
func TwoRoutes(minTransferTime int) *Scenario {
	d := transit.NewData()
	s := &Scenario{Data: d}

	s.StationA = d.AddStation("SA", "Station A", 59.90, 10.700)
	s.StationB = d.AddStation("SB", "Station B", 59.90, 10.718)
	s.StationC = d.AddStation("SC", "Station C", 59.90, 10.736)
	s.StationD = d.AddStation("SD", "Station D", 59.90, 10.754)
	s.StopA = d.AddStop("A", "Stop A", 59.90, 10.700, s.StationA)
	s.StopB = d.AddStop("B", "Stop B", 59.90, 10.718, s.StationB)
	s.StopC = d.AddStop("C", "Stop C", 59.90, 10.736, s.StationC)
	s.StopD = d.AddStop("D", "Stop D", 59.90, 10.754, s.StationD)

	s.R1 = d.AddRoute("R1", "1", transit.ModeRail)
	s.R2 = d.AddRoute("R2", "2", transit.ModeBus)
	s.P1 = d.AddPattern("R1:0", s.R1, []*transit.Stop{s.StopA, s.StopB, s.StopC}, minTransferTime)
	s.P2 = d.AddPattern("R2:0", s.R2, []*transit.Stop{s.StopB, s.StopC, s.StopD}, minTransferTime)

	s.R1Trip1 = d.AddTrip("R1-1", s.R1, "")
	s.R1Trip2 = d.AddTrip("R1-2", s.R1, "")
	s.R2Trip1 = d.AddTrip("R2-1", s.R2, "")
	s.R2Trip2 = d.AddTrip("R2-2", s.R2, "")

	must(d, s.P1, s.R1Trip1, HM(10, 0), HM(10, 10), HM(10, 20))
	must(d, s.P1, s.R1Trip2, HM(10, 5), HM(10, 15), HM(10, 25))
	must(d, s.P2, s.R2Trip1, HM(10, 15), HM(10, 30), HM(10, 40))
	must(d, s.P2, s.R2Trip2, HM(10, 20), HM(10, 35), HM(10, 45))
	return s
}

// StopPos returns the first position of stop in pattern, panicking if absent
func (s *Scenario) StopPos(p *transit.TripPattern, stop *transit.Stop) int {
	pos := p.StopPositions(stop)
	if len(pos) == 0 {
		panic(fmt.Sprintf("stop %s not in pattern %s", stop.ID, p.ID))
	}
	return pos[0]
}

// Schedule returns the schedule of trip
func (s *Scenario) Schedule(trip *transit.Trip) *transit.TripSchedule {
	return s.Data.TripSchedule(trip)
}

func must(d *transit.Data, p *transit.TripPattern, trip *transit.Trip, times ...int) {
	if _, err := d.AddTripSchedule(p, trip, times, times); err != nil {
		panic(err)
	}
}

// Overtaking is a network where the later trip of route X overtakes the
// earlier one before stop B:
//
//	                   A      E      B      D
//	Route F
//	  - Trip F-1:    10:00         10:08
//	Route X
//	  - Trip X-slow:        10:00  10:30  10:40
//	  - Trip X-fast:        10:05  10:10  10:20
type Overtaking struct {
	Data *transit.Data

	StopA, StopE, StopB, StopD *transit.Stop

	RF, RX *transit.Route
	PF, PX *transit.TripPattern

	Feeder     *transit.Trip
	Slow, Fast *transit.Trip
}

// NewOvertaking builds the overtaking network with no minimum transfer time
func NewOvertaking() *Overtaking {
	d := transit.NewData()
	o := &Overtaking{Data: d}

	o.StopA = d.AddStop("A", "Stop A", 59.90, 10.700, d.AddStation("SA", "Station A", 59.90, 10.700))
	o.StopE = d.AddStop("E", "Stop E", 59.91, 10.700, d.AddStation("SE", "Station E", 59.91, 10.700))
	o.StopB = d.AddStop("B", "Stop B", 59.90, 10.718, d.AddStation("SB", "Station B", 59.90, 10.718))
	o.StopD = d.AddStop("D", "Stop D", 59.90, 10.754, d.AddStation("SD", "Station D", 59.90, 10.754))

	o.RF = d.AddRoute("F", "F", transit.ModeBus)
	o.RX = d.AddRoute("X", "X", transit.ModeBus)
	o.PF = d.AddPattern("F:0", o.RF, []*transit.Stop{o.StopA, o.StopB}, 0)
	o.PX = d.AddPattern("X:0", o.RX, []*transit.Stop{o.StopE, o.StopB, o.StopD}, 0)

	o.Feeder = d.AddTrip("F-1", o.RF, "")
	o.Slow = d.AddTrip("X-slow", o.RX, "")
	o.Fast = d.AddTrip("X-fast", o.RX, "")

	must(d, o.PF, o.Feeder, HM(10, 0), HM(10, 8))
	must(d, o.PX, o.Slow, HM(10, 0), HM(10, 30), HM(10, 40))
	must(d, o.PX, o.Fast, HM(10, 5), HM(10, 10), HM(10, 20))
	return o
}
