package transit

import (
	"fmt"
	"sort"
)

// PatternPosition is one stop position of one pattern
type PatternPosition struct {
	Pattern *TripPattern
	StopPos int
}

// Data owns the complete transit model of one graph generation
type Data struct {
	stations      map[string]*Station
	stops         []*Stop
	stopByID      map[string]*Stop
	routes        map[string]*Route
	trips         map[string]*Trip
	patterns      []*TripPattern
	patternByTrip map[*Trip]*TripPattern
	stopPatterns  [][]PatternPosition // stop index -> positions
}

// NewData creates an empty model
func NewData() *Data {
	return &Data{
		stations:      map[string]*Station{},
		stopByID:      map[string]*Stop{},
		routes:        map[string]*Route{},
		trips:         map[string]*Trip{},
		patternByTrip: map[*Trip]*TripPattern{},
	}
}

// AddStation registers a station, replacing any station with the same id
func (d *Data) AddStation(id, name string, lat, lon float64) *Station {
	s := &Station{ID: id, Name: name, Lat: lat, Lon: lon}
	d.stations[id] = s
	return s
}

// AddStop registers a stop and assigns its dense index
func (d *Data) AddStop(id, name string, lat, lon float64, station *Station) *Stop {
	if s, ok := d.stopByID[id]; ok {
		return s
	}
	s := &Stop{Index: len(d.stops), ID: id, Name: name, Lat: lat, Lon: lon, Station: station}
	d.stops = append(d.stops, s)
	d.stopByID[id] = s
	d.stopPatterns = append(d.stopPatterns, nil)
	return s
}

// AddRoute registers a route
func (d *Data) AddRoute(id, shortName string, mode Mode) *Route {
	if r, ok := d.routes[id]; ok {
		return r
	}
	r := &Route{ID: id, ShortName: shortName, Mode: mode}
	d.routes[id] = r
	return r
}

// AddTrip registers a trip on route
func (d *Data) AddTrip(id string, route *Route, blockID string) *Trip {
	if t, ok := d.trips[id]; ok {
		return t
	}
	t := &Trip{ID: id, Route: route, BlockID: blockID}
	d.trips[id] = t
	return t
}

// AddPattern registers a new pattern serving stops in order
func (d *Data) AddPattern(id string, route *Route, stops []*Stop, minTransferTime int) *TripPattern {
	p := &TripPattern{
		Index:           len(d.patterns),
		ID:              id,
		Route:           route,
		MinTransferTime: minTransferTime,
		stops:           append([]*Stop(nil), stops...),
	}
	p.timetable = &Timetable{pattern: p}
	d.patterns = append(d.patterns, p)
	for pos, s := range p.stops {
		d.stopPatterns[s.Index] = append(d.stopPatterns[s.Index], PatternPosition{Pattern: p, StopPos: pos})
	}
	return p
}

// AddTripSchedule adds trip with its times to pattern, keeping the
// timetable sorted by first departure.
func (d *Data) AddTripSchedule(p *TripPattern, trip *Trip, arrivals, departures []int) (*TripSchedule, error) {
	if other, ok := d.patternByTrip[trip]; ok {
		return nil, fmt.Errorf("trip %s already belongs to pattern %s", trip.ID, other.ID)
	}
	s, err := p.addTrip(trip, arrivals, departures)
	if err != nil {
		return nil, err
	}
	p.sortTrips()
	d.patternByTrip[trip] = p
	return s, nil
}

func (d *Data) NumStops() int { return len(d.stops) }

func (d *Data) Stop(index int) *Stop { return d.stops[index] }

func (d *Data) Stops() []*Stop { return d.stops }

func (d *Data) StopByID(id string) *Stop { return d.stopByID[id] }

func (d *Data) StationByID(id string) *Station { return d.stations[id] }

func (d *Data) RouteByID(id string) *Route { return d.routes[id] }

func (d *Data) TripByID(id string) *Trip { return d.trips[id] }

func (d *Data) Patterns() []*TripPattern { return d.patterns }

func (d *Data) PatternForTrip(trip *Trip) *TripPattern { return d.patternByTrip[trip] }

// StopsOfStation returns the stops whose parent is station, ordered by index
func (d *Data) StopsOfStation(station *Station) []*Stop {
	var out []*Stop
	for _, s := range d.stops {
		if s.Station == station {
			out = append(out, s)
		}
	}
	return out
}

// PatternPositions returns every (pattern, position) serving stop
func (d *Data) PatternPositions(stop *Stop) []PatternPosition {
	if stop == nil || stop.Index >= len(d.stopPatterns) {
		return nil
	}
	return d.stopPatterns[stop.Index]
}

// PatternsForRoute returns the patterns of route ordered by index
func (d *Data) PatternsForRoute(route *Route) []*TripPattern {
	var out []*TripPattern
	for _, p := range d.patterns {
		if p.Route == route {
			out = append(out, p)
		}
	}
	return out
}

// TripsForRoute returns the trips of route sorted by id
func (d *Data) TripsForRoute(route *Route) []*Trip {
	var out []*Trip
	for _, t := range d.trips {
		if t.Route == route {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TripSchedule returns the schedule of trip, or nil
func (d *Data) TripSchedule(trip *Trip) *TripSchedule {
	p := d.patternByTrip[trip]
	if p == nil {
		return nil
	}
	if i := p.timetable.IndexOf(trip); i >= 0 {
		return p.timetable.trips[i]
	}
	return nil
}
