package transit

import (
	"fmt"
	"strings"
)

// Mode is the transport mode of a route
type Mode int

const (
	ModeBus Mode = iota
	ModeTram
	ModeSubway
	ModeRail
	ModeFerry
)

var modeNames = map[Mode]string{
	ModeBus:    "BUS",
	ModeTram:   "TRAM",
	ModeSubway: "SUBWAY",
	ModeRail:   "RAIL",
	ModeFerry:  "FERRY",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MODE(%d)", int(m))
}

// ParseMode maps a mode name (any case) to a Mode
func ParseMode(s string) (Mode, bool) {
	s = strings.ToUpper(s)
	for m, name := range modeNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}

// ModeFromRouteType maps a GTFS route_type (basic and extended) to a Mode
func ModeFromRouteType(routeType int) Mode {
	switch {
	case routeType == 0 || (routeType >= 900 && routeType < 1000):
		return ModeTram
	case routeType == 1 || (routeType >= 400 && routeType < 500):
		return ModeSubway
	case routeType == 2 || (routeType >= 100 && routeType < 200):
		return ModeRail
	case routeType == 4 || (routeType >= 1000 && routeType < 1100):
		return ModeFerry
	default:
		return ModeBus
	}
}

// Station groups stops (platforms, quays) under one parent
type Station struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Stop is a boarding location. Index is dense and unique within one Data.
type Stop struct {
	Index   int
	ID      string
	Name    string
	Lat     float64
	Lon     float64
	Station *Station
}

func (s *Stop) String() string { return s.ID }

// Route is a published line
type Route struct {
	ID        string
	ShortName string
	Mode      Mode
}

func (r *Route) String() string { return r.ID }

// Trip is one vehicle journey on a route
type Trip struct {
	ID       string
	Route    *Route
	BlockID  string
	Headsign string
}

func (t *Trip) String() string { return t.ID }
