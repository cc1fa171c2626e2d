package transit

import (
	"errors"
	"fmt"
)

// TripTimesUpdate replaces the times of one trip, or cancels it
type TripTimesUpdate struct {
	TripID     string
	Arrivals   []int
	Departures []int
	Canceled   bool
}

// ApplyUpdates returns a new Data with updates applied. The receiver is not
// modified; stops, stations, routes and trips are shared, patterns and
// timetables are new. Invalid updates are skipped and reported in the joined
// error, which does not prevent the new Data from being returned.
func (d *Data) ApplyUpdates(updates []TripTimesUpdate) (*Data, error) {
	byTrip := make(map[*Trip]TripTimesUpdate, len(updates))
	var errs []error
	for _, u := range updates {
		trip := d.trips[u.TripID]
		if trip == nil || d.patternByTrip[trip] == nil {
			errs = append(errs, fmt.Errorf("update for unknown trip %s", u.TripID))
			continue
		}
		byTrip[trip] = u
	}

	out := &Data{
		stations:      d.stations,
		stops:         d.stops,
		stopByID:      d.stopByID,
		routes:        d.routes,
		trips:         d.trips,
		patternByTrip: make(map[*Trip]*TripPattern, len(d.patternByTrip)),
		stopPatterns:  make([][]PatternPosition, len(d.stopPatterns)),
	}
	for _, old := range d.patterns {
		p := out.AddPattern(old.ID, old.Route, old.stops, old.MinTransferTime)
		p.SetStopRules(old.noPickup, old.noDropOff)
		for _, s := range old.timetable.trips {
			arr, dep := s.arrivals, s.departures
			if u, ok := byTrip[s.trip]; ok {
				if u.Canceled {
					continue
				}
				arr, dep = u.Arrivals, u.Departures
			}
			if _, err := out.AddTripSchedule(p, s.trip, arr, dep); err != nil {
				errs = append(errs, err)
				// keep the scheduled times rather than losing the trip
				if _, err := out.AddTripSchedule(p, s.trip, s.arrivals, s.departures); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return out, errors.Join(errs...)
}
