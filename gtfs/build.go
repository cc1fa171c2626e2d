package gtfs

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// BuildOptions tune the mapping of a feed into the transit model
type BuildOptions struct {
	// MinTransferTime is the regular minimum transfer time of every pattern, in seconds
	MinTransferTime int
	Logger          *slog.Logger
}

// BuildStats counts what Build kept and dropped
type BuildStats struct {
	Stops        int
	Routes       int
	Patterns     int
	Trips        int
	DroppedTrips int
	Transfers    int
}

// Build maps feed into a transit model and its constrained transfers.
// Trips with unknown routes or stops, fewer than two stop times or
// decreasing times are logged and dropped.
func Build(feed *Feed, opts BuildOptions) (*transit.Data, []transfer.ConstrainedTransfer, BuildStats, error) {
	if feed == nil {
		return nil, nil, BuildStats{}, fmt.Errorf("gtfs: nil feed")
	}
	logger := internal.OrDefault(opts.Logger)
	b := &builder{
		feed:     feed,
		data:     transit.NewData(),
		logger:   logger,
		mtt:      opts.MinTransferTime,
		patterns: map[string]*transit.TripPattern{},
		perRoute: map[string]int{},
	}
	b.mapStops()
	b.mapRoutes()
	b.mapTrips()

	mapper := NewTransferMapper(feed, b.data, logger)
	transfers := mapper.Map(feed.Transfers)
	b.stats.Transfers = len(transfers)

	logger.Info("GTFS feed mapped",
		"stops", b.stats.Stops,
		"routes", b.stats.Routes,
		"patterns", b.stats.Patterns,
		"trips", b.stats.Trips,
		"dropped_trips", b.stats.DroppedTrips,
		"transfers", b.stats.Transfers)
	return b.data, transfers, b.stats, nil
}

type builder struct {
	feed     *Feed
	data     *transit.Data
	logger   *slog.Logger
	mtt      int
	patterns map[string]*transit.TripPattern
	perRoute map[string]int
	stats    BuildStats
}

func (b *builder) mapStops() {
	for _, s := range b.feed.Stops {
		if s.LocationType == LocationStation {
			b.data.AddStation(s.ID, s.Name, s.Lat, s.Lon)
		}
	}
	for _, s := range b.feed.Stops {
		if s.LocationType != LocationStop {
			continue
		}
		var station *transit.Station
		if s.ParentStation != "" {
			station = b.data.StationByID(s.ParentStation)
			if station == nil {
				b.logger.Warn("Unknown parent station", "stop_id", s.ID, "parent_station", s.ParentStation)
			}
		}
		b.data.AddStop(s.ID, s.Name, s.Lat, s.Lon, station)
		b.stats.Stops++
	}
}

func (b *builder) mapRoutes() {
	for _, r := range b.feed.Routes {
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		b.data.AddRoute(r.ID, name, transit.ModeFromRouteType(r.Type))
		b.stats.Routes++
	}
}

func (b *builder) mapTrips() {
	trips := slices.Clone(b.feed.Trips)
	slices.SortStableFunc(trips, func(x, y TripRecord) int { return strings.Compare(x.ID, y.ID) })
	for _, tr := range trips {
		if err := b.mapTrip(tr); err != nil {
			b.logger.Warn("Trip dropped", "trip_id", tr.ID, "error", err)
			b.stats.DroppedTrips++
		}
	}
}

func (b *builder) mapTrip(tr TripRecord) error {
	route := b.data.RouteByID(tr.RouteID)
	if route == nil {
		return fmt.Errorf("unknown route %q", tr.RouteID)
	}
	sts := b.feed.StopTimes[tr.ID]
	if len(sts) < 2 {
		return fmt.Errorf("trip has %d stop times", len(sts))
	}
	stops := make([]*transit.Stop, len(sts))
	noPickup := make([]bool, len(sts))
	noDropOff := make([]bool, len(sts))
	var key strings.Builder
	key.WriteString(route.ID)
	for i, st := range sts {
		stop := b.data.StopByID(st.StopID)
		if stop == nil {
			return fmt.Errorf("unknown stop %q", st.StopID)
		}
		stops[i] = stop
		noPickup[i] = st.PickupType == NoPickupDropOff
		noDropOff[i] = st.DropOffType == NoPickupDropOff
		key.WriteByte('|')
		key.WriteString(stop.ID)
		if noPickup[i] {
			key.WriteString("^p")
		}
		if noDropOff[i] {
			key.WriteString("^d")
		}
	}
	arrivals, departures, err := interpolateTimes(sts)
	if err != nil {
		return err
	}
	if err := increasing(arrivals, departures); err != nil {
		return err
	}

	p, ok := b.patterns[key.String()]
	if !ok {
		id := route.ID + ":" + strconv.Itoa(b.perRoute[route.ID])
		b.perRoute[route.ID]++
		p = b.data.AddPattern(id, route, stops, b.mtt)
		p.SetStopRules(noPickup, noDropOff)
		b.patterns[key.String()] = p
		b.stats.Patterns++
	}
	trip := b.data.AddTrip(tr.ID, route, tr.BlockID)
	trip.Headsign = tr.Headsign
	if _, err := b.data.AddTripSchedule(p, trip, arrivals, departures); err != nil {
		return err
	}
	b.stats.Trips++
	return nil
}

// interpolateTimes fills missing times. A stop with only one of arrival and
// departure uses it for both. Stops without any time are interpolated
// linearly by position between the surrounding timed stops. The first and
// last stop must be timed.
func interpolateTimes(sts []StopTimeRecord) ([]int, []int, error) {
	n := len(sts)
	arr := make([]int, n)
	dep := make([]int, n)
	for i, st := range sts {
		arr[i], dep[i] = st.Arrival, st.Departure
		switch {
		case arr[i] < 0 && dep[i] >= 0:
			arr[i] = dep[i]
		case dep[i] < 0 && arr[i] >= 0:
			dep[i] = arr[i]
		}
	}
	if arr[0] < 0 || arr[n-1] < 0 {
		return nil, nil, fmt.Errorf("first and last stop must be timed")
	}
	for i := 1; i < n-1; i++ {
		if arr[i] >= 0 {
			continue
		}
		next := i + 1
		for arr[next] < 0 {
			next++
		}
		prev := i - 1
		span := next - prev
		for j := i; j < next; j++ {
			t := dep[prev] + (arr[next]-dep[prev])*(j-prev)/span
			arr[j], dep[j] = t, t
		}
		i = next - 1
	}
	return arr, dep, nil
}

func increasing(arrivals, departures []int) error {
	prev := -1
	for i := range arrivals {
		if arrivals[i] < prev || departures[i] < arrivals[i] {
			return fmt.Errorf("%w at stop position %d", transit.ErrNonIncreasingTimes, i)
		}
		prev = departures[i]
	}
	return nil
}
