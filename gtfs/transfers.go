package gtfs

import (
	"fmt"
	"log/slog"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// transfers.txt transfer_type codes
const (
	TransferRecommended = 0
	TransferGuaranteed  = 1
	TransferMinTime     = 2
	TransferForbidden   = 3
)

// TransferMapper turns transfers.txt records into constrained transfers.
// It is stateful and not safe for concurrent use.
type TransferMapper struct {
	data     *transit.Data
	stops    map[string]StopRecord
	logger   *slog.Logger
	throttle *internal.ThrottleLogger
}

func NewTransferMapper(feed *Feed, data *transit.Data, logger *slog.Logger) *TransferMapper {
	logger = internal.OrDefault(logger)
	stops := make(map[string]StopRecord, len(feed.Stops))
	for _, s := range feed.Stops {
		stops[s.ID] = s
	}
	return &TransferMapper{
		data:     data,
		stops:    stops,
		logger:   logger,
		throttle: internal.NewThrottleLogger(logger, 0),
	}
}

// PriorityForType maps a transfer_type code. ok is false for unknown codes.
func PriorityForType(code int) (transfer.Priority, bool) {
	switch code {
	case TransferForbidden:
		return transfer.NotAllowed, true
	case TransferGuaranteed, TransferMinTime:
		return transfer.Allowed, true
	case TransferRecommended:
		return transfer.Recommended, true
	}
	return 0, false
}

// Map converts records, dropping the ones that cannot be mapped or that
// would not change routing. Ids are assigned from the record position.
func (m *TransferMapper) Map(records []TransferRecord) []transfer.ConstrainedTransfer {
	var out []transfer.ConstrainedTransfer
	for i, rec := range records {
		t, ok := m.mapOne(rec)
		if !ok {
			continue
		}
		t.ID = fmt.Sprintf("gtfs-%06d", i+1)
		out = append(out, t)
	}
	return out
}

func (m *TransferMapper) mapOne(rec TransferRecord) (transfer.ConstrainedTransfer, bool) {
	priority, ok := PriorityForType(rec.TransferType)
	if !ok {
		m.logger.Warn("Transfer skipped - unknown transfer_type", "record", rec)
		return transfer.ConstrainedTransfer{}, false
	}
	var fromTrip, toTrip *transit.Trip
	if rec.FromTripID != "" {
		if fromTrip = m.data.TripByID(rec.FromTripID); fromTrip == nil {
			m.logger.Warn("Transfer skipped - unknown from_trip_id", "record", rec)
			return transfer.ConstrainedTransfer{}, false
		}
	}
	if rec.ToTripID != "" {
		if toTrip = m.data.TripByID(rec.ToTripID); toTrip == nil {
			m.logger.Warn("Transfer skipped - unknown to_trip_id", "record", rec)
			return transfer.ConstrainedTransfer{}, false
		}
	}
	constraint := transfer.Constraint{
		Priority:   priority,
		Guaranteed: rec.TransferType == TransferGuaranteed,
		StaySeated: sameBlockID(fromTrip, toTrip),
	}
	// Regular transfers do not change routing
	if constraint.IsRegularTransfer() {
		if rec.MinTransferTime > 0 {
			m.logger.Info("Transfer skipped - min_transfer_time is not supported", "record", rec)
		} else {
			m.logger.Warn("Transfer skipped - no effect on routing", "record", rec)
		}
		return transfer.ConstrainedTransfer{}, false
	}

	from, ok := m.mapPoint(rec.FromStopID, rec.FromRouteID, fromTrip, false, rec)
	if !ok {
		return transfer.ConstrainedTransfer{}, false
	}
	to, ok := m.mapPoint(rec.ToStopID, rec.ToRouteID, toTrip, true, rec)
	if !ok {
		return transfer.ConstrainedTransfer{}, false
	}
	return transfer.ConstrainedTransfer{From: from, To: to, Constraint: constraint}, true
}

// mapPoint resolves one end. A stop id with location_type 0 is a stop,
// anything else is a station whose child stops all match.
func (m *TransferMapper) mapPoint(stopID, routeID string, trip *transit.Trip, board bool, rec TransferRecord) (transfer.Point, bool) {
	var stop *transit.Stop
	var station *transit.Station
	if sr, ok := m.stops[stopID]; ok && sr.LocationType == LocationStop {
		stop = m.data.StopByID(stopID)
	} else if ok {
		station = m.data.StationByID(stopID)
	}
	if stop == nil && station == nil {
		m.logger.Warn("Transfer skipped - unknown stop", "stop_id", stopID, "record", rec)
		return transfer.Point{}, false
	}

	switch {
	case trip != nil:
		pos := m.tripStopPosition(trip, stop, station, board)
		if pos < 0 {
			m.logger.Warn("Transfer skipped - stop not served by trip", "trip_id", trip.ID, "stop_id", stopID)
			return transfer.Point{}, false
		}
		return transfer.NewTripPoint(trip, pos), true
	case routeID != "":
		route := m.data.RouteByID(routeID)
		if route == nil {
			m.logger.Warn("Transfer skipped - unknown route", "route_id", routeID, "record", rec)
			return transfer.Point{}, false
		}
		pos := m.routeStopPosition(route, stop, station, board)
		if pos < 0 {
			m.throttle.Error("A route transfer point is only supported when the stop has the same position in every trip of the route",
				"route_id", route.ID, "stop_id", stopID)
			return transfer.Point{}, false
		}
		return transfer.NewRoutePoint(route, pos), true
	case stop != nil:
		return transfer.NewStopPoint(stop), true
	default:
		return transfer.NewStationPoint(station), true
	}
}

// routeStopPosition returns the position shared by every trip of route, or
// -1 if they disagree or the route has no trips.
func (m *TransferMapper) routeStopPosition(route *transit.Route, stop *transit.Stop, station *transit.Station, board bool) int {
	trips := m.data.TripsForRoute(route)
	if len(trips) == 0 {
		return -1
	}
	pos := m.tripStopPosition(trips[0], stop, station, board)
	for _, t := range trips[1:] {
		if m.tripStopPosition(t, stop, station, board) != pos {
			return -1
		}
	}
	return pos
}

// tripStopPosition finds the first position of the trip's pattern where the
// stop (or a stop of the station) can be boarded, or alighted when board is
// false.
func (m *TransferMapper) tripStopPosition(trip *transit.Trip, stop *transit.Stop, station *transit.Station, board bool) int {
	p := m.data.PatternForTrip(trip)
	if p == nil {
		return -1
	}
	for pos, s := range p.Stops() {
		if board && !p.CanBoard(pos) || !board && !p.CanAlight(pos) {
			continue
		}
		if station != nil && s.Station == station || station == nil && s == stop {
			return pos
		}
	}
	return -1
}

func sameBlockID(a, b *transit.Trip) bool {
	if a == nil || b == nil {
		return false
	}
	return a.BlockID != "" && a.BlockID == b.BlockID
}
