package gtfsrt

import (
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// ParseFeed decodes a GTFS-RT FeedMessage
func ParseFeed(b []byte) (*gtfsrtpb.FeedMessage, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("decode gtfs-rt feed: %w", err)
	}
	return &fm, nil
}

// TripUpdates converts the trip updates of fm into new times for trips of
// data. Absolute times are read relative to the trip's start_date in loc,
// or to the day of the feed header timestamp when start_date is missing.
//
// Each stop time update is matched to a pattern position by stop_id,
// searching forward from the previous match, or else by stop_sequence read
// as a 1-based position. Its delay holds for every later position until the
// next update; earlier positions keep their schedule. Times are then made
// non-decreasing along the trip.
func TripUpdates(fm *gtfsrtpb.FeedMessage, data *transit.Data, loc *time.Location) ([]transit.TripTimesUpdate, UpdateStats) {
	var stats UpdateStats
	if fm == nil || data == nil {
		return nil, stats
	}
	if loc == nil {
		loc = time.UTC
	}
	headerDay := int64(-1)
	if ts := fm.GetHeader().GetTimestamp(); ts > 0 {
		headerDay = internal.ServiceDayMidnight(time.Unix(int64(ts), 0), loc)
	}

	var out []transit.TripTimesUpdate
	for _, e := range fm.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil || tu.GetTrip().GetTripId() == "" {
			continue
		}
		stats.Entities++
		td := tu.GetTrip()
		trip := data.TripByID(td.GetTripId())
		sched := data.TripSchedule(trip)
		if trip == nil || sched == nil {
			stats.UnknownTrips++
			continue
		}
		if td.GetScheduleRelationship() == gtfsrtpb.TripDescriptor_CANCELED {
			out = append(out, transit.TripTimesUpdate{TripID: trip.ID, Canceled: true})
			stats.Canceled++
			continue
		}

		midnight := headerDay
		if d := td.GetStartDate(); d != "" {
			if t, err := time.ParseInLocation("20060102", d, loc); err == nil {
				midnight = internal.ServiceDayMidnight(t, loc)
			}
		}
		u, matched := applyStopTimeUpdates(sched, tu.GetStopTimeUpdate(), midnight)
		if matched == 0 {
			stats.Skipped++
			continue
		}
		stats.StopUpdates += matched
		stats.Updated++
		out = append(out, u)
	}
	return out, stats
}

type stopDelay struct {
	pos       int
	arrival   int
	departure int
	noData    bool
}

func applyStopTimeUpdates(sched *transit.TripSchedule, stus []*gtfsrtpb.TripUpdate_StopTimeUpdate, midnight int64) (transit.TripTimesUpdate, int) {
	p := sched.Pattern()
	n := p.NumStops()

	var delays []stopDelay
	next := 0
	for _, stu := range stus {
		pos := matchPosition(p, stu, next)
		if pos < 0 {
			continue
		}
		d := stopDelay{pos: pos}
		if stu.GetScheduleRelationship() == gtfsrtpb.TripUpdate_StopTimeUpdate_NO_DATA {
			d.noData = true
		} else {
			arr, okArr := eventDelay(stu.GetArrival(), sched.Arrival(pos), midnight)
			dep, okDep := eventDelay(stu.GetDeparture(), sched.Departure(pos), midnight)
			switch {
			case okArr && okDep:
				d.arrival, d.departure = arr, dep
			case okArr:
				d.arrival, d.departure = arr, arr
			case okDep:
				d.arrival, d.departure = dep, dep
			default:
				continue
			}
		}
		delays = append(delays, d)
		next = pos + 1
	}
	if len(delays) == 0 {
		return transit.TripTimesUpdate{}, 0
	}

	arrivals := make([]int, n)
	departures := make([]int, n)
	cur := 0
	var arrDelay, depDelay int
	for pos := range n {
		if cur < len(delays) && delays[cur].pos == pos {
			arrDelay, depDelay = delays[cur].arrival, delays[cur].departure
			if delays[cur].noData {
				arrDelay, depDelay = 0, 0
			}
			cur++
		} else {
			// downstream stops inherit the departure delay
			arrDelay = depDelay
		}
		arrivals[pos] = sched.Arrival(pos) + arrDelay
		departures[pos] = sched.Departure(pos) + depDelay
	}
	for pos := range n {
		if pos > 0 && arrivals[pos] < departures[pos-1] {
			arrivals[pos] = departures[pos-1]
		}
		if departures[pos] < arrivals[pos] {
			departures[pos] = arrivals[pos]
		}
	}
	return transit.TripTimesUpdate{
		TripID:     sched.Trip().ID,
		Arrivals:   arrivals,
		Departures: departures,
	}, len(delays)
}

func matchPosition(p *transit.TripPattern, stu *gtfsrtpb.TripUpdate_StopTimeUpdate, from int) int {
	if id := stu.GetStopId(); id != "" {
		for pos := from; pos < p.NumStops(); pos++ {
			if p.Stop(pos).ID == id {
				return pos
			}
		}
		return -1
	}
	if stu.StopSequence != nil {
		pos := int(stu.GetStopSequence()) - 1
		if pos >= from && pos < p.NumStops() {
			return pos
		}
	}
	return -1
}

// eventDelay returns the delay in seconds of ev against the scheduled time.
// An explicit delay wins over an absolute time.
func eventDelay(ev *gtfsrtpb.TripUpdate_StopTimeEvent, scheduled int, midnight int64) (int, bool) {
	if ev == nil {
		return 0, false
	}
	if ev.Delay != nil {
		return int(ev.GetDelay()), true
	}
	if ev.Time != nil && midnight >= 0 {
		return int(ev.GetTime()-midnight) - scheduled, true
	}
	return 0, false
}
