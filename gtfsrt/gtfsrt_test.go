package gtfsrt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transit/transittest"
)

var hm = transittest.HM

func feed(entities ...*gtfsrtpb.FeedEntity) *gtfsrtpb.FeedMessage {
	return &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC).Unix())),
		},
		Entity: entities,
	}
}

func tripUpdate(tripID string, stus ...*gtfsrtpb.TripUpdate_StopTimeUpdate) *gtfsrtpb.FeedEntity {
	return &gtfsrtpb.FeedEntity{
		Id: proto.String("e-" + tripID),
		TripUpdate: &gtfsrtpb.TripUpdate{
			Trip:           &gtfsrtpb.TripDescriptor{TripId: proto.String(tripID)},
			StopTimeUpdate: stus,
		},
	}
}

func delayAt(stopID string, arrival, departure int32) *gtfsrtpb.TripUpdate_StopTimeUpdate {
	return &gtfsrtpb.TripUpdate_StopTimeUpdate{
		StopId:    proto.String(stopID),
		Arrival:   &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: proto.Int32(arrival)},
		Departure: &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: proto.Int32(departure)},
	}
}

// TestTripUpdates_DelayPropagation tests that a delay carries downstream and
// upstream stops keep their schedule.
func TestTripUpdates_DelayPropagation(t *testing.T) {
	s := transittest.TwoRoutes(60)
	updates, stats := TripUpdates(feed(tripUpdate("R1-1", delayAt("B", 120, 180))), s.Data, time.UTC)

	require.Len(t, updates, 1)
	u := updates[0]
	assert.Equal(t, "R1-1", u.TripID)
	assert.Equal(t, []int{hm(10, 0), hm(10, 12), hm(10, 23)}, u.Arrivals)
	assert.Equal(t, []int{hm(10, 0), hm(10, 13), hm(10, 23)}, u.Departures)
	assert.Equal(t, UpdateStats{Entities: 1, Updated: 1, StopUpdates: 1}, stats)
}

// TestTripUpdates_AbsoluteTime tests absolute event times against start_date
func TestTripUpdates_AbsoluteTime(t *testing.T) {
	s := transittest.TwoRoutes(60)
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	day := time.Date(2026, 1, 6, 0, 0, 0, 0, oslo)
	e := tripUpdate("R1-1", &gtfsrtpb.TripUpdate_StopTimeUpdate{
		StopId:  proto.String("C"),
		Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(day.Add(10*time.Hour + 25*time.Minute).Unix())},
	})
	e.TripUpdate.Trip.StartDate = proto.String("20260106")

	updates, _ := TripUpdates(feed(e), s.Data, oslo)
	require.Len(t, updates, 1)
	assert.Equal(t, []int{hm(10, 0), hm(10, 10), hm(10, 25)}, updates[0].Arrivals)
	assert.Equal(t, []int{hm(10, 0), hm(10, 10), hm(10, 25)}, updates[0].Departures)
}

// TestTripUpdates_StopSequence tests matching by 1-based stop_sequence
func TestTripUpdates_StopSequence(t *testing.T) {
	s := transittest.TwoRoutes(60)
	updates, _ := TripUpdates(feed(tripUpdate("R2-1", &gtfsrtpb.TripUpdate_StopTimeUpdate{
		StopSequence: proto.Uint32(2),
		Departure:    &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: proto.Int32(60)},
	})), s.Data, time.UTC)

	require.Len(t, updates, 1)
	assert.Equal(t, []int{hm(10, 15), hm(10, 31), hm(10, 41)}, updates[0].Arrivals)
}

// TestTripUpdates_Monotonic tests that early arrivals never overtake the
// previous departure.
func TestTripUpdates_Monotonic(t *testing.T) {
	s := transittest.TwoRoutes(60)
	updates, _ := TripUpdates(feed(tripUpdate("R1-1", delayAt("C", -900, -900))), s.Data, time.UTC)

	require.Len(t, updates, 1)
	assert.Equal(t, []int{hm(10, 0), hm(10, 10), hm(10, 10)}, updates[0].Arrivals)
	assert.Equal(t, []int{hm(10, 0), hm(10, 10), hm(10, 10)}, updates[0].Departures)
}

// TestTripUpdates_NoData tests that NO_DATA resets to the schedule
func TestTripUpdates_NoData(t *testing.T) {
	s := transittest.TwoRoutes(60)
	updates, stats := TripUpdates(feed(tripUpdate("R1-1",
		delayAt("B", 120, 120),
		&gtfsrtpb.TripUpdate_StopTimeUpdate{
			StopId:               proto.String("C"),
			ScheduleRelationship: gtfsrtpb.TripUpdate_StopTimeUpdate_NO_DATA.Enum(),
		},
	)), s.Data, time.UTC)

	require.Len(t, updates, 1)
	assert.Equal(t, []int{hm(10, 0), hm(10, 12), hm(10, 20)}, updates[0].Arrivals)
	assert.Equal(t, 2, stats.StopUpdates)
}

// TestTripUpdates_SkipsAndCancels tests the entities that produce no times
func TestTripUpdates_SkipsAndCancels(t *testing.T) {
	s := transittest.TwoRoutes(60)
	canceled := tripUpdate("R2-2")
	canceled.TripUpdate.Trip.ScheduleRelationship = gtfsrtpb.TripDescriptor_CANCELED.Enum()

	fm := feed(
		canceled,
		tripUpdate("NOPE", delayAt("B", 60, 60)),
		tripUpdate("R1-2", delayAt("X", 60, 60)),
		&gtfsrtpb.FeedEntity{Id: proto.String("vp")},
	)
	updates, stats := TripUpdates(fm, s.Data, time.UTC)

	require.Len(t, updates, 1)
	assert.True(t, updates[0].Canceled)
	assert.Equal(t, "R2-2", updates[0].TripID)
	assert.Equal(t, UpdateStats{Entities: 3, Canceled: 1, UnknownTrips: 1, Skipped: 1}, stats)
	assert.Equal(t, 1, stats.Total())

	next, err := s.Data.ApplyUpdates(updates)
	require.NoError(t, err)
	assert.Nil(t, next.TripSchedule(next.TripByID("R2-2")))
	assert.Equal(t, 1, next.PatternForTrip(s.R2Trip1).Timetable().NumTrips())
}

// TestTripUpdates_AppliedGeneration tests the round trip into a new Data
func TestTripUpdates_AppliedGeneration(t *testing.T) {
	s := transittest.TwoRoutes(60)
	updates, _ := TripUpdates(feed(tripUpdate("R1-1", delayAt("A", 600, 600))), s.Data, time.UTC)

	next, err := s.Data.ApplyUpdates(updates)
	require.NoError(t, err)
	assert.Equal(t, hm(10, 20), next.TripSchedule(s.R1Trip1).Arrival(1))
	assert.Equal(t, hm(10, 10), s.Data.TripSchedule(s.R1Trip1).Arrival(1), "old generation unchanged")
}

// TestParseFeed tests protobuf decoding
func TestParseFeed(t *testing.T) {
	b, err := proto.Marshal(feed(tripUpdate("R1-1", delayAt("B", 60, 60))))
	require.NoError(t, err)

	fm, err := ParseFeed(b)
	require.NoError(t, err)
	require.Len(t, fm.GetEntity(), 1)
	assert.Equal(t, "R1-1", fm.GetEntity()[0].GetTripUpdate().GetTrip().GetTripId())

	_, err = ParseFeed([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

// TestClient_Fetch tests file and HTTP sources
func TestClient_Fetch(t *testing.T) {
	b, err := proto.Marshal(feed(tripUpdate("R1-1", delayAt("B", 60, 60))))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trip-updates.pb")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tu" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	ctx := context.Background()

	fromFile, err := c.FetchFeed(ctx, path)
	require.NoError(t, err)
	fromHTTP, err := c.FetchFeed(ctx, srv.URL+"/tu")
	require.NoError(t, err)
	assert.True(t, proto.Equal(fromFile, fromHTTP))

	empty, err := c.FetchFeed(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = c.Fetch(ctx, srv.URL+"/down")
	assert.ErrorContains(t, err, "HTTP 503")
}

// TestPoller tests one poll and cancellation of the loop
func TestPoller(t *testing.T) {
	b, err := proto.Marshal(feed(tripUpdate("R1-1", delayAt("B", 60, 60))))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "trip-updates.pb")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	logger := internal.NewLogger(io.Discard, "error", "text")
	applied := make(chan *gtfsrtpb.FeedMessage, 8)
	p := NewPoller(NewClient(0), path, 10*time.Millisecond, func(_ context.Context, fm *gtfsrtpb.FeedMessage) error {
		select {
		case applied <- fm:
		default:
		}
		return nil
	}, logger)

	assert.True(t, p.PollOnce(context.Background()))
	<-applied

	failing := NewPoller(NewClient(0), path, 0, func(context.Context, *gtfsrtpb.FeedMessage) error {
		return errors.New("boom")
	}, logger)
	assert.False(t, failing.PollOnce(context.Background()))

	missing := NewPoller(NewClient(0), filepath.Join(t.TempDir(), "none.pb"), 0, nil, logger)
	assert.False(t, missing.PollOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	<-applied
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}
