package gtfs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/tripsearch/gtfs/gtfstest"
	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
	"github.com/theoremus-urban-solutions/tripsearch/transit/transittest"
)

var quiet = internal.NewLogger(io.Discard, "error", "text")

func loadFiles(t *testing.T, files map[string]string) *Feed {
	t.Helper()
	feed, err := LoadFeedFromBytes(gtfstest.Zip(files))
	require.NoError(t, err)
	return feed
}

func build(t *testing.T, files map[string]string) (*transit.Data, []transfer.ConstrainedTransfer, BuildStats) {
	t.Helper()
	data, transfers, stats, err := Build(loadFiles(t, files), BuildOptions{MinTransferTime: 60, Logger: quiet})
	require.NoError(t, err)
	return data, transfers, stats
}

// TestLoadFeed_ParsesTwoRoutes tests the CSV consumption of every file
func TestLoadFeed_ParsesTwoRoutes(t *testing.T) {
	feed := loadFiles(t, gtfstest.TwoRoutes("B,B,,,R1-1,R2-1,1,\n"))

	assert.Equal(t, "AG", feed.AgencyID)
	assert.Equal(t, "Europe/Oslo", feed.AgencyTimezone)
	assert.Len(t, feed.Stops, 8)
	assert.Len(t, feed.Routes, 2)
	assert.Len(t, feed.Trips, 4)
	assert.Len(t, feed.StopTimes, 4)
	require.Len(t, feed.Transfers, 1)

	st := feed.StopTimes["R2-1"]
	require.Len(t, st, 3)
	assert.Equal(t, "B", st[0].StopID)
	assert.Equal(t, transittest.HM(10, 15), st[0].Departure)

	tr := feed.Transfers[0]
	assert.Equal(t, "R1-1", tr.FromTripID)
	assert.Equal(t, TransferGuaranteed, tr.TransferType)
	assert.Equal(t, -1, tr.MinTransferTime)
	t.Logf("✓ Parsed %d stops, %d trips", len(feed.Stops), len(feed.Trips))
}

// TestLoadFeed_StopTimesOrderedBySequence tests that stop_times rows in any
// order end up sorted by stop_sequence, and that a UTF-8 BOM is ignored.
func TestLoadFeed_StopTimesOrderedBySequence(t *testing.T) {
	files := gtfstest.TwoRoutes("")
	files["stop_times.txt"] = "\ufefftrip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"R1-1,10:20:00,10:20:00,C,30\n" +
		"R1-1,10:00:00,10:00:00,A,10\n" +
		"R1-1,,,B,20\n"
	feed := loadFiles(t, files)

	st := feed.StopTimes["R1-1"]
	require.Len(t, st, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{st[0].StopID, st[1].StopID, st[2].StopID})
	assert.Equal(t, -1, st[1].Arrival)
	assert.Equal(t, -1, st[1].Departure)
}

// TestLoadFeed_MissingFile tests that required files are enforced
func TestLoadFeed_MissingFile(t *testing.T) {
	files := gtfstest.TwoRoutes("")
	delete(files, "stop_times.txt")

	_, err := LoadFeedFromBytes(gtfstest.Zip(files))
	require.ErrorIs(t, err, ErrMissingFile)
	assert.Contains(t, err.Error(), "stop_times.txt")
}

// TestLoadFeed_PathAndURL tests loading from disk and over HTTP
func TestLoadFeed_PathAndURL(t *testing.T) {
	zipBytes := gtfstest.Zip(gtfstest.TwoRoutes(""))

	path := filepath.Join(t.TempDir(), "gtfs.zip")
	require.NoError(t, os.WriteFile(path, zipBytes, 0o644))
	fromPath, err := LoadFeed(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gtfs.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(zipBytes)
	}))
	defer srv.Close()

	fromURL, err := LoadFeed(srv.URL + "/gtfs.zip")
	require.NoError(t, err)
	assert.Equal(t, fromPath, fromURL)

	_, err = LoadFeed(srv.URL + "/missing.zip")
	assert.Error(t, err)
}

// TestBuild_TwoRoutes tests the mapping into the transit model
func TestBuild_TwoRoutes(t *testing.T) {
	data, transfers, stats := build(t, gtfstest.TwoRoutes(""))

	assert.Empty(t, transfers)
	assert.Equal(t, BuildStats{Stops: 4, Routes: 2, Patterns: 2, Trips: 4}, stats)

	b := data.StopByID("B")
	require.NotNil(t, b)
	require.NotNil(t, b.Station)
	assert.Equal(t, "SB", b.Station.ID)
	assert.Nil(t, data.StopByID("SB"), "stations are not stops")

	assert.Equal(t, transit.ModeRail, data.RouteByID("R1").Mode)
	assert.Equal(t, transit.ModeBus, data.RouteByID("R2").Mode)

	trip := data.TripByID("R2-1")
	require.NotNil(t, trip)
	assert.Equal(t, "D", trip.Headsign)
	p := data.PatternForTrip(trip)
	require.NotNil(t, p)
	assert.Equal(t, "R2:0", p.ID)
	assert.Equal(t, 60, p.MinTransferTime)
	assert.Equal(t, 2, p.Timetable().NumTrips())
	assert.Equal(t, transittest.HM(10, 30), data.TripSchedule(trip).Arrival(1))
}

// TestBuild_PatternsSplitByStopRules tests that pickup and drop-off rules
// are part of the pattern identity.
func TestBuild_PatternsSplitByStopRules(t *testing.T) {
	files := gtfstest.TwoRoutes("")
	files["trips.txt"] += "R2,ALL,R2-3,D,0,\n"
	files["stop_times.txt"] += "R2-3,11:00:00,11:00:00,B,1,0,1\n" +
		"R2-3,11:10:00,11:10:00,C,2,1,0\n" +
		"R2-3,11:20:00,11:20:00,D,3,1,0\n"
	data, _, stats := build(t, files)

	assert.Equal(t, 3, stats.Patterns)
	p := data.PatternForTrip(data.TripByID("R2-3"))
	require.NotNil(t, p)
	assert.Equal(t, "R2:1", p.ID)
	assert.True(t, p.CanBoard(0))
	assert.False(t, p.CanBoard(1))
	assert.True(t, p.CanAlight(1))
}

// TestBuild_DropsBadTrips tests that broken trips are dropped, not fatal
func TestBuild_DropsBadTrips(t *testing.T) {
	files := gtfstest.TwoRoutes("")
	files["trips.txt"] += "R2,ALL,BAD-STOP,D,0,\n" +
		"R2,ALL,BAD-TIME,D,0,\n" +
		"NOPE,ALL,BAD-ROUTE,D,0,\n" +
		"R2,ALL,SHORT,D,0,\n"
	files["stop_times.txt"] += "BAD-STOP,11:00:00,11:00:00,B,1,,\n" +
		"BAD-STOP,11:10:00,11:10:00,X,2,,\n" +
		"BAD-TIME,11:00:00,11:00:00,B,1,,\n" +
		"BAD-TIME,10:50:00,10:50:00,C,2,,\n" +
		"BAD-ROUTE,11:00:00,11:00:00,B,1,,\n" +
		"BAD-ROUTE,11:10:00,11:10:00,C,2,,\n" +
		"SHORT,11:00:00,11:00:00,B,1,,\n"
	data, _, stats := build(t, files)

	assert.Equal(t, 4, stats.Trips)
	assert.Equal(t, 4, stats.DroppedTrips)
	for _, id := range []string{"BAD-STOP", "BAD-TIME", "BAD-ROUTE", "SHORT"} {
		assert.Nil(t, data.TripByID(id), id)
	}
}

// TestInterpolateTimes tests filling of untimed stops
func TestInterpolateTimes(t *testing.T) {
	arr, dep, err := interpolateTimes([]StopTimeRecord{
		{Arrival: 600, Departure: 600},
		{Arrival: -1, Departure: -1},
		{Arrival: -1, Departure: -1},
		{Arrival: 900, Departure: 960},
		{Arrival: -1, Departure: 1000},
		{Arrival: 1100, Departure: -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{600, 700, 800, 900, 1000, 1100}, arr)
	assert.Equal(t, []int{600, 700, 800, 960, 1000, 1100}, dep)

	_, _, err = interpolateTimes([]StopTimeRecord{
		{Arrival: -1, Departure: -1},
		{Arrival: 900, Departure: 900},
	})
	assert.Error(t, err)
}

// TestPriorityForType tests the transfer_type code mapping
func TestPriorityForType(t *testing.T) {
	tests := []struct {
		code int
		want transfer.Priority
		ok   bool
	}{
		{TransferRecommended, transfer.Recommended, true},
		{TransferGuaranteed, transfer.Allowed, true},
		{TransferMinTime, transfer.Allowed, true},
		{TransferForbidden, transfer.NotAllowed, true},
		{4, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := PriorityForType(tt.code)
		assert.Equal(t, tt.ok, ok, "code %d", tt.code)
		if tt.ok {
			assert.Equal(t, tt.want, got, "code %d", tt.code)
		}
	}
}

// TestTransferMapper tests one transfers.txt row at a time
func TestTransferMapper(t *testing.T) {
	type point struct {
		kind transfer.Kind
		pos  int
	}
	tests := []struct {
		name       string
		row        string
		dropped    bool
		from, to   point
		constraint transfer.Constraint
	}{
		{
			name:       "guaranteed trip to trip",
			row:        "B,B,,,R1-1,R2-1,1,",
			from:       point{transfer.KindTrip, 1},
			to:         point{transfer.KindTrip, 0},
			constraint: transfer.Constraint{Priority: transfer.Allowed, Guaranteed: true},
		},
		{
			name:       "station resolves trip positions",
			row:        "SB,SB,,,R1-1,R2-1,1,",
			from:       point{transfer.KindTrip, 1},
			to:         point{transfer.KindTrip, 0},
			constraint: transfer.Constraint{Priority: transfer.Allowed, Guaranteed: true},
		},
		{
			name:       "forbidden route to route",
			row:        "C,C,R1,R2,,,3,",
			from:       point{transfer.KindRoute, 2},
			to:         point{transfer.KindRoute, 1},
			constraint: transfer.Constraint{Priority: transfer.NotAllowed},
		},
		{
			name:       "forbidden station to station",
			row:        "SC,SC,,,,,3,",
			from:       point{transfer.KindStation, -1},
			to:         point{transfer.KindStation, -1},
			constraint: transfer.Constraint{Priority: transfer.NotAllowed},
		},
		{
			name:       "recommended stop to stop",
			row:        "B,B,,,,,0,",
			from:       point{transfer.KindStop, -1},
			to:         point{transfer.KindStop, -1},
			constraint: transfer.Constraint{Priority: transfer.Recommended},
		},
		{
			name:       "same block is stay-seated",
			row:        "C,B,,,R1-2,R2-2,2,",
			from:       point{transfer.KindTrip, 2},
			to:         point{transfer.KindTrip, 0},
			constraint: transfer.Constraint{Priority: transfer.Allowed, StaySeated: true},
		},
		{name: "regular with time", row: "B,B,,,,,2,120", dropped: true},
		{name: "regular without time", row: "B,B,,,,,2,", dropped: true},
		{name: "unknown type", row: "B,B,,,,,7,", dropped: true},
		{name: "unknown stop", row: "X,B,,,,,1,", dropped: true},
		{name: "unknown trip", row: "B,B,,,NOPE,R2-1,1,", dropped: true},
		{name: "unknown route", row: "B,B,NOPE,,,,1,", dropped: true},
		{name: "stop not on trip", row: "D,B,,,R1-1,R2-1,1,", dropped: true},
		{name: "cannot alight at first stop", row: "A,B,,,R1-1,R2-1,1,", dropped: true},
		{name: "cannot board at last stop", row: "C,D,,,R1-1,R2-1,1,", dropped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := gtfstest.TwoRoutes(tt.row + "\n")
			files["trips.txt"] = strings.ReplaceAll(files["trips.txt"], "R1-2,C,0,", "R1-2,C,0,BLK7")
			files["trips.txt"] = strings.ReplaceAll(files["trips.txt"], "R2-2,D,0,", "R2-2,D,0,BLK7")
			_, transfers, _ := build(t, files)

			if tt.dropped {
				assert.Empty(t, transfers)
				return
			}
			require.Len(t, transfers, 1)
			got := transfers[0]
			assert.Equal(t, "gtfs-000001", got.ID)
			assert.Equal(t, tt.from, point{got.From.Kind(), got.From.StopPos()})
			assert.Equal(t, tt.to, point{got.To.Kind(), got.To.StopPos()})
			assert.Equal(t, tt.constraint, got.Constraint)
		})
	}
}

// TestTransferMapper_AmbiguousRoute tests that a route point is dropped when
// the trips of the route serve the stop at different positions.
func TestTransferMapper_AmbiguousRoute(t *testing.T) {
	files := gtfstest.TwoRoutes("C,C,R1,R2,,,3,\nB,B,,,R1-1,R2-1,1,\n")
	files["trips.txt"] += "R1,ALL,R1-3,C,0,\n"
	files["stop_times.txt"] += "R1-3,11:00:00,11:00:00,B,1,,\n" +
		"R1-3,11:10:00,11:10:00,C,2,,\n"
	_, transfers, stats := build(t, files)

	require.Len(t, transfers, 1)
	assert.Equal(t, "gtfs-000002", transfers[0].ID)
	assert.Equal(t, 1, stats.Transfers)
}

// TestFeedCache_RoundTrip tests the gob cache of a parsed feed
func TestFeedCache_RoundTrip(t *testing.T) {
	feed := loadFiles(t, gtfstest.TwoRoutes("B,B,,,R1-1,R2-1,1,\n"))

	path := filepath.Join(t.TempDir(), "feed.gob")
	require.NoError(t, SerializeFeedToFile(feed, path))
	got, err := DeserializeFeedFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, feed, got)

	_, err = DeserializeFeed([]byte("not gob"))
	assert.Error(t, err)
	_, err = DeserializeFeedFromFile(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}
