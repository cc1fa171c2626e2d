package constrained_test

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/tripsearch/constrained"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
	"github.com/theoremus-urban-solutions/tripsearch/transit/transittest"
)

const minTransferTime = 120

var (
	guaranteed  = transfer.Constraint{Priority: transfer.Allowed, Guaranteed: true}
	staySeated  = transfer.Constraint{Priority: transfer.Allowed, StaySeated: true}
	notAllowed  = transfer.Constraint{Priority: transfer.NotAllowed}
	recommended = transfer.Constraint{Priority: transfer.Recommended}
)

const (
	trip1 = 0
	trip2 = 1
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func generate(t *testing.T, s *transittest.Scenario, txs ...transfer.ConstrainedTransfer) (*constrained.Index, constrained.IndexStats) {
	t.Helper()
	return constrained.NewIndexGenerator(txs, s.Data, discard()).Generate()
}

func tx(from, to transfer.Point, c transfer.Constraint) transfer.ConstrainedTransfer {
	return transfer.ConstrainedTransfer{ID: "ID", From: from, To: to, Constraint: c}
}

// testTransferSearch checks the forward search boarding R2 after arriving
// with R1-2 and the reverse search boarding R1 backwards from R2-1.
func testTransferSearch(t *testing.T, s *transittest.Scenario, stop *transit.Stop, txs []transfer.ConstrainedTransfer,
	expFwdTrip, expRevTrip int, expConstraint transfer.Constraint) {
	t.Helper()
	idx, _ := generate(t, s, txs...)

	// forward
	{
		subject := idx.Forward(s.P2)
		targetStopPos := s.StopPos(s.P2, stop)
		source := s.Schedule(s.R1Trip2)
		sourceArrival := source.Arrival(s.StopPos(s.P1, stop))

		require.True(t, subject.TransferExist(targetStopPos))
		b, ok := subject.Find(s.P2.Timetable(), source, stop.Index, sourceArrival)
		require.True(t, ok)
		assert.Equal(t, expConstraint, b.Constraint, "forward constraint")
		assert.Equal(t, stop.Index, b.BoardStopIndex)
		assert.Equal(t, targetStopPos, b.StopPositionInPattern)
		assert.Equal(t, expFwdTrip, b.TripIndex, "forward trip")
	}

	// reverse
	{
		subject := idx.Reverse(s.P1)
		targetStopPos := s.StopPos(s.P1, stop)
		source := s.Schedule(s.R2Trip1)
		sourceDeparture := source.Departure(s.StopPos(s.P2, stop))

		require.True(t, subject.TransferExist(targetStopPos))
		b, ok := subject.Find(s.P1.Timetable(), source, stop.Index, sourceDeparture)
		require.True(t, ok)
		assert.Equal(t, expConstraint, b.Constraint, "reverse constraint")
		assert.Equal(t, stop.Index, b.BoardStopIndex)
		assert.Equal(t, targetStopPos, b.StopPositionInPattern)
		assert.Equal(t, expRevTrip, b.TripIndex, "reverse trip")
	}
}

func TestTransferExist(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopC := transfer.NewStopPoint(s.StopC)
	idx, stats := generate(t, s, tx(stopC, stopC, guaranteed))

	assert.True(t, idx.Forward(s.P2).TransferExist(s.StopPos(s.P2, s.StopC)))
	assert.True(t, idx.Reverse(s.P1).TransferExist(s.StopPos(s.P1, s.StopC)))

	// C is the last stop of R1 and cannot be boarded; it is the first alighting
	// position of nothing on R2
	assert.False(t, idx.Forward(s.P1).TransferExist(s.StopPos(s.P1, s.StopC)))
	assert.False(t, idx.Forward(s.P2).TransferExist(s.StopPos(s.P2, s.StopB)))
	assert.False(t, idx.Forward(s.P2).TransferExist(-1))
	assert.False(t, idx.Forward(s.P2).TransferExist(17))

	assert.Equal(t, 1, stats.Transfers)
	assert.Equal(t, 0, stats.Dropped)
	t.Logf("✓ stats: %+v", stats)
}

func TestFindGuaranteedTransferWithZeroConnectionTime(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopB := transfer.NewStopPoint(s.StopB)
	stationB := transfer.NewStationPoint(s.StationB)
	sourcePos := s.StopPos(s.P1, s.StopB)
	targetPos := s.StopPos(s.P2, s.StopB)
	trip1Point := transfer.NewTripPoint(s.R1Trip2, sourcePos)
	trip2Point := transfer.NewTripPoint(s.R2Trip1, targetPos)
	route1Point := transfer.NewRoutePoint(s.R1, sourcePos)
	route2Point := transfer.NewRoutePoint(s.R2, targetPos)

	tests := []struct {
		name string
		txs  []transfer.ConstrainedTransfer
	}{
		{"station", []transfer.ConstrainedTransfer{tx(stationB, stationB, guaranteed)}},
		{"stop", []transfer.ConstrainedTransfer{tx(stopB, stopB, guaranteed)}},
		{"route", []transfer.ConstrainedTransfer{tx(route1Point, route2Point, guaranteed)}},
		{"trip", []transfer.ConstrainedTransfer{tx(trip1Point, trip2Point, guaranteed)}},
		{"most specific", []transfer.ConstrainedTransfer{
			tx(stopB, trip2Point, notAllowed),
			tx(trip1Point, stopB, guaranteed),
			tx(route1Point, stopB, notAllowed),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testTransferSearch(t, s, s.StopB, tt.txs, trip1, trip2, guaranteed)
		})
	}
}

func TestStaySeatedWithZeroConnectionTime(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	trip1Point := transfer.NewTripPoint(s.R1Trip2, s.StopPos(s.P1, s.StopB))
	trip2Point := transfer.NewTripPoint(s.R2Trip1, s.StopPos(s.P2, s.StopB))
	testTransferSearch(t, s, s.StopB, []transfer.ConstrainedTransfer{tx(trip1Point, trip2Point, staySeated)}, trip1, trip2, staySeated)
}

func TestFindNextTransferWhenFirstTransferIsNotAllowed(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	trip1Point := transfer.NewTripPoint(s.R1Trip2, s.StopPos(s.P1, s.StopC))
	trip2Point := transfer.NewTripPoint(s.R2Trip1, s.StopPos(s.P2, s.StopC))

	testTransferSearch(t, s, s.StopC, []transfer.ConstrainedTransfer{tx(trip1Point, trip2Point, notAllowed)},
		trip2, trip1, transfer.Regular)
}

func TestBlockTransferWhenNotAllowedApplyToAllTrips(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopC := transfer.NewStopPoint(s.StopC)

	testTransferSearch(t, s, s.StopC, []transfer.ConstrainedTransfer{tx(stopC, stopC, notAllowed)},
		trip1, trip2, notAllowed)

	idx, _ := generate(t, s, tx(stopC, stopC, notAllowed))
	source := s.Schedule(s.R1Trip2)
	b, ok := idx.Forward(s.P2).Find(s.P2.Timetable(), source, s.StopC.Index, source.Arrival(2))
	require.True(t, ok)
	assert.False(t, b.Boardable())
}

// TestMoreSpecificTransferOverridesNotAllowedForAllTrips tests that a
// stop-wide NOT_ALLOWED does not hide a later trip guaranteed by a trip-to-trip
// record
func TestMoreSpecificTransferOverridesNotAllowedForAllTrips(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopB := transfer.NewStopPoint(s.StopB)
	from := transfer.NewTripPoint(s.R1Trip2, s.StopPos(s.P1, s.StopB))
	to := transfer.NewTripPoint(s.R2Trip2, s.StopPos(s.P2, s.StopB))
	idx, _ := generate(t, s, tx(stopB, stopB, notAllowed), tx(from, to, guaranteed))

	// forward: R2-1 is blocked, R2-2 is guaranteed
	source := s.Schedule(s.R1Trip2)
	b, ok := idx.Forward(s.P2).Find(s.P2.Timetable(), source, s.StopB.Index, source.Arrival(1))
	require.True(t, ok)
	assert.Equal(t, trip2, b.TripIndex)
	assert.Equal(t, guaranteed, b.Constraint)
	assert.True(t, b.Boardable())

	// reverse from R2-2: R1-1 is blocked, R1-2 is guaranteed
	source = s.Schedule(s.R2Trip2)
	b, ok = idx.Reverse(s.P1).Find(s.P1.Timetable(), source, s.StopB.Index, source.Departure(0))
	require.True(t, ok)
	assert.Equal(t, trip2, b.TripIndex)
	assert.Equal(t, guaranteed, b.Constraint)
	assert.True(t, b.Boardable())

	// any other source is still blocked on the earliest trip
	source = s.Schedule(s.R1Trip1)
	b, ok = idx.Forward(s.P2).Find(s.P2.Timetable(), source, s.StopB.Index, source.Arrival(1))
	require.True(t, ok)
	assert.Equal(t, trip1, b.TripIndex)
	assert.Equal(t, notAllowed, b.Constraint)
	assert.False(t, b.Boardable())
}

// TestFindEarliestDepartureWhenTripsOvertake tests that the trip departing
// first at the boarding stop wins, not the first one in the timetable
func TestFindEarliestDepartureWhenTripsOvertake(t *testing.T) {
	o := transittest.NewOvertaking()
	stopB := transfer.NewStopPoint(o.StopB)
	idx, _ := constrained.NewIndexGenerator([]transfer.ConstrainedTransfer{tx(stopB, stopB, guaranteed)}, o.Data, discard()).Generate()

	source := o.Data.TripSchedule(o.Feeder)
	b, ok := idx.Forward(o.PX).Find(o.PX.Timetable(), source, o.StopB.Index, source.Arrival(1))
	require.True(t, ok)
	require.True(t, b.Boardable())
	assert.Equal(t, o.Fast, b.Trip.Trip())
	assert.Equal(t, 1, b.TripIndex)
	assert.Equal(t, transittest.HM(10, 10), b.Time)
}

// TestRecommendedTransferNeedsMinTransferTime tests that only facilitated
// transfers skip the regular minimum transfer time
func TestRecommendedTransferNeedsMinTransferTime(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopB := transfer.NewStopPoint(s.StopB)

	testTransferSearch(t, s, s.StopB, []transfer.ConstrainedTransfer{tx(stopB, stopB, recommended)},
		trip2, trip1, recommended)
}

func TestFind_SourceNotMatched(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	// only applies to R1-1, the search comes from R1-2
	from := transfer.NewTripPoint(s.R1Trip1, s.StopPos(s.P1, s.StopB))
	idx, _ := generate(t, s, tx(from, transfer.NewStopPoint(s.StopB), guaranteed))

	subject := idx.Forward(s.P2)
	require.True(t, subject.TransferExist(0))
	source := s.Schedule(s.R1Trip2)
	_, ok := subject.Find(s.P2.Timetable(), source, s.StopB.Index, source.Arrival(1))
	assert.False(t, ok, "falls back to the regular rule")

	// a stop that is not in the pattern is never found
	_, ok = subject.Find(s.P2.Timetable(), source, s.StopA.Index, source.Arrival(0))
	assert.False(t, ok)
}

func TestFind_NoTripLeft(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopC := transfer.NewStopPoint(s.StopC)
	idx, _ := generate(t, s, tx(stopC, stopC, guaranteed))

	source := s.Schedule(s.R1Trip2)
	b, ok := idx.Forward(s.P2).Find(s.P2.Timetable(), source, s.StopC.Index, transittest.HM(11, 0))
	require.True(t, ok)
	assert.False(t, b.Found())
	assert.False(t, b.Boardable())
}

func TestEmptyIndex(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	idx, stats := generate(t, s)

	for _, p := range s.Data.Patterns() {
		for pos := 0; pos < p.NumStops(); pos++ {
			assert.False(t, idx.Forward(p).TransferExist(pos))
			assert.False(t, idx.Reverse(p).TransferExist(pos))
		}
	}
	source := s.Schedule(s.R1Trip2)
	_, ok := idx.Forward(s.P2).FindAt(s.P2.Timetable(), source, s.StopB.Index, 0, source.Arrival(1))
	assert.False(t, ok)
	assert.Equal(t, constrained.IndexStats{}, stats)
}

// TestGenerate_OrderIndependent tests that the input order of records does
// not change any search result
func TestGenerate_OrderIndependent(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopB := transfer.NewStopPoint(s.StopB)
	sourcePos := s.StopPos(s.P1, s.StopB)
	targetPos := s.StopPos(s.P2, s.StopB)
	txs := []transfer.ConstrainedTransfer{
		{ID: "1", From: stopB, To: transfer.NewTripPoint(s.R2Trip1, targetPos), Constraint: notAllowed},
		{ID: "2", From: transfer.NewTripPoint(s.R1Trip2, sourcePos), To: stopB, Constraint: guaranteed},
		{ID: "3", From: transfer.NewRoutePoint(s.R1, sourcePos), To: stopB, Constraint: notAllowed},
		{ID: "4", From: transfer.NewStationPoint(s.StationB), To: transfer.NewStationPoint(s.StationB), Constraint: recommended},
		{ID: "5", From: stopB, To: stopB, Constraint: staySeated},
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rnd.Shuffle(len(txs), func(a, b int) { txs[a], txs[b] = txs[b], txs[a] })
		testTransferSearch(t, s, s.StopB, txs, trip1, trip2, guaranteed)

		idx, _ := generate(t, s, txs...)
		var ids []string
		for _, e := range idx.Forward(s.P2).Transfers(targetPos) {
			ids = append(ids, e.Transfer.ID)
		}
		assert.Equal(t, []string{"2", "1", "3", "5", "4"}, ids)
	}
}

func TestGenerate_DropsInvalidPoints(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	stopB := transfer.NewStopPoint(s.StopB)
	foreign := &transit.Stop{ID: "X", Index: 99}

	idx, stats := generate(t, s,
		tx(transfer.NewRoutePoint(s.R1, -1), stopB, guaranteed),
		tx(transfer.NewRoutePoint(s.R1, 7), stopB, guaranteed),
		tx(transfer.NewStopPoint(foreign), stopB, guaranteed),
		tx(transfer.NewTripPoint(s.R1Trip1, 9), stopB, guaranteed),
	)
	assert.Equal(t, 4, stats.Transfers)
	assert.Equal(t, 4, stats.Dropped)
	assert.Equal(t, 2, stats.Ambiguous)
	assert.False(t, idx.Forward(s.P2).TransferExist(0))
}

func TestGenerate_AmbiguousRoutePatterns(t *testing.T) {
	s := transittest.TwoRoutes(minTransferTime)
	// a short-turn variant of R1 serving B, C: position 1 is C, not B
	short := s.Data.AddPattern("R1:1", s.R1, []*transit.Stop{s.StopB, s.StopC}, minTransferTime)
	_, err := s.Data.AddTripSchedule(short, s.Data.AddTrip("R1-3", s.R1, ""), []int{36000, 36600}, []int{36000, 36600})
	require.NoError(t, err)

	_, stats := generate(t, s, tx(transfer.NewRoutePoint(s.R1, 1), transfer.NewStopPoint(s.StopB), guaranteed))
	assert.Equal(t, 1, stats.Ambiguous)
	assert.Equal(t, 1, stats.Dropped)
}
