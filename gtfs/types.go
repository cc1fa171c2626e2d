package gtfs

// Feed is the parsed content of a GTFS zip. Fields are exported for gob.
type Feed struct {
	AgencyID       string
	AgencyName     string
	AgencyTimezone string

	Stops     []StopRecord
	Routes    []RouteRecord
	Trips     []TripRecord
	StopTimes map[string][]StopTimeRecord // trip_id -> ordered by stop_sequence
	Transfers []TransferRecord
}

const (
	LocationStop    = 0
	LocationStation = 1
)

type StopRecord struct {
	ID            string
	Name          string
	Lat           float64
	Lon           float64
	LocationType  int
	ParentStation string
}

type RouteRecord struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      int
}

type TripRecord struct {
	ID          string
	RouteID     string
	ServiceID   string
	Headsign    string
	DirectionID string
	BlockID     string
}

// StopTimeRecord times are seconds after service-day midnight, -1 when the
// column is empty.
type StopTimeRecord struct {
	StopID      string
	Sequence    int
	Arrival     int
	Departure   int
	PickupType  int
	DropOffType int
}

// PickupType and DropOffType value for "not available"
const NoPickupDropOff = 1

// TransferRecord is one row of transfers.txt
type TransferRecord struct {
	FromStopID      string
	ToStopID        string
	FromRouteID     string
	ToRouteID       string
	FromTripID      string
	ToTripID        string
	TransferType    int
	MinTransferTime int // seconds, -1 when absent
}
