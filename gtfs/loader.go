package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
)

// ErrMissingFile is returned when a required file is absent from the zip
var ErrMissingFile = errors.New("gtfs: required file missing")

var requiredFiles = []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"}

// LoadFeed reads a GTFS zip from a local path or an http(s) URL
func LoadFeed(pathOrURL string) (*Feed, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return loadFromStaticZip(pathOrURL)
	}
	return loadFromLocalZip(pathOrURL)
}

// LoadFeedFromBytes parses a GTFS zip held in memory
func LoadFeedFromBytes(data []byte) (*Feed, error) {
	return LoadFeedFromReader(bytes.NewReader(data), int64(len(data)))
}

// LoadFeedFromReader parses a GTFS zip of the given size
func LoadFeedFromReader(r io.ReaderAt, size int64) (*Feed, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open gtfs zip: %w", err)
	}
	return consumeZip(zr.File)
}

func loadFromStaticZip(url string) (*Feed, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	tmp, err := os.CreateTemp("", "gtfs-*.zip")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return loadFromLocalZip(tmp.Name())
}

// loadFromLocalZip opens a local GTFS zip file and consumes the CSVs
func loadFromLocalZip(path string) (*Feed, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return consumeZip(zr.File)
}

func consumeZip(files []*zip.File) (*Feed, error) {
	feed := &Feed{StopTimes: map[string][]StopTimeRecord{}}
	seen := map[string]bool{}
	for _, f := range files {
		name := strings.ToLower(f.Name[strings.LastIndex(f.Name, "/")+1:])
		switch name {
		case "agency.txt", "stops.txt", "routes.txt", "trips.txt", "stop_times.txt", "transfers.txt":
			if err := feed.consumeCSV(f, name); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			seen[name] = true
		}
	}
	for _, name := range requiredFiles {
		if !seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
	}
	return feed, nil
}

func (g *Feed) consumeCSV(f *zip.File, name string) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	// field returns the column value or "" when the column or cell is missing
	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	atoi := func(s string, fallback int) int {
		if s == "" {
			return fallback
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fallback
		}
		return v
	}

	switch name {
	case "agency.txt":
		agID := idx("agency_id")
		agTZ := idx("agency_timezone")
		agName := idx("agency_name")
		if len(rec) > 1 {
			g.AgencyID = field(rec[1], agID)
			g.AgencyTimezone = field(rec[1], agTZ)
			g.AgencyName = field(rec[1], agName)
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		lt := idx("location_type")
		ps := idx("parent_station")
		if sID < 0 {
			return fmt.Errorf("missing column stop_id")
		}
		for _, row := range rec[1:] {
			lat, _ := strconv.ParseFloat(field(row, sLat), 64)
			lon, _ := strconv.ParseFloat(field(row, sLon), 64)
			g.Stops = append(g.Stops, StopRecord{
				ID:            field(row, sID),
				Name:          field(row, sN),
				Lat:           lat,
				Lon:           lon,
				LocationType:  atoi(field(row, lt), LocationStop),
				ParentStation: field(row, ps),
			})
		}
	case "routes.txt":
		rID := idx("route_id")
		ag := idx("agency_id")
		rSN := idx("route_short_name")
		rLN := idx("route_long_name")
		rType := idx("route_type")
		if rID < 0 {
			return fmt.Errorf("missing column route_id")
		}
		for _, row := range rec[1:] {
			g.Routes = append(g.Routes, RouteRecord{
				ID:        field(row, rID),
				AgencyID:  field(row, ag),
				ShortName: field(row, rSN),
				LongName:  field(row, rLN),
				Type:      atoi(field(row, rType), 3),
			})
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		svc := idx("service_id")
		hs := idx("trip_headsign")
		dir := idx("direction_id")
		blk := idx("block_id")
		if tID < 0 || rID < 0 {
			return fmt.Errorf("missing column trip_id or route_id")
		}
		for _, row := range rec[1:] {
			g.Trips = append(g.Trips, TripRecord{
				ID:          field(row, tID),
				RouteID:     field(row, rID),
				ServiceID:   field(row, svc),
				Headsign:    field(row, hs),
				DirectionID: field(row, dir),
				BlockID:     field(row, blk),
			})
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arrTime := idx("arrival_time")
		depTime := idx("departure_time")
		pickupType := idx("pickup_type")
		dropOffType := idx("drop_off_type")
		if tID < 0 || sID < 0 || sq < 0 {
			return fmt.Errorf("missing column trip_id, stop_id or stop_sequence")
		}
		for _, row := range rec[1:] {
			st := StopTimeRecord{
				StopID:      field(row, sID),
				Sequence:    atoi(field(row, sq), 0),
				Arrival:     parseTime(field(row, arrTime)),
				Departure:   parseTime(field(row, depTime)),
				PickupType:  atoi(field(row, pickupType), 0),
				DropOffType: atoi(field(row, dropOffType), 0),
			}
			trip := field(row, tID)
			g.StopTimes[trip] = append(g.StopTimes[trip], st)
		}
		for _, arr := range g.StopTimes {
			sort.SliceStable(arr, func(i, j int) bool { return arr[i].Sequence < arr[j].Sequence })
		}
	case "transfers.txt":
		fs := idx("from_stop_id")
		ts := idx("to_stop_id")
		fr := idx("from_route_id")
		tr := idx("to_route_id")
		ft := idx("from_trip_id")
		tt := idx("to_trip_id")
		typ := idx("transfer_type")
		mtt := idx("min_transfer_time")
		for _, row := range rec[1:] {
			g.Transfers = append(g.Transfers, TransferRecord{
				FromStopID:      field(row, fs),
				ToStopID:        field(row, ts),
				FromRouteID:     field(row, fr),
				ToRouteID:       field(row, tr),
				FromTripID:      field(row, ft),
				ToTripID:        field(row, tt),
				TransferType:    atoi(field(row, typ), 0),
				MinTransferTime: atoi(field(row, mtt), -1),
			})
		}
	}
	return nil
}

func parseTime(s string) int {
	if s == "" {
		return -1
	}
	sec, err := internal.ParseGTFSTime(s)
	if err != nil {
		return -1
	}
	return sec
}
