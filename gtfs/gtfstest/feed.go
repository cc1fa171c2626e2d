// Package gtfstest builds GTFS zips in memory for tests.
package gtfstest

import (
	"archive/zip"
	"bytes"
	"sort"
)

// Zip packs files (name -> CSV content) into a zip archive
func Zip(files map[string]string) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// TwoRoutes returns the files of the two-route network also built by
// transittest.TwoRoutes: rail R1 over A B C and bus R2 over B C D, every stop
// below its own station. transfers is the body of transfers.txt without the
// header; an empty string leaves the file out.
func TwoRoutes(transfers string) map[string]string {
	files := map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"AG,Test Agency,https://example.com,Europe/Oslo\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station\n" +
			"SA,Station A,59.90,10.700,1,\n" +
			"SB,Station B,59.90,10.718,1,\n" +
			"SC,Station C,59.90,10.736,1,\n" +
			"SD,Station D,59.90,10.754,1,\n" +
			"A,Stop A,59.90,10.700,0,SA\n" +
			"B,Stop B,59.90,10.718,0,SB\n" +
			"C,Stop C,59.90,10.736,0,SC\n" +
			"D,Stop D,59.90,10.754,0,SD\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"R1,AG,1,Rail one,2\n" +
			"R2,AG,2,Bus two,3\n",
		"trips.txt": "route_id,service_id,trip_id,trip_headsign,direction_id,block_id\n" +
			"R1,ALL,R1-1,C,0,\n" +
			"R1,ALL,R1-2,C,0,\n" +
			"R2,ALL,R2-1,D,0,\n" +
			"R2,ALL,R2-2,D,0,\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence,pickup_type,drop_off_type\n" +
			"R1-1,10:00:00,10:00:00,A,1,,\n" +
			"R1-1,10:10:00,10:10:00,B,2,,\n" +
			"R1-1,10:20:00,10:20:00,C,3,,\n" +
			"R1-2,10:05:00,10:05:00,A,1,,\n" +
			"R1-2,10:15:00,10:15:00,B,2,,\n" +
			"R1-2,10:25:00,10:25:00,C,3,,\n" +
			"R2-1,10:15:00,10:15:00,B,1,,\n" +
			"R2-1,10:30:00,10:30:00,C,2,,\n" +
			"R2-1,10:40:00,10:40:00,D,3,,\n" +
			"R2-2,10:20:00,10:20:00,B,1,,\n" +
			"R2-2,10:35:00,10:35:00,C,2,,\n" +
			"R2-2,10:45:00,10:45:00,D,3,,\n",
	}
	if transfers != "" {
		files["transfers.txt"] = "from_stop_id,to_stop_id,from_route_id,to_route_id,from_trip_id,to_trip_id,transfer_type,min_transfer_time\n" +
			transfers
	}
	return files
}
