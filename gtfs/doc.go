/*
Package gtfs loads GTFS static feeds and maps them onto the transit model.

Loading and mapping are separate steps so that a parsed Feed can be cached:

	feed, err := gtfs.LoadFeed("gtfs.zip")
	if err != nil {
	    log.Fatal(err)
	}
	data, transfers, stats, err := gtfs.Build(feed, gtfs.BuildOptions{MinTransferTime: 120})

LoadFeed accepts a local path or an http(s) URL. LoadFeedFromBytes and
LoadFeedFromReader accept zips from any other source.

# Files

The loader reads agency.txt, stops.txt, routes.txt, trips.txt,
stop_times.txt and, when present, transfers.txt. Calendars are not read:
every trip is assumed to run on every service day.

# Patterns

Trips of a route that serve the same stops with the same pickup and drop-off
rules share a trip pattern. Pattern ids are "<route_id>:<n>" in order of
the lowest trip id of each pattern.

# Transfers

transfers.txt rows become constrained transfers, see TransferMapper. Rows
that would not change routing are dropped.

# Caching

Parse the zip once and keep the Feed. SerializeFeedToFile and
DeserializeFeedFromFile store it as gob to skip CSV parsing on restart.
*/
package gtfs
