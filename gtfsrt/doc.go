// Package gtfsrt turns GTFS-Realtime TripUpdates feeds into trip-time
// updates for the transit model.
//
// ParseFeed decodes a protobuf FeedMessage. TripUpdates converts its trip
// updates into transit.TripTimesUpdate values that transit.Data.ApplyUpdates
// folds into a new generation. Client fetches feeds from URLs or files and
// Poller does so on an interval.
package gtfsrt
