/*
Package transit holds the scheduled transit model the router searches over.

Trips that share a stop sequence are grouped into a TripPattern. Each pattern
owns a Timetable whose TripSchedules are sorted by departure at the first
stop; schedules never overtake each other inside a pattern. Times are seconds
since service-day midnight and may exceed 24 hours for trips running past
midnight.

A Data value is built once (usually by the gtfs package) and is read-only
afterwards, so any number of searches may share it. Realtime changes are
applied with ApplyUpdates, which returns a new Data and leaves the old one
untouched for searches still running against it.
*/
package transit
