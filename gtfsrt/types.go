package gtfsrt

// UpdateStats counts how the trip updates of one feed message were handled
type UpdateStats struct {
	Entities     int // entities carrying a trip update
	Updated      int
	Canceled     int
	UnknownTrips int
	Skipped      int // no usable stop time update
	StopUpdates  int // stop time updates matched to a pattern position
}

// Total is the number of trip updates produced
func (s UpdateStats) Total() int { return s.Updated + s.Canceled }
