package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseGTFSTime parses a GTFS "HH:MM:SS" time into seconds since service-day
// midnight. Hours may exceed 23 for trips running past midnight.
func ParseGTFSTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid GTFS time %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid GTFS time %q", s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("invalid GTFS time %q", s)
	}
	return v[0]*3600 + v[1]*60 + v[2], nil
}

// FormatGTFSTime renders seconds since midnight as HH:MM:SS
func FormatGTFSTime(sec int) string {
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, sec/3600, (sec/60)%60, sec%60)
}

// ServiceDayMidnight returns the unix time of midnight (local to loc) of the
// day containing t. "Midnight" is noon minus twelve hours so that DST changes
// keep GTFS times aligned, as the GTFS reference defines it.
func ServiceDayMidnight(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	noon := time.Date(lt.Year(), lt.Month(), lt.Day(), 12, 0, 0, 0, loc)
	return noon.Unix() - 12*3600
}

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(sec, 0).In(loc).Format(time.RFC3339)
}
