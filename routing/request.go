package routing

import (
	"fmt"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// ModeSet selects the modes a search may use
type ModeSet struct {
	walk      bool
	transit   map[transit.Mode]bool // nil means every transit mode
	noTransit bool
}

// AllModes allows walking and every transit mode
func AllModes() ModeSet { return ModeSet{walk: true} }

// WalkOnly disables transit
func WalkOnly() ModeSet { return ModeSet{walk: true, noTransit: true} }

// ParseModes reads names such as WALK, TRANSIT, BUS or RAIL. TRANSIT allows
// every transit mode; naming individual modes restricts transit to them.
func ParseModes(names []string) (ModeSet, error) {
	m := ModeSet{noTransit: true}
	for _, name := range names {
		switch n := strings.ToUpper(strings.TrimSpace(name)); n {
		case "WALK":
			m.walk = true
		case "TRANSIT":
			m.noTransit = false
			m.transit = nil
		default:
			mode, ok := transit.ParseMode(n)
			if !ok {
				return ModeSet{}, fmt.Errorf("unknown mode %q", name)
			}
			if m.noTransit {
				m.noTransit = false
				m.transit = map[transit.Mode]bool{}
			}
			if m.transit != nil {
				m.transit[mode] = true
			}
		}
	}
	return m, nil
}

func (m ModeSet) Walk() bool { return m.walk }

// Transit reports whether any transit mode is allowed
func (m ModeSet) Transit() bool { return !m.noTransit }

// Allows reports whether routes of mode may be used
func (m ModeSet) Allows(mode transit.Mode) bool {
	if m.noTransit {
		return false
	}
	return m.transit == nil || m.transit[mode]
}

func (m ModeSet) String() string {
	var parts []string
	if m.walk {
		parts = append(parts, "WALK")
	}
	switch {
	case m.noTransit:
	case m.transit == nil:
		parts = append(parts, "TRANSIT")
	default:
		for _, mode := range []transit.Mode{transit.ModeBus, transit.ModeTram, transit.ModeSubway, transit.ModeRail, transit.ModeFerry} {
			if m.transit[mode] {
				parts = append(parts, mode.String())
			}
		}
	}
	return strings.Join(parts, ",")
}

// Request holds the parameters of one search. It is not modified by the
// search and may be shared by the states of one search only.
type Request struct {
	ArriveBy bool
	DateTime time.Time
	Modes    ModeSet

	MaxTransfers    int
	MaxWalkDistance float64 // metres, 0 is unlimited
	// WorstTime bounds the time of any state: no later than it in a forward
	// search, no earlier in an arrive-by search. Zero disables the bound.
	WorstTime          time.Time
	MaxWeight          float64 // 0 is unlimited
	MaxComputationTime time.Duration

	WalkSpeed      float64 // m/s
	WalkReluctance float64
	WaitReluctance float64
	BoardCost      float64
	TransferCost   float64

	// ServiceDays are the midnights (unix seconds) of the days a trip may run
	// on, typically yesterday, today and tomorrow in the feed time zone.
	ServiceDays []int64
}

// DefaultRequest returns a forward request at dateTime with default costs
func DefaultRequest(dateTime time.Time, loc *time.Location) *Request {
	r := &Request{
		DateTime:       dateTime,
		Modes:          AllModes(),
		MaxTransfers:   3,
		WalkSpeed:      1.33,
		WalkReluctance: 2,
		WaitReluctance: 1,
		BoardCost:      60,
		TransferCost:   120,
	}
	r.SetServiceDays(loc)
	return r
}

// SetServiceDays sets the service days around DateTime in loc
func (r *Request) SetServiceDays(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	local := r.DateTime.In(loc)
	r.ServiceDays = r.ServiceDays[:0]
	for _, d := range []int{-1, 0, 1} {
		r.ServiceDays = append(r.ServiceDays, internal.ServiceDayMidnight(local.AddDate(0, 0, d), loc))
	}
}

// StartTime is DateTime in unix seconds
func (r *Request) StartTime() int64 { return r.DateTime.Unix() }

// WorstTimeUnix returns the worst-time bound and whether one is set
func (r *Request) WorstTimeUnix() (int64, bool) {
	if r.WorstTime.IsZero() {
		return 0, false
	}
	return r.WorstTime.Unix(), true
}

func (r *Request) String() string {
	dir := "departAt"
	if r.ArriveBy {
		dir = "arriveBy"
	}
	return fmt.Sprintf("Request{%s %s, modes: %s, maxTransfers: %d}",
		dir, r.DateTime.Format(time.RFC3339), r.Modes, r.MaxTransfers)
}
