package transfer

import (
	"fmt"
	"strings"
)

// Priority of a transfer. Lower values sort first.
type Priority int

const (
	NotAllowed Priority = iota
	Allowed
	Recommended
)

func (p Priority) String() string {
	switch p {
	case NotAllowed:
		return "NOT_ALLOWED"
	case Allowed:
		return "ALLOWED"
	case Recommended:
		return "RECOMMENDED"
	}
	return fmt.Sprintf("PRIORITY(%d)", int(p))
}

// Constraint is what a transfer record permits
type Constraint struct {
	Priority   Priority
	Guaranteed bool
	StaySeated bool
}

// Regular is a transfer with no special treatment
var Regular = Constraint{Priority: Allowed}

// IsRegularTransfer reports whether c carries no information beyond the
// default transfer rule.
func (c Constraint) IsRegularTransfer() bool {
	return c.Priority == Allowed && !c.Guaranteed && !c.StaySeated
}

func (c Constraint) IsNotAllowed() bool { return c.Priority == NotAllowed }

// IsFacilitated reports whether the connection time may be zero
func (c Constraint) IsFacilitated() bool { return c.Guaranteed || c.StaySeated }

// CostFactor scales the transfer cost of a boarding made under c
func (c Constraint) CostFactor() float64 {
	switch {
	case c.StaySeated:
		return 0
	case c.Guaranteed:
		return 0.5
	case c.Priority == Recommended:
		return 0.75
	}
	return 1
}

func (c Constraint) String() string {
	if c.IsRegularTransfer() {
		return "(REGULAR)"
	}
	parts := []string{c.Priority.String()}
	if c.Guaranteed {
		parts = append(parts, "guaranteed")
	}
	if c.StaySeated {
		parts = append(parts, "staySeated")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
