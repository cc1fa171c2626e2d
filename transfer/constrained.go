package transfer

import (
	"cmp"
	"fmt"
	"slices"
)

// ConstrainedTransfer is one transfer rule from one point to another
type ConstrainedTransfer struct {
	ID         string
	From       Point
	To         Point
	Constraint Constraint
}

// SpecificityRanking is the combined specificity of both ends
func (t ConstrainedTransfer) SpecificityRanking() int {
	return t.From.Specificity() + t.To.Specificity()
}

func (t ConstrainedTransfer) String() string {
	return fmt.Sprintf("ConstrainedTransfer{%s from: %s, to: %s, %s}", t.ID, t.From, t.To, t.Constraint)
}

// Compare orders a before b when a is more specific, then by priority
// (NOT_ALLOWED first) and finally by id. It is a total order on records with
// distinct ids, so sorting does not depend on input order.
func Compare(a, b ConstrainedTransfer) int {
	if c := cmp.Compare(b.SpecificityRanking(), a.SpecificityRanking()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.From.Specificity(), a.From.Specificity()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.To.Specificity(), a.To.Specificity()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Constraint.Priority, b.Constraint.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Sort orders transfers in place with Compare
func Sort(transfers []ConstrainedTransfer) {
	slices.SortStableFunc(transfers, Compare)
}
