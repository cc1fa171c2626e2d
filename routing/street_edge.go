package routing

import (
	"fmt"
	"iter"
	"math"
)

// StreetEdge is a walkable link of a given length
type StreetEdge struct {
	from, to *Vertex
	Length   float64 // metres
	Name     string
}

func NewStreetEdge(from, to *Vertex, length float64, name string) *StreetEdge {
	return &StreetEdge{from: from, to: to, Length: length, Name: name}
}

func (e *StreetEdge) From() *Vertex { return e.from }

func (e *StreetEdge) To() *Vertex { return e.to }

func (e *StreetEdge) Traverse(s *State) iter.Seq[*State] {
	req := s.Request()
	if !req.Modes.Walk() || s.IsOnboard() || req.WalkSpeed <= 0 {
		return none
	}
	if req.MaxWalkDistance > 0 && s.WalkDistance()+e.Length > req.MaxWalkDistance {
		return none
	}
	duration := int64(math.Ceil(e.Length / req.WalkSpeed))

	ed := s.edit(e)
	if s.ArriveBy() {
		ed.setVertex(e.from)
	} else {
		ed.setVertex(e.to)
	}
	ed.advance(duration)
	ed.incrementWeight(float64(duration) * req.WalkReluctance)
	ed.incrementWalkDistance(e.Length)
	return single(ed.makeState())
}

func (e *StreetEdge) String() string {
	return fmt.Sprintf("StreetEdge(%s -> %s, %.0fm)", e.from.Label, e.to.Label, e.Length)
}
