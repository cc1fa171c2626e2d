package routing

import (
	"fmt"

	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

type VertexKind int

const (
	VertexStreet VertexKind = iota
	VertexStop
	VertexOnboard
)

func (k VertexKind) String() string {
	switch k {
	case VertexStreet:
		return "street"
	case VertexStop:
		return "stop"
	case VertexOnboard:
		return "onboard"
	}
	return fmt.Sprintf("vertex(%d)", int(k))
}

// Vertex is a node of the graph. It carries identity and topology only; all
// search state lives in State.
type Vertex struct {
	Index int
	Label string
	Lat   float64
	Lon   float64
	Kind  VertexKind

	Stop    *transit.Stop        // stop and onboard vertices
	Pattern *transit.TripPattern // onboard vertices
	StopPos int                  // onboard vertices

	outgoing []Edge
	incoming []Edge
}

func (v *Vertex) Outgoing() []Edge { return v.outgoing }

func (v *Vertex) Incoming() []Edge { return v.incoming }

// Edges returns the edges a search expands from v: outgoing ones for forward
// searches, incoming ones for arrive-by searches.
func (v *Vertex) Edges(arriveBy bool) []Edge {
	if arriveBy {
		return v.incoming
	}
	return v.outgoing
}

func (v *Vertex) String() string {
	return fmt.Sprintf("<%s %s>", v.Kind, v.Label)
}
