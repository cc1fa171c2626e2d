// Package routing holds the routing graph and the search state that moves
// over it.
//
// A Graph has three kinds of vertices: street vertices, stop vertices (one per
// transit stop) and onboard vertices (one per pattern and stop position).
// Edges connect them: StreetEdge for walking, BoardEdge from a stop onto a
// pattern, HopEdge along the pattern and AlightEdge back to the stop.
//
// Every edge traverses in both directions. A forward search moves along the
// edge with time increasing; an arrive-by search moves against it with time
// decreasing. Which one happens is decided by the request carried by the
// State. Traversal is lazy and may yield several states, one per service day
// a trip could run on.
//
// States are immutable. New states are derived from a parent through an
// editor that records the back pointer and edge.
package routing
