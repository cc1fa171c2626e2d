// Package constrained indexes constrained transfers per trip pattern and
// answers, while a search expands a boarding, which target trip may be
// boarded from a given source trip and under which constraint.
//
// The index is built once per graph generation by IndexGenerator and is
// read-only afterwards, so it may be shared by concurrent searches.
//
// Each pattern has two searches. The forward search is consulted when
// boarding the pattern after alighting a source trip; the reverse search is
// consulted by arrive-by searches when "boarding" the pattern backwards in
// time, i.e. alighting it before the source trip is boarded.
package constrained
