// Package transfer models constrained transfers between two trips: where a
// transfer applies (a Point of varying specificity), what it allows (a
// Constraint) and the deterministic order in which competing records are
// considered.
//
// Points are one of four kinds, from least to most specific:
//
//	Station  any stop of a parent station
//	Stop     a single stop
//	Route    a stop position of any trip on a route
//	Trip     a stop position of one trip
//
// When several records apply to the same pair of trips the most specific
// one wins; see Compare.
package transfer
