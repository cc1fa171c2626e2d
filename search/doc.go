// Package search runs time-dependent best-first searches over a routing
// graph and returns the shortest-path tree.
//
// The engine is a generalized A*: states are expanded in order of weight
// plus a heuristic estimate of the remaining weight. Strategies decide the
// heuristic, when to stop and which successor states to ignore. Arrive-by
// searches start at the target and run the same loop backwards in time.
package search
