package search

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/routing"
)

// ErrMissingEndpoint is returned when the origin or target vertex is nil or
// not part of the graph.
var ErrMissingEndpoint = errors.New("search: origin or target vertex missing")

// Options selects the strategies of one search. Zero values pick the
// trivial heuristic, stop-at-target termination and no skipping.
type Options struct {
	Heuristic   Heuristic
	Termination TerminationStrategy
	Skip        SkipTraverseResultStrategy
	Now         func() time.Time // clock for the computation budget
}

// Result of a search. A truncated result is still valid; it may miss the
// target or hold a suboptimal path to it.
type Result struct {
	Tree      *ShortestPathTree
	Origin    *routing.Vertex
	Target    *routing.Vertex
	ArriveBy  bool
	Truncated bool
	Expanded  int
	Elapsed   time.Duration
}

// end is the vertex the search travelled towards
func (r *Result) end() *routing.Vertex {
	if r.ArriveBy {
		return r.Origin
	}
	return r.Target
}

// Found reports whether the tree reached the end of the search
func (r *Result) Found() bool { return r.Tree.State(r.end()) != nil }

// Path returns the best path from origin to target, or nil
func (r *Result) Path() *GraphPath { return r.Tree.Path(r.end()) }

// Engine runs searches. It holds no per-search state and is safe for
// concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an engine logging to logger.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: internal.OrDefault(logger)}
}

// ShortestPathTree searches from origin to target. Arrive-by requests start
// at target and expand incoming edges backwards in time.
func (e *Engine) ShortestPathTree(g *routing.Graph, origin, target *routing.Vertex, req *routing.Request, opts Options) (*Result, error) {
	if origin == nil || target == nil {
		return nil, ErrMissingEndpoint
	}
	for _, v := range []*routing.Vertex{origin, target} {
		if v.Index >= g.NumVertices() || g.Vertices()[v.Index] != v {
			return nil, fmt.Errorf("%w: %s is not in the graph", ErrMissingEndpoint, v)
		}
	}

	heuristic := opts.Heuristic
	if heuristic == nil {
		heuristic = TrivialHeuristic
	}
	termination := opts.Termination
	if termination == nil {
		termination = StopAtTarget
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	from, to := origin, target
	if req.ArriveBy {
		from, to = target, origin
	}
	maxWeight := req.MaxWeight
	if maxWeight <= 0 {
		maxWeight = math.Inf(1)
	}
	worst, bounded := req.WorstTimeUnix()

	res := &Result{Tree: NewShortestPathTree(), Origin: origin, Target: target, ArriveBy: req.ArriveBy}
	spt := res.Tree
	var q priorityQueue

	init := routing.NewInitialState(from, req)
	spt.Add(init)
	q.push(init, heuristic.RemainingWeight(init, to))

	start := now()
	for !q.empty() {
		if req.MaxComputationTime > 0 && now().Sub(start) > req.MaxComputationTime {
			res.Truncated = true
			break
		}
		u, _ := q.pop()
		if !spt.Visit(u) {
			continue
		}
		res.Expanded++
		if termination.ShouldSearchTerminate(from, to, u, spt, req) {
			break
		}

		for _, edge := range u.Vertex().Edges(req.ArriveBy) {
			if routing.StartsRide(edge, req.ArriveBy) && u.NumBoardings() > req.MaxTransfers {
				continue
			}
			for v := range edge.Traverse(u) {
				if opts.Skip != nil && opts.Skip.ShouldSkip(from, to, v, spt, req) {
					continue
				}
				estimate := v.Weight() + heuristic.RemainingWeight(v, to)
				if estimate > maxWeight {
					continue
				}
				if bounded && violatesWorstTime(v.Time(), worst, req.ArriveBy) {
					continue
				}
				if spt.Add(v) {
					q.push(v, estimate)
				}
			}
		}
	}
	res.Elapsed = now().Sub(start)

	if res.Truncated {
		e.logger.Warn("search truncated by computation budget",
			"budget", req.MaxComputationTime, "expanded", res.Expanded, "queued", q.size())
	} else {
		e.logger.Debug("search finished",
			"from", from.Label, "to", to.Label, "arriveBy", req.ArriveBy,
			"expanded", res.Expanded, "states", spt.NumStates(), "elapsed", res.Elapsed)
	}
	return res, nil
}

func violatesWorstTime(t, worst int64, arriveBy bool) bool {
	if arriveBy {
		return t < worst
	}
	return t > worst
}
