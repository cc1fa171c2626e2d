package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/tripsearch/config"
	"github.com/theoremus-urban-solutions/tripsearch/gtfsrt"
	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/metrics"
	"github.com/theoremus-urban-solutions/tripsearch/routing"
	"github.com/theoremus-urban-solutions/tripsearch/search"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

var (
	// ErrNoGraph is returned when no generation has been loaded yet
	ErrNoGraph = errors.New("planner: no graph loaded")
	// ErrUnknownStop is returned when a request names a stop the graph lacks
	ErrUnknownStop = errors.New("planner: unknown stop")
)

// Options configure a Planner. Only Search is required.
type Options struct {
	Search   config.SearchConfig
	Location *time.Location // service day time zone, UTC when nil
	Logger   *slog.Logger
	Metrics  *metrics.Collector // nil records nothing
	Distance routing.DistanceCalculator
	Now      func() time.Time // search budget clock
}

// Planner answers trip plan requests against the current generation. It is
// safe for concurrent use.
type Planner struct {
	cfg      config.SearchConfig
	loc      *time.Location
	logger   *slog.Logger
	metrics  *metrics.Collector
	distance routing.DistanceCalculator
	now      func() time.Time
	engine   *search.Engine
	tracer   trace.Tracer

	current atomic.Pointer[Generation]
	nextID  atomic.Uint64
	mu      sync.Mutex // serialises generation builds
}

func New(opts Options) *Planner {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	dist := opts.Distance
	if dist == nil {
		dist = routing.Haversine{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := internal.OrDefault(opts.Logger)
	return &Planner{
		cfg:      opts.Search.WithDefaults(),
		loc:      loc,
		logger:   logger,
		metrics:  opts.Metrics,
		distance: dist,
		now:      now,
		engine:   search.NewEngine(logger),
		tracer:   otel.Tracer("tripsearch/planner"),
	}
}

// Current returns the generation serving new searches, or nil
func (p *Planner) Current() *Generation { return p.current.Load() }

// Location is the time zone of service days
func (p *Planner) Location() *time.Location { return p.loc }

// Load builds a generation from data and transfers and makes it current
func (p *Planner) Load(data *transit.Data, transfers []transfer.ConstrainedTransfer) (*Generation, error) {
	if data == nil {
		return nil, fmt.Errorf("planner: nil transit data")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swap(p.buildGeneration(data, transfers)), nil
}

// ApplyUpdates builds the next generation with updated trip times and makes
// it current. Updates the transit model rejects are skipped; they are
// reported in the returned error, which may accompany a valid generation.
func (p *Planner) ApplyUpdates(updates []transit.TripTimesUpdate) (*Generation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := p.current.Load()
	if cur == nil {
		return nil, ErrNoGraph
	}
	data, applyErr := cur.Data.ApplyUpdates(updates)
	failed := countJoined(applyErr)
	p.metrics.ObserveRealtime(len(updates)-failed, failed)
	if applyErr != nil {
		p.logger.Warn("Some realtime updates were rejected", "rejected", failed, "error", applyErr)
	}
	return p.swap(p.buildGeneration(data, cur.Transfers)), applyErr
}

// ApplyFeed converts a GTFS-RT feed against the current generation and
// applies it. It matches gtfsrt.ApplyFunc so a Poller can drive it.
func (p *Planner) ApplyFeed(_ context.Context, fm *gtfsrtpb.FeedMessage) error {
	cur := p.current.Load()
	if cur == nil {
		return ErrNoGraph
	}
	updates, stats := gtfsrt.TripUpdates(fm, cur.Data, p.loc)
	p.logger.Info("Realtime trip updates decoded",
		"updated", stats.Updated,
		"canceled", stats.Canceled,
		"unknown_trips", stats.UnknownTrips,
		"skipped", stats.Skipped)
	if len(updates) == 0 {
		return nil
	}
	_, err := p.ApplyUpdates(updates)
	return err
}

func (p *Planner) swap(g *Generation) *Generation {
	p.current.Store(g)
	p.metrics.SetGeneration(g.ID)
	p.logger.Info("Graph generation active",
		"generation", g.ID,
		"patterns", len(g.Data.Patterns()),
		"vertices", g.Graph.NumVertices(),
		"edges", g.Graph.NumEdges(),
		"transfers", g.IndexStats.Transfers-g.IndexStats.Dropped)
	return g
}

// PlanRequest asks for a trip between two stops
type PlanRequest struct {
	From     string // stop id
	To       string // stop id
	Time     time.Time
	ArriveBy bool

	// Optional overrides of the configured search defaults
	Modes        []string
	MaxTransfers *int
}

// Plan searches the current generation
func (p *Planner) Plan(ctx context.Context, pr PlanRequest) (*Itinerary, error) {
	g := p.current.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	return p.planWith(ctx, g, pr)
}

// PlanAll runs every request against the same generation, at most
// search.concurrency at a time. Results are in request order. The first
// error cancels the remaining searches.
func (p *Planner) PlanAll(ctx context.Context, reqs []PlanRequest) ([]*Itinerary, error) {
	g := p.current.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	out := make([]*Itinerary, len(reqs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)
	for i, pr := range reqs {
		eg.Go(func() error {
			it, err := p.planWith(ctx, g, pr)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = it
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Planner) planWith(ctx context.Context, g *Generation, pr PlanRequest) (it *Itinerary, err error) {
	requestID := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "planner.Plan", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("from", pr.From),
		attribute.String("to", pr.To),
		attribute.Bool("arrive_by", pr.ArriveBy),
		attribute.Int64("generation", int64(g.ID)),
	))
	defer span.End()
	logger := p.logger.With("request_id", requestID)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.metrics.ObserveSearchError()
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	origin, err := p.stopVertex(g, pr.From)
	if err != nil {
		return nil, err
	}
	target, err := p.stopVertex(g, pr.To)
	if err != nil {
		return nil, err
	}
	req, err := p.request(ctx, pr)
	if err != nil {
		return nil, err
	}
	heuristic, err := search.HeuristicByName(p.cfg.Heuristic, p.distance, p.cfg.MaxTransitSpeed)
	if err != nil {
		return nil, err
	}

	res, err := p.engine.ShortestPathTree(g.Graph, origin, target, req, search.Options{
		Heuristic: heuristic,
		Now:       p.now,
	})
	if err != nil {
		return nil, err
	}

	it = assemble(res)
	it.RequestID = requestID
	it.Generation = g.ID

	outcome := metrics.OutcomeNotFound
	switch {
	case it.Found:
		outcome = metrics.OutcomeFound
	case it.Truncated:
		outcome = metrics.OutcomeTruncated
	}
	p.metrics.ObserveSearch(outcome, res.Elapsed, res.Expanded)
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("expanded", res.Expanded),
		attribute.Int("legs", len(it.Legs)),
	)
	span.SetStatus(codes.Ok, outcome)
	logger.Info("Plan finished",
		"from", pr.From,
		"to", pr.To,
		"outcome", outcome,
		"truncated", it.Truncated,
		"expanded", res.Expanded,
		"elapsed", res.Elapsed)
	return it, nil
}

func (p *Planner) stopVertex(g *Generation, id string) (*routing.Vertex, error) {
	stop := g.Data.StopByID(id)
	if stop == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStop, id)
	}
	v := g.Graph.StopVertex(stop)
	if v == nil {
		return nil, fmt.Errorf("%w: %q has no vertex", ErrUnknownStop, id)
	}
	return v, nil
}

// request builds the routing request from the configured defaults and the
// overrides of pr. A context deadline tightens the computation budget.
func (p *Planner) request(ctx context.Context, pr PlanRequest) (*routing.Request, error) {
	c := p.cfg
	req := routing.DefaultRequest(pr.Time, p.loc)
	req.ArriveBy = pr.ArriveBy
	req.MaxTransfers = c.MaxTransfers
	if pr.MaxTransfers != nil {
		req.MaxTransfers = *pr.MaxTransfers
	}
	req.MaxWalkDistance = c.MaxWalkDistance
	req.MaxWeight = c.MaxWeight
	req.WalkSpeed = c.WalkSpeed
	req.WalkReluctance = c.WalkReluctance
	req.WaitReluctance = c.WaitReluctance
	req.BoardCost = c.BoardCost
	req.TransferCost = c.TransferCost
	req.MaxComputationTime = time.Duration(c.MaxComputationTimeMS) * time.Millisecond
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); req.MaxComputationTime == 0 || left < req.MaxComputationTime {
			req.MaxComputationTime = max(left, time.Millisecond)
		}
	}
	if c.SearchWindowMinutes > 0 {
		window := time.Duration(c.SearchWindowMinutes) * time.Minute
		if pr.ArriveBy {
			req.WorstTime = pr.Time.Add(-window)
		} else {
			req.WorstTime = pr.Time.Add(window)
		}
	}
	names := c.Modes
	if len(pr.Modes) > 0 {
		names = pr.Modes
	}
	modes, err := routing.ParseModes(names)
	if err != nil {
		return nil, err
	}
	req.Modes = modes
	return req, nil
}

func countJoined(err error) int {
	if err == nil {
		return 0
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}
