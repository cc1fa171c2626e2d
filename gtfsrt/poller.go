package gtfsrt

import (
	"context"
	"log/slog"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
)

// ApplyFunc receives every successfully decoded feed message. It runs on the
// poller goroutine, so a slow apply delays the next poll.
type ApplyFunc func(ctx context.Context, fm *gtfsrtpb.FeedMessage) error

// Poller fetches a trip updates feed on an interval
type Poller struct {
	client   *Client
	url      string
	interval time.Duration
	apply    ApplyFunc
	logger   *slog.Logger
}

func NewPoller(client *Client, url string, interval time.Duration, apply ApplyFunc, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:   client,
		url:      url,
		interval: interval,
		apply:    apply,
		logger:   internal.OrDefault(logger),
	}
}

// Run polls immediately and then on every tick until ctx is done. Fetch and
// apply errors are logged and polling continues.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.PollOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollOnce fetches and applies the feed once. Reports whether apply ran
// without error.
func (p *Poller) PollOnce(ctx context.Context) bool {
	start := time.Now()
	fm, err := p.client.FetchFeed(ctx, p.url)
	if err != nil {
		p.logger.Warn("Realtime fetch failed", "url", p.url, "error", err)
		return false
	}
	if fm == nil {
		return false
	}
	if err := p.apply(ctx, fm); err != nil {
		p.logger.Warn("Realtime apply failed", "url", p.url, "error", err)
		return false
	}
	p.logger.Debug("Realtime feed applied",
		"url", p.url,
		"entities", len(fm.GetEntity()),
		"duration", time.Since(start))
	return true
}
