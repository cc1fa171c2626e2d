package planner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/config"
	"github.com/theoremus-urban-solutions/tripsearch/gtfs"
	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/transfer"
	"github.com/theoremus-urban-solutions/tripsearch/transit"
)

// LoadStatic reads the static feed of fc. With a cache path, a readable
// cache is used instead of the zip and a fresh parse is written back.
func LoadStatic(fc config.Feed, logger *slog.Logger) (*gtfs.Feed, error) {
	logger = internal.OrDefault(logger)
	cachePath := fc.GTFS.CachePath
	if cachePath != "" {
		if feed, err := gtfs.DeserializeFeedFromFile(cachePath); err == nil {
			logger.Info("GTFS feed loaded from cache", "feed", fc.Name, "path", cachePath)
			return feed, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("GTFS cache unusable, parsing zip", "path", cachePath, "error", err)
		}
	}
	if fc.GTFS.StaticPath == "" {
		return nil, fmt.Errorf("feed %s: no gtfs.staticPath", fc.Name)
	}
	start := time.Now()
	feed, err := gtfs.LoadFeed(fc.GTFS.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", fc.Name, err)
	}
	logger.Info("GTFS feed parsed",
		"feed", fc.Name,
		"stops", len(feed.Stops),
		"trips", len(feed.Trips),
		"duration", time.Since(start))
	if cachePath != "" {
		if err := gtfs.SerializeFeedToFile(feed, cachePath); err != nil {
			logger.Warn("GTFS cache write failed", "path", cachePath, "error", err)
		}
	}
	return feed, nil
}

// FeedLocation is the configured time zone, else the agency time zone,
// else UTC.
func FeedLocation(fc config.Feed, feed *gtfs.Feed) (*time.Location, error) {
	name := fc.GTFS.Timezone
	if name == "" && feed != nil {
		name = feed.AgencyTimezone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", name, err)
	}
	return loc, nil
}

// BuildTransit maps a parsed feed with the search configuration
func BuildTransit(feed *gtfs.Feed, sc config.SearchConfig, logger *slog.Logger) (*transit.Data, []transfer.ConstrainedTransfer, error) {
	data, transfers, _, err := gtfs.Build(feed, gtfs.BuildOptions{
		MinTransferTime: sc.MinTransferTimeSeconds,
		Logger:          logger,
	})
	return data, transfers, err
}
