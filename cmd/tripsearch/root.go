package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/tripsearch/config"
	"github.com/theoremus-urban-solutions/tripsearch/gtfsrt"
	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/metrics"
	"github.com/theoremus-urban-solutions/tripsearch/planner"
)

var (
	configPath  string
	feedName    string
	gtfsPath    string
	tripUpdates string
	logLevel    string
	metricsAddr string

	appConfig config.AppConfig
	logger    *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "tripsearch",
		Short: "Time-dependent trip planning over GTFS with constrained transfers",
		Long: `tripsearch loads a GTFS feed, indexes its constrained transfers
(guaranteed, stay-seated, forbidden) and answers trip plan requests with a
time-dependent A* search. GTFS-Realtime trip updates can be applied on top.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default config.yml or ./config/config.yml)")
	pf.StringVar(&feedName, "feed", "", "feed name from config.feeds[] (default the first)")
	pf.StringVar(&gtfsPath, "gtfs", "", "GTFS zip path or URL (overrides config)")
	pf.StringVar(&tripUpdates, "trip-updates", "", "GTFS-RT TripUpdates URL or file (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")

	rootCmd.AddCommand(planCmd, transfersCmd, serveCmd)
}

// loadConfig reads the configuration. Without --config a missing default
// file is not an error as long as --gtfs names a feed.
func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		appConfig, err = config.LoadAppConfig(configPath)
	} else {
		appConfig, err = config.LoadAppConfig()
		if errors.Is(err, fs.ErrNotExist) && gtfsPath != "" {
			appConfig, err = config.Parse([]byte("{}"))
		}
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		appConfig.Logging.Level = logLevel
	}
	if metricsAddr != "" {
		appConfig.Server.MetricsAddr = metricsAddr
	}
	logger = internal.InitLogging(appConfig.Logging.Level, appConfig.Logging.Format)
	return nil
}

func selectedFeed() (config.Feed, error) {
	fc, err := config.SelectFeed(appConfig, feedName)
	if errors.Is(err, config.ErrNoFeed) && gtfsPath != "" {
		fc, err = config.Feed{Name: "cli"}, nil
	}
	if err != nil {
		return config.Feed{}, err
	}
	if gtfsPath != "" {
		fc.GTFS.StaticPath = gtfsPath
	}
	if tripUpdates != "" {
		fc.GTFSRT.TripUpdatesURL = tripUpdates
	}
	return fc, nil
}

// session is a loaded planner with the feed it was built from
type session struct {
	feed    config.Feed
	planner *planner.Planner
	metrics *metrics.Collector
	client  *gtfsrt.Client
}

func newSession(ctx context.Context) (*session, error) {
	fc, err := selectedFeed()
	if err != nil {
		return nil, err
	}
	static, err := planner.LoadStatic(fc, logger)
	if err != nil {
		return nil, err
	}
	loc, err := planner.FeedLocation(fc, static)
	if err != nil {
		return nil, err
	}
	data, transfers, err := planner.BuildTransit(static, appConfig.Search, logger)
	if err != nil {
		return nil, err
	}

	s := &session{feed: fc, metrics: metrics.NewCollector()}
	s.planner = planner.New(planner.Options{
		Search:   appConfig.Search,
		Location: loc,
		Logger:   logger,
		Metrics:  s.metrics,
	})
	if _, err := s.planner.Load(data, transfers); err != nil {
		return nil, err
	}

	timeout := time.Duration(fc.GTFSRT.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	s.client = gtfsrt.NewClient(timeout)
	if url := fc.GTFSRT.TripUpdatesURL; url != "" {
		fm, err := s.client.FetchFeed(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("trip updates: %w", err)
		}
		if err := s.planner.ApplyFeed(ctx, fm); err != nil {
			// rejected updates still leave a usable generation
			logger.Warn("Trip updates partially applied", "error", err)
		}
	}
	return s, nil
}
