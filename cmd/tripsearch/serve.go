package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/tripsearch/gtfsrt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep the graph current with GTFS-RT trip updates, exposing health and metrics",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	if addr := appConfig.Server.MetricsAddr; addr != "" {
		srv := startServer(addr, s)
		defer shutdownServer(srv)
	}

	url := s.feed.GTFSRT.TripUpdatesURL
	if url == "" {
		logger.Info("No trip updates configured, serving the static graph")
		<-ctx.Done()
		return nil
	}
	interval := time.Duration(s.feed.GTFSRT.ReadIntervalMS) * time.Millisecond
	poller := gtfsrt.NewPoller(s.client, url, interval, s.planner.ApplyFeed, logger)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
