package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/tripsearch/internal"
	"github.com/theoremus-urban-solutions/tripsearch/planner"
)

type healthResponse struct {
	Status          string `json:"status"`
	Generation      uint64 `json:"generation"`
	GenerationEpoch int64  `json:"generation_epoch"`
	GenerationBuilt string `json:"generation_built"`
	Patterns        int    `json:"patterns"`
	Transfers       int    `json:"transfers"`
}

func healthHandler(p *planner.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		g := p.Current()
		if g == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(healthResponse{Status: "loading"})
			return
		}
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:          "ok",
			Generation:      g.ID,
			GenerationEpoch: g.BuiltAt.Unix(),
			GenerationBuilt: internal.Iso8601FromUnixSeconds(g.BuiltAt.Unix(), p.Location()),
			Patterns:        len(g.Data.Patterns()),
			Transfers:       g.IndexStats.Transfers - g.IndexStats.Dropped,
		})
	}
}

// startServer exposes /metrics and /api/health on addr
func startServer(addr string, s *session) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", healthHandler(s.planner))
	mux.Handle("/metrics", s.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server listening", "addr", addr)
	return srv
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Server shutdown error", "error", err)
		return
	}
	logger.Info("Server shut down")
}
