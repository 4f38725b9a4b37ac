// cmd/sync/main.go
//
// The sync daemon keeps today's snapshot rows fresh: every interval it pulls
// the live figure from the trade API and overwrites today's rows in storage.
// Past-day rows are never touched.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/tradepulse/huddle-backend/internal/cache"
	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/repository/postgres"
	"github.com/tradepulse/huddle-backend/internal/syncer"
	"github.com/tradepulse/huddle-backend/internal/trademetrics"
	"github.com/tradepulse/huddle-backend/pkg/logger"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	totalsCache, err := cache.NewPeriodTotalsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		totalsCache = cache.NewNoopPeriodTotalsCache()
	}

	recordRepo := postgres.NewDailyRecordRepository(db)
	liveMetrics := trademetrics.NewClient(cfg.TradeAPI)

	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	sync := syncer.New(recordRepo, liveMetrics, totalsCache, interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh loop
	go func() {
		if err := sync.Run(ctx); err != nil && err != context.Canceled {
			logger.Log.Error().Err(err).Msg("Sync loop stopped")
		}
	}()

	// Health endpoint plus a manual refresh trigger
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if err := sync.RefreshOnce(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("refreshed"))
	}).Methods("POST")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Sync.Port),
		Handler: r,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Sync.Port).Msg("Sync daemon listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start sync daemon")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down sync daemon...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Sync daemon forced to shutdown")
	}
}
