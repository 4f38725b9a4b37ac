// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradepulse/huddle-backend/internal/api"
	"github.com/tradepulse/huddle-backend/internal/cache"
	"github.com/tradepulse/huddle-backend/internal/config"
	"github.com/tradepulse/huddle-backend/internal/repository/postgres"
	"github.com/tradepulse/huddle-backend/internal/service"
	"github.com/tradepulse/huddle-backend/internal/trademetrics"
	"github.com/tradepulse/huddle-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize cache; a broken cache degrades to the noop implementation
	// rather than blocking startup.
	totalsCache, err := cache.NewPeriodTotalsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		totalsCache = cache.NewNoopPeriodTotalsCache()
	}

	// Initialize repositories and collaborators
	recordRepo := postgres.NewDailyRecordRepository(db)
	targetRepo := postgres.NewTargetRepository(db.DB)
	calendarRepo := postgres.NewCalendarRepository(db.DB)
	liveMetrics := trademetrics.NewClient(cfg.TradeAPI)

	pacingService, err := service.NewPacingService(recordRepo, targetRepo, calendarRepo, liveMetrics, totalsCache, cfg.Pacing)
	if err != nil {
		log.Fatalf("Failed to initialize pacing service: %v", err)
	}

	// Initialize HTTP server
	router := api.NewRouter(pacingService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
