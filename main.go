package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OxBryte/onchain-linktree/analytics"
	"github.com/OxBryte/onchain-linktree/chain"
	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/eventlog"
	"github.com/OxBryte/onchain-linktree/handler"
	appLogger "github.com/OxBryte/onchain-linktree/logger"
	"github.com/OxBryte/onchain-linktree/middleware"
	"github.com/OxBryte/onchain-linktree/profile"
	redisClient "github.com/OxBryte/onchain-linktree/redis"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize logger
	appLogger.Initialize()

	// Load configuration (fatal without contract address / project id)
	cfg := config.MustLoadConfig()
	log.Info().
		Str("contract", cfg.Chain.ContractAddress).
		Msg("Configuration loaded successfully")

	// Initialize Redis client
	rdb := redisClient.NewClient(cfg.Redis)

	// Contract gateway plus optional read cache
	gateway := chain.NewGateway(cfg.Chain)
	var reader chain.Reader = gateway
	var cached *chain.CachedReader
	if cfg.Cache.Enabled {
		var err error
		cached, err = chain.NewCachedReader(gateway, cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize contract read cache")
		}
		reader = cached
	} else {
		log.Info().Msg("Contract read cache disabled in configuration")
	}

	// Event log and analytics refresher
	opTimeout := time.Duration(cfg.Redis.OperationTimeout) * time.Second
	events := eventlog.New(rdb, cfg.Analytics, opTimeout)
	refresher := analytics.NewRefresher(events, time.Duration(cfg.Analytics.RefreshSeconds)*time.Second)

	refreshCtx, stopRefresher := context.WithCancel(context.Background())
	go refresher.Run(refreshCtx)

	// Profile flows and API handler
	profiles := profile.NewService(reader, gateway, events)
	api := handler.New(profiles, refresher, events, reader, cached, gateway, rdb, cfg)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Register routes
	r.HandleFunc("/health", api.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", api.CacheMetrics).Methods("GET")
	r.HandleFunc("/api/users", api.ListUsers).Methods("GET")
	r.HandleFunc("/api/profile/{username}", api.GetProfile).Methods("GET")
	r.HandleFunc("/api/register", api.Register).Methods("POST")
	r.HandleFunc("/api/links", api.AddLink).Methods("POST")
	r.HandleFunc("/api/links/batch", api.AddLinks).Methods("POST")
	r.HandleFunc("/api/track/click", api.TrackClick).Methods("POST")
	r.HandleFunc("/api/analytics", api.GetAnalytics).Methods("GET")
	r.HandleFunc("/api/analytics/events", api.GetEvents).Methods("GET")
	r.HandleFunc("/qr/{username}", api.GenerateQR).Methods("GET")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopRefresher()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if cached != nil {
		cached.Close()
	}

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
