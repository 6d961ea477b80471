package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/OxBryte/onchain-linktree/analytics"
	"github.com/OxBryte/onchain-linktree/chain"
	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/eventlog"
	"github.com/OxBryte/onchain-linktree/profile"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// walletHeader carries the viewer's connected wallet address, when
// any. Wallet session management itself lives with the client.
const walletHeader = "X-Wallet-Address"

// Handler serves the linktree API.
type Handler struct {
	profiles  *profile.Service
	refresher *analytics.Refresher
	events    *eventlog.Log
	reader    chain.Reader
	cached    *chain.CachedReader // nil when caching is disabled
	gateway   *chain.Gateway
	redis     *redis.Client
	config    config.Config
	baseURL   string
}

// New creates the API handler with its collaborators injected.
func New(
	profiles *profile.Service,
	refresher *analytics.Refresher,
	events *eventlog.Log,
	reader chain.Reader,
	cached *chain.CachedReader,
	gateway *chain.Gateway,
	rdb *redis.Client,
	cfg config.Config,
) *Handler {
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}
	return &Handler{
		profiles:  profiles,
		refresher: refresher,
		events:    events,
		reader:    reader,
		cached:    cached,
		gateway:   gateway,
		redis:     rdb,
		config:    cfg,
		baseURL:   baseURL,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":  "healthy",
		"redis":   "connected",
		"gateway": "connected",
	}
	code := http.StatusOK

	if err := h.redis.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("Redis health check failed")
		status["status"] = "unhealthy"
		status["redis"] = "unavailable"
		code = http.StatusServiceUnavailable
	}

	if h.gateway != nil {
		if err := h.gateway.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("Contract gateway health check failed")
			status["status"] = "unhealthy"
			status["gateway"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// CacheMetrics handles GET /cache/metrics
func (h *Handler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if h.cached == nil {
		SendJSONError(w, http.StatusServiceUnavailable, errors.New("cache is disabled"), "")
		return
	}
	SendJSONSuccess(w, http.StatusOK, h.cached.Metrics())
}
