package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/buildwise/minimax-relay/internal/cache"
	"github.com/buildwise/minimax-relay/internal/config"
	"github.com/buildwise/minimax-relay/internal/health"
	"github.com/buildwise/minimax-relay/internal/minimax"
	"github.com/buildwise/minimax-relay/internal/observability"
)

// Container carries the shared dependencies handed to the HTTP layer. All
// members are read-only after construction, so it is safe to share across
// concurrent requests.
type Container struct {
	Config        *config.Config
	Observability *observability.Provider
	Redis         *redis.Client
	Replay        *cache.ReplayCache
	Minimax       *minimax.Client
	Health        *health.Monitor
}

// NewContainer builds the dependency container. redisClient may be nil, in
// which case generation responses are never replayed from cache.
func NewContainer(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	var observer minimax.Observer
	if obs != nil {
		observer = obs
	}
	client := minimax.New(minimax.Options{
		BaseURL:  cfg.Provider.BaseURL,
		Timeout:  cfg.Provider.Timeout,
		Observer: observer,
	})

	var replay *cache.ReplayCache
	if redisClient != nil {
		replay = cache.NewReplayCache(redisClient, cfg.Jobs.ReplayTTL)
	}

	return &Container{
		Config:        cfg,
		Observability: obs,
		Redis:         redisClient,
		Replay:        replay,
		Minimax:       client,
		Health:        health.NewMonitor(client.Probe, 0, 0),
	}, nil
}
