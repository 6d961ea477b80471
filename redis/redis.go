package redis

import (
	"context"

	"github.com/OxBryte/onchain-linktree/config"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	log.Info().Str("address", cfg.Address).Msg("Connected to Redis")
	return rdb
}
