package main

import (
	"context"

	config "github.com/NordCoder/SendModes/internal/config/send-modes"
	pg "github.com/NordCoder/SendModes/internal/repository/postgres"
	redisinfra "github.com/NordCoder/SendModes/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pg.DB, error) {
	return pg.New(ctx, cfg.DB, logger)
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return redisinfra.NewClient(ctx, cfg.Redis)
}
