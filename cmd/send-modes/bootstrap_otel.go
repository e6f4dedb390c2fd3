package main

import (
	"context"

	config "github.com/NordCoder/SendModes/internal/config/send-modes"
	"github.com/NordCoder/SendModes/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, &cfg.OTEL)
	if err != nil {
		return nil, err
	}
	return closer.Shutdown, nil
}
