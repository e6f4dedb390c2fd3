package main

import (
	"context"

	smclient "github.com/NordCoder/SendModes/internal/clients/sendmode"
	config "github.com/NordCoder/SendModes/internal/config/send-modes"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/transport/httpexec"
	"go.uber.org/zap"
)

// remote is the full send-mode client with creation routed to the provisioning
// endpoint.
type remote struct {
	*smclient.Client
	provisioner sendmode.Provisioner
}

func (r remote) CreateSendMode(ctx context.Context, req sendmode.NewSendModeRequest) (sendmode.SendMode, error) {
	return r.provisioner.CreateSendMode(ctx, req)
}

func buildRemote(cfg *config.Config, logger *zap.Logger) sendmode.API {
	exec := httpexec.New(
		httpexec.NewHTTPClient(cfg.HTTP.Client),
		httpexec.WithAttemptTimeout(cfg.HTTP.AttemptTimeout),
		httpexec.WithRetry(cfg.HTTP.MaxAttempts, cfg.HTTP.RetryInterval),
	).WithLogger(logger)

	return remote{
		Client:      smclient.New(cfg.SendMode.URL, exec).WithLogger(logger),
		provisioner: smclient.New(cfg.SendModeAPI.URL, exec).WithLogger(logger.Named("provisioner")),
	}
}
