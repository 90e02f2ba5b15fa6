package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/api/rest"
	"github.com/davidleathers/dnc-scrubber/internal/api/websocket"
	domainErrors "github.com/davidleathers/dnc-scrubber/internal/domain/errors"
	dncservice "github.com/davidleathers/dnc-scrubber/internal/service/dnc"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and progress websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	hubConfig := websocket.DefaultHubConfig()
	hubConfig.BroadcastBufferSize = a.cfg.WebSocket.BroadcastBuffer
	hubConfig.ClientBufferSize = a.cfg.WebSocket.ClientBufferSize
	hubConfig.PingInterval = a.cfg.WebSocket.PingInterval
	hubConfig.PongTimeout = a.cfg.WebSocket.PongTimeout
	hubConfig.WriteTimeout = a.cfg.WebSocket.WriteTimeout

	hub := websocket.NewProgressHub(a.logger, hubConfig)
	defer hub.Close()
	if err := a.metrics.RegisterProgressHub(hub); err != nil {
		return fmt.Errorf("failed to register progress hub metrics: %w", err)
	}

	driver, err := a.newDriver(dncservice.Publishers{a.metrics, hub})
	if err != nil {
		return err
	}

	handler := rest.NewHandler(driver, a.logger, a.cfg.Version, a.cfg.Server.MaxUploadBytes)
	router := rest.NewRouter(rest.RouterDeps{
		Handler:  handler,
		Progress: http.HandlerFunc(hub.ServeWS),
		Metrics:  a.metrics.Handler(),
		Observer: a.metrics,
		Logger:   a.logger,
	})

	server := rest.NewServer(rest.ServerConfig{
		Addr:            fmt.Sprintf(":%d", a.cfg.Server.Port),
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}, router, a.logger)

	serveErr := server.Run(ctx)

	// a running check stops at its next record boundary
	switch err := driver.Cancel(); {
	case err == nil:
		a.logger.Info("Cancelled running check for shutdown")
	case !domainErrors.HasCode(err, "NO_ACTIVE_CHECK"):
		a.logger.Warn("Failed to cancel running check", zap.Error(err))
	}
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := driver.Wait(waitCtx); err != nil {
		a.logger.Warn("Check did not stop before shutdown timeout", zap.Error(err))
	}

	return serveErr
}
