package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/infrastructure/config"
	"github.com/davidleathers/dnc-scrubber/internal/infrastructure/telemetry"
	"github.com/davidleathers/dnc-scrubber/internal/metrics"
	dncservice "github.com/davidleathers/dnc-scrubber/internal/service/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/service/dnc/providers"
)

const meterName = "github.com/davidleathers/dnc-scrubber"

// app holds the process-wide services shared by every command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Provider
	metrics   *metrics.Registry
	fs        afero.Fs
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
		MetricInterval: telemetry.DefaultConfig().MetricInterval,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: provider,
		metrics:   metrics.NewRegistry(),
		fs:        afero.NewOsFs(),
	}, nil
}

// newDriver builds lookup clients, the consensus checker and a driver that reports to publisher
func (a *app) newDriver(publisher dncservice.EventPublisher) (*dncservice.Driver, error) {
	lookupMeter, err := telemetry.NewLookupMeter(a.telemetry.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup meter: %w", err)
	}

	clients := providers.NewDefaultClients(providers.ClientOptions{
		Endpoints: providers.Endpoints{
			TCPA:    a.cfg.Lookup.TCPAURL,
			Person:  a.cfg.Lookup.PersonURL,
			Premium: a.cfg.Lookup.PremiumURL,
		},
		QueryParam: a.cfg.Lookup.QueryParam,
		Timeout:    a.cfg.Lookup.Timeout,
	}, a.logger)

	checker, err := dncservice.NewChecker(clients, dncservice.Observers{a.metrics, lookupMeter}, a.logger)
	if err != nil {
		return nil, err
	}

	return dncservice.NewDriver(checker, publisher, dncservice.DriverConfig{
		SkipDelay:  a.cfg.Check.SkipDelay,
		CheckDelay: a.cfg.Check.CheckDelay,
	}, a.logger)
}

// Close flushes telemetry and the logger
func (a *app) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("Failed to shutdown telemetry", zap.Error(err))
	}
	_ = a.logger.Sync()
}
