package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yairfalse/devstop/internal/config"
	"github.com/yairfalse/devstop/internal/inventory"
	"github.com/yairfalse/devstop/internal/inventory/aws"
	"github.com/yairfalse/devstop/internal/stopper"
	"github.com/yairfalse/devstop/internal/telemetry"
)

// app holds the wired components for one process.
type app struct {
	cfg       *config.Config
	logger    *telemetry.Logger
	telemetry *telemetry.Provider
	stopper   *stopper.Stopper
}

// newInventory is replaced in tests.
var newInventory = func(ctx context.Context, cfg *config.Config) (inventory.Inventory, error) {
	return aws.New(ctx, aws.Config{Region: cfg.AWS.Region, Profile: cfg.AWS.Profile})
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.FromEnv()
	}

	if regionFlag != "" {
		cfg.AWS.Region = regionFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(os.Stderr, cfg.OTEL.ServiceName, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	inv, err := newInventory(ctx, cfg)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("init inventory: %w", err)
	}

	logger = logger.With("region", cfg.AWS.Region)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: provider,
		stopper: stopper.New(inv,
			stopper.WithLogger(logger),
			stopper.WithRecorder(provider),
			stopper.WithTracer(provider.Tracer()),
			stopper.WithRegion(cfg.AWS.Region),
		),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("telemetry shutdown failed")
	}
}
