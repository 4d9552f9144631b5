package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tournevent/colissimo/internal/config"
	"github.com/tournevent/colissimo/internal/telemetry"
	"github.com/tournevent/colissimo/pkg/shipper"
	"github.com/tournevent/colissimo/pkg/shipper/colissimo"
	"github.com/tournevent/colissimo/pkg/storage"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *otelzap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	store    storage.Store
	shipper  shipper.Shipper

	shutdownTracer func(context.Context) error
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}

	registry := telemetry.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	store, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	observed := storage.NewObservedStore(store, metrics.RecordDocument)

	return &app{
		cfg:            cfg,
		logger:         logger,
		registry:       registry,
		metrics:        metrics,
		store:          observed,
		shipper:        initShipper(cfg, observed, logger),
		shutdownTracer: shutdown,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Warn("Failed to shut down tracer", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes()...)
	return shutdown, err
}

// initStore selects the document destination. Mock mode without a configured
// destination keeps documents in memory.
func initStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.ColissimoUseMock && cfg.LocalPath == "" && cfg.S3Bucket == "" {
		return storage.NewMemoryStore(), nil
	}

	return storage.New(ctx, storage.Config{
		LocalPath:         cfg.LocalPath,
		S3Bucket:          cfg.S3Bucket,
		S3Path:            cfg.S3Path,
		S3Region:          cfg.S3Region,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
}

func initShipper(cfg *config.Config, store storage.Store, logger *otelzap.Logger) shipper.Shipper {
	tracer := otel.Tracer(cfg.ServiceName)

	return colissimo.New(colissimo.Config{
		ContractNumber: cfg.ColissimoContractNumber,
		Password:       cfg.ColissimoPassword,
		LabelURL:       cfg.ColissimoLabelURL,
		RelayURL:       cfg.ColissimoRelayURL,
		Timeout:        cfg.ColissimoTimeout,
		UseMock:        cfg.ColissimoUseMock,
		Policy: colissimo.Policy{
			SignatureCountries: cfg.ColissimoSignatureCountries,
			CustomsCountries:   cfg.ColissimoCustomsCountries,
		},
		CustomsSuffix:        cfg.ColissimoCustomsSuffix,
		SkipDocumentsOnError: cfg.ColissimoSkipDocsOnError,
	}, store, logger, tracer)
}
