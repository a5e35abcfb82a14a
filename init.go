package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	internalaws "github.com/tournevent/ratebridge/internal/aws"
	"github.com/tournevent/ratebridge/internal/config"
	"github.com/tournevent/ratebridge/internal/repository"
	"github.com/tournevent/ratebridge/internal/server"
	"github.com/tournevent/ratebridge/internal/service"
	"github.com/tournevent/ratebridge/internal/telemetry"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/tournevent/ratebridge/pkg/shipment/mock"
	"github.com/tournevent/ratebridge/pkg/shipment/shipengine"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// app holds the wired components shared by the serve and lambda commands.
type app struct {
	cfg            *config.Config
	logger         *otelzap.Logger
	server         *server.Server
	tracerShutdown func(context.Context) error
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tracer, tracerShutdown, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		Enabled:     cfg.OTELEnabled,
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.ServiceName,
		Attributes:  cfg.Attributes(),
	})
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer, tracerShutdown = nil, func(context.Context) error { return nil }
	}

	registry := initAdapterRegistry(cfg, logger, tracer)
	adapter, err := registry.Get(cfg.RateAdapter)
	if err != nil {
		return nil, fmt.Errorf("selecting rate adapter (available: %v): %w", registry.Names(), err)
	}

	dynamo, err := internalaws.NewDynamoDBClient(ctx, internalaws.Config{
		Region:           cfg.AWSRegion,
		DynamoDBEndpoint: cfg.DynamoDBEndpoint,
	})
	if err != nil {
		return nil, err
	}
	repo := repository.NewShipmentRepository(dynamo, cfg.ShipmentsTable, logger)

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	svc := service.NewShipmentService(adapter, repo, logger, metrics, tracer)

	return &app{
		cfg:            cfg,
		logger:         logger,
		server:         server.New(server.Config{Port: cfg.Port}, svc, logger, metrics, prometheus.DefaultGatherer),
		tracerShutdown: tracerShutdown,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down tracer", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func initAdapterRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *shipment.Registry {
	registry := shipment.NewRegistry()

	registry.Register(shipengine.New(shipengine.Config{
		APIKey:     cfg.ShipEngineAPIKey,
		BaseURL:    cfg.ShipEngineBaseURL,
		Timeout:    cfg.ShipEngineTimeout,
		CarrierIDs: cfg.ShipEngineCarrierIDs,
		ShipFrom:   shipFromAddress(cfg.ShipFrom),
		UseMock:    cfg.ShipEngineUseMock,
	}, logger, tracer))

	if cfg.MockAdapterEnabled {
		registry.Register(mock.New("mock"))
	}

	return registry
}

func shipFromAddress(from config.ShipFrom) shipengine.Address {
	return shipengine.Address{
		Name:          from.Name,
		Phone:         from.Phone,
		CompanyName:   from.CompanyName,
		AddressLine1:  from.AddressLine1,
		AddressLine2:  from.AddressLine2,
		CityLocality:  from.City,
		StateProvince: from.State,
		PostalCode:    from.PostalCode,
		CountryCode:   from.CountryCode,
	}
}
