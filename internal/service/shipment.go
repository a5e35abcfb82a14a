// Package service orchestrates rate adapters and shipment persistence.
package service

import (
	"context"
	"time"

	"github.com/tournevent/ratebridge/internal/telemetry"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	opFetchRates   = "fetch_rates"
	opFindShipment = "find_shipment"
)

// Repository persists shipments.
type Repository interface {
	CreateShipment(ctx context.Context, s *shipment.Shipment) error
	FindShipment(ctx context.Context, id string) (*shipment.Shipment, error)
}

// ShipmentService fetches rates through a RateAdapter and records the
// resulting shipments.
type ShipmentService struct {
	adapter shipment.RateAdapter
	repo    Repository
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// NewShipmentService creates a new ShipmentService. metrics may be nil.
func NewShipmentService(adapter shipment.RateAdapter, repo Repository, logger *otelzap.Logger, metrics *telemetry.Metrics, tracer trace.Tracer) *ShipmentService {
	if tracer == nil {
		tracer = otel.Tracer("service")
	}
	return &ShipmentService{
		adapter: adapter,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// FetchRates quotes the payload and persists the quoted shipment.
// The adapter's shipment is returned as is; it is not re-read from the store.
// A nil shipment from the adapter is returned without being persisted.
func (s *ShipmentService) FetchRates(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.FetchRates",
		trace.WithAttributes(attribute.String("adapter", s.adapter.Name())),
	)
	defer span.End()
	start := time.Now()

	result, err := s.adapter.FetchRates(ctx, payload)
	if err != nil {
		return nil, s.fetchFailed(ctx, span, start, err)
	}
	if result == nil {
		s.logger.Ctx(ctx).Info("Rate adapter returned no shipment", zap.String("adapter", s.adapter.Name()))
		s.record(opFetchRates, "empty", start)
		return nil, nil
	}
	span.SetAttributes(
		attribute.String("shipment.id", result.ID),
		attribute.Int("rates.count", len(result.Rates)),
	)

	if err := s.repo.CreateShipment(ctx, result); err != nil {
		return nil, s.fetchFailed(ctx, span, start, err)
	}

	s.logger.Ctx(ctx).Info("Shipment rates fetched",
		zap.String("adapter", s.adapter.Name()),
		zap.String("shipment_id", result.ID),
		zap.Int("rates", len(result.Rates)),
	)
	s.record(opFetchRates, "ok", start)
	return result, nil
}

func (s *ShipmentService) fetchFailed(ctx context.Context, span trace.Span, start time.Time, err error) error {
	kind := string(shipment.KindOf(err))
	s.logger.Ctx(ctx).Error("Failed to fetch shipment rates",
		zap.String("adapter", s.adapter.Name()),
		zap.String("kind", kind),
		zap.Error(err),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.metrics != nil {
		s.metrics.RecordError(s.adapter.Name(), kind)
	}
	s.record(opFetchRates, "error", start)
	return shipment.NewRateOrchestrationError(err)
}

// FindShipment returns the stored shipment with the given id, or nil when
// there is none.
func (s *ShipmentService) FindShipment(ctx context.Context, id string) (*shipment.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.FindShipment",
		trace.WithAttributes(attribute.String("shipment.id", id)),
	)
	defer span.End()
	start := time.Now()

	found, err := s.repo.FindShipment(ctx, id)
	if err != nil {
		s.logger.Ctx(ctx).Error("Failed to find shipment", zap.String("shipment_id", id), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(opFindShipment, "error", start)
		return nil, shipment.NewLookupError(err)
	}

	status := "ok"
	if found == nil {
		status = "empty"
	}
	s.record(opFindShipment, status, start)
	return found, nil
}

func (s *ShipmentService) record(operation, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRequest(operation, status, time.Since(start).Seconds())
}
