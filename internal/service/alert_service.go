package service

import (
	"context"

	"candlekit/internal/alert"
	"candlekit/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// AlertService pairs the alert registry with a live price source so callers
// never hand the registry a stale price.
type AlertService struct {
	tracer   trace.Tracer
	registry *alert.Registry
	prices   alert.PriceSource
}

func NewAlertService(tracer trace.Tracer, registry *alert.Registry, prices alert.PriceSource) *AlertService {
	return &AlertService{tracer: tracer, registry: registry, prices: prices}
}

func (s *AlertService) Set(ctx context.Context, pair string, condition domain.AlertCondition, threshold float64, message string) (domain.Alert, error) {
	_, span := s.tracer.Start(ctx, "alert-service.set")
	defer span.End()

	return s.registry.Set(pair, condition, threshold, message)
}

func (s *AlertService) List(ctx context.Context, pair string) ([]domain.Alert, error) {
	_, span := s.tracer.Start(ctx, "alert-service.list")
	defer span.End()

	if pair != "" {
		normalized, err := domain.NormalizePair(pair)
		if err != nil {
			return nil, err
		}
		pair = normalized
	}
	return s.registry.List(pair), nil
}

func (s *AlertService) Remove(ctx context.Context, id string) (domain.Alert, error) {
	_, span := s.tracer.Start(ctx, "alert-service.remove")
	defer span.End()

	if id == "" {
		return domain.Alert{}, &domain.ValidationError{Field: "id", Reason: "alert id is required"}
	}
	return s.registry.Remove(id)
}

func (s *AlertService) Check(ctx context.Context, pair string) (*alert.CheckReport, error) {
	ctx, span := s.tracer.Start(ctx, "alert-service.check")
	defer span.End()

	if pair != "" {
		normalized, err := domain.NormalizePair(pair)
		if err != nil {
			return nil, err
		}
		pair = normalized
	}
	return s.registry.Check(ctx, s.prices, pair)
}
