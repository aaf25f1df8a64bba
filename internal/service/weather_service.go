package service

import (
	"context"
	"errors"

	"github.com/w920801-a11y/climate-try/internal/orchestrator"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

type WeatherService interface {
	GetWeather(ctx context.Context, loc weather.Location) (*weather.Snapshot, error)
	CheckOracle(ctx context.Context) bool
}

type weatherService struct {
	aggregator   WeatherRequestAggregator
	orchestrator orchestrator.Orchestrator
}

func NewWeatherService(aggregator WeatherRequestAggregator, orch orchestrator.Orchestrator) WeatherService {
	return &weatherService{
		aggregator:   aggregator,
		orchestrator: orch,
	}
}

func (s *weatherService) GetWeather(ctx context.Context, loc weather.Location) (*weather.Snapshot, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	responseChan, err := s.aggregator.AddRequest(ctx, loc)
	if err != nil {
		return nil, err
	}

	select {
	case result := <-responseChan:
		if result.Error != "" {
			return nil, errors.New(result.Error)
		}
		return result.Snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CheckOracle is the health probe. It bypasses the aggregator and cache on
// purpose: a dead credential should be visible even when every location is
// still served from cache.
func (s *weatherService) CheckOracle(ctx context.Context) bool {
	return s.orchestrator.TestOracleConnection(ctx)
}
