package analytics

import (
	"context"
	"fmt"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
)

const (
	DefaultForecastPeriods = 30
	MaxForecastPeriods     = 3650
)

// DemandForecastService hands the horizon to the type's forecaster and keeps
// the last periods points of what it returns.
type DemandForecastService struct {
	catalog domsvc.ForecasterCatalog
}

func NewDemandForecastService(catalog domsvc.ForecasterCatalog) *DemandForecastService {
	return &DemandForecastService{catalog: catalog}
}

func (s *DemandForecastService) Forecast(ctx context.Context, equipmentType string, periods int) (models.DemandForecast, error) {
	if equipmentType == "" {
		return models.DemandForecast{}, models.NewInvalidInput("equipment_type", "is required")
	}
	if periods < 1 || periods > MaxForecastPeriods {
		return models.DemandForecast{}, models.NewInvalidInput("periods", "must be an integer between 1 and %d", MaxForecastPeriods)
	}
	if s.catalog == nil {
		return models.DemandForecast{}, &models.MissingArtifactError{Artifact: "demand forecasters"}
	}
	f, err := s.catalog.Forecaster(equipmentType)
	if err != nil {
		return models.DemandForecast{}, err
	}

	seq, err := f.Forecast(ctx, periods)
	if err != nil {
		return models.DemandForecast{}, fmt.Errorf("forecast %s: %w", equipmentType, err)
	}
	if len(seq) > periods {
		seq = seq[len(seq)-periods:]
	}
	return models.DemandForecast{EquipmentType: equipmentType, Points: seq}, nil
}
