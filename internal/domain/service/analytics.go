package service

import (
	"context"

	"SmartRental/internal/domain/models"
)

// Classifier returns the probability of the positive class for an encoded row.
// The row is keyed by the artifact's column names; absent columns are zero.
type Classifier interface {
	Classify(ctx context.Context, row map[string]float64) (float64, error)
}

// Regressor predicts a scalar for an encoded row.
type Regressor interface {
	Regress(ctx context.Context, row map[string]float64) (float64, error)
}

// Forecaster extends its training history by horizon days and returns the full
// sequence (history followed by the horizon), ordered by date.
type Forecaster interface {
	Forecast(ctx context.Context, horizon int) ([]models.ForecastPoint, error)
}

// Baselines returns per-feature (mean, std) statistics for a scope: GlobalScope or an equipment type.
type Baselines interface {
	Get(scope string) (models.BaselineStats, error)
}

// ForecasterCatalog resolves the forecaster trained for an equipment type.
type ForecasterCatalog interface {
	Forecaster(equipmentType string) (Forecaster, error)
}
