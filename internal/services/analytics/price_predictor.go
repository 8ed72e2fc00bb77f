package analytics

import (
	"context"
	"fmt"
	"math"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
	"SmartRental/internal/services/features"
	"SmartRental/pkg/util"
)

// PricePredictor runs the rental cost regressor on the price column layout.
type PricePredictor struct {
	regressor domsvc.Regressor
	encoder   *features.Encoder
}

func NewPricePredictor(reg domsvc.Regressor) *PricePredictor {
	return &PricePredictor{regressor: reg, encoder: features.NewEncoder(features.PriceColumns)}
}

// Predict returns the predicted rental cost in USD rounded to cents.
func (p *PricePredictor) Predict(ctx context.Context, snap models.FeatureSnapshot) (float64, error) {
	if p.regressor == nil {
		return 0, &models.MissingArtifactError{Artifact: "price regressor"}
	}
	v, err := p.regressor.Regress(ctx, p.encoder.Encode(snap))
	if err != nil {
		return 0, fmt.Errorf("regress: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("regressor returned %v", v)
	}
	return util.Round2(v), nil
}
