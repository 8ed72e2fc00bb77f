package analytics

import (
	"context"
	"fmt"
	"math"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
	"SmartRental/internal/services/features"
)

const (
	statZFloor        = 2.5
	statZCeil         = 5.0
	statCap           = 0.95
	decisionThreshold = 0.5

	LabelLikely   = "Likely Breakdown"
	LabelUnlikely = "No Breakdown Likely"
)

// StatProbability maps the worst z-score onto [0, 0.95]: zero up to 2.5,
// linear up to 5, flat at 0.95 beyond.
func StatProbability(maxZ float64) float64 {
	switch {
	case maxZ <= statZFloor:
		return 0
	case maxZ >= statZCeil:
		return statCap
	default:
		return statCap * ((maxZ - statZFloor) / (statZCeil - statZFloor))
	}
}

// MaxZ returns the largest |v-mean|/std over numeric features present in both
// the snapshot and stats. Zero-variance features are skipped.
func MaxZ(snap models.FeatureSnapshot, stats models.BaselineStats) float64 {
	maxZ := 0.0
	for name, st := range stats {
		if st.Std <= 0 {
			continue
		}
		v, ok := snap.Number(name)
		if !ok {
			continue
		}
		if z := math.Abs(v-st.Mean) / st.Std; z > maxZ {
			maxZ = z
		}
	}
	return maxZ
}

// RiskScorer blends a z-score outlier signal with the breakdown classifier.
// Either channel alone can push the score over the decision threshold.
type RiskScorer struct {
	baselines  domsvc.Baselines
	classifier domsvc.Classifier
	encoder    *features.Encoder
}

// NewRiskScorer wires the scorer. A nil classifier or baselines leaves the
// capability unavailable.
func NewRiskScorer(baselines domsvc.Baselines, clf domsvc.Classifier) *RiskScorer {
	return &RiskScorer{
		baselines:  baselines,
		classifier: clf,
		encoder:    features.NewEncoder(features.BreakdownColumns),
	}
}

func (s *RiskScorer) Score(ctx context.Context, snap models.FeatureSnapshot) (models.BreakdownRisk, error) {
	if s.classifier == nil {
		return models.BreakdownRisk{}, &models.MissingArtifactError{Artifact: "breakdown classifier"}
	}
	if s.baselines == nil {
		return models.BreakdownRisk{}, &models.MissingArtifactError{Artifact: "breakdown baseline"}
	}
	stats, err := s.baselines.Get(models.GlobalScope)
	if err != nil {
		return models.BreakdownRisk{}, &models.MissingArtifactError{Artifact: "breakdown baseline"}
	}

	maxZ := MaxZ(snap, stats)
	stat := StatProbability(maxZ)

	model, err := s.classifier.Classify(ctx, s.encoder.Encode(snap))
	if err != nil {
		return models.BreakdownRisk{}, fmt.Errorf("classify: %w", err)
	}
	if math.IsNaN(model) || model < 0 || model > 1 {
		return models.BreakdownRisk{}, fmt.Errorf("classifier probability out of range: %v", model)
	}

	risk := models.BreakdownRisk{
		StatProbability:  stat,
		ModelProbability: model,
		Probability:      math.Max(stat, model),
		MaxZ:             maxZ,
		Label:            LabelUnlikely,
	}
	if risk.Probability > decisionThreshold {
		risk.Prediction = 1
		risk.Label = LabelLikely
	}
	return risk, nil
}
