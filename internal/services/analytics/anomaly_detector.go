package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
	"SmartRental/internal/services/features"
)

const anomalyZThreshold = 3.0

const normalUsage = "Normal Usage"

// AnomalyDetector checks a snapshot against its equipment type's usage baseline.
// Features are checked in features.AnomalyFeatures order and the first one
// with |z| > 3 is reported.
type AnomalyDetector struct {
	baselines domsvc.Baselines
}

// NewAnomalyDetector wires the detector. nil baselines means no per-type
// baseline loaded at all.
func NewAnomalyDetector(baselines domsvc.Baselines) *AnomalyDetector {
	return &AnomalyDetector{baselines: baselines}
}

func (d *AnomalyDetector) Detect(_ context.Context, equipmentType string, snap models.FeatureSnapshot) (models.UsageAnomaly, error) {
	if equipmentType == "" {
		return models.UsageAnomaly{}, models.NewInvalidInput(features.Type, "is required")
	}
	if d.baselines == nil {
		return models.UsageAnomaly{}, &models.MissingArtifactError{Artifact: "anomaly baselines"}
	}
	if equipmentType == models.GlobalScope {
		return models.UsageAnomaly{}, &models.UnknownTypeError{Capability: string(models.CapAnomaly), Type: equipmentType}
	}
	stats, err := d.baselines.Get(equipmentType)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return models.UsageAnomaly{}, &models.UnknownTypeError{Capability: string(models.CapAnomaly), Type: equipmentType}
		}
		return models.UsageAnomaly{}, err
	}

	res := models.UsageAnomaly{EquipmentType: equipmentType, Text: normalUsage}
	for _, name := range features.AnomalyFeatures {
		st, ok := stats[name]
		if !ok || st.Std <= 0 {
			continue
		}
		v, ok := snap.Number(name)
		if !ok {
			// Absent means typical for the type.
			v = st.Mean
		}
		z := (v - st.Mean) / st.Std
		if math.Abs(z) > anomalyZThreshold {
			res.IsAnomaly = true
			res.Feature = name
			res.Z = z
			res.Text = fmt.Sprintf("Anomalous Usage Detected: %s is abnormal", name)
			return res, nil
		}
	}
	return res, nil
}
