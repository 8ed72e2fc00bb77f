package models

import "time"

// FeatureKind tells numeric and categorical feature values apart.
type FeatureKind int

const (
	FeatureNumeric FeatureKind = iota + 1
	FeatureCategorical
)

// FeatureValue is one measured attribute of an asset.
type FeatureValue struct {
	Kind FeatureKind
	Num  float64
	Str  string
}

func Numeric(v float64) FeatureValue { return FeatureValue{Kind: FeatureNumeric, Num: v} }

func Categorical(v string) FeatureValue { return FeatureValue{Kind: FeatureCategorical, Str: v} }

func (v FeatureValue) IsNumeric() bool { return v.Kind == FeatureNumeric }

func (v FeatureValue) IsCategorical() bool { return v.Kind == FeatureCategorical }

// FeatureSnapshot is one asset's measured attributes at a point in time. It may be partial.
type FeatureSnapshot map[string]FeatureValue

// Number returns the numeric value for name, if present and numeric.
func (s FeatureSnapshot) Number(name string) (float64, bool) {
	v, ok := s[name]
	if !ok || !v.IsNumeric() {
		return 0, false
	}
	return v.Num, true
}

// Text returns the categorical value for name, if present and categorical.
func (s FeatureSnapshot) Text(name string) (string, bool) {
	v, ok := s[name]
	if !ok || !v.IsCategorical() {
		return "", false
	}
	return v.Str, true
}

// FeatureStat is the training distribution of one feature.
type FeatureStat struct {
	Mean float64
	Std  float64
}

// BaselineStats maps feature name to its (mean, std) for one scope.
type BaselineStats map[string]FeatureStat

// GlobalScope is the fleet-wide baseline scope used for breakdown risk.
const GlobalScope = "global"

// BreakdownRisk is the blended breakdown score for one snapshot.
type BreakdownRisk struct {
	StatProbability  float64
	ModelProbability float64
	Probability      float64
	MaxZ             float64
	Prediction       int
	Label            string
}

// UsageAnomaly is the anomaly verdict for one snapshot of one equipment type.
type UsageAnomaly struct {
	EquipmentType string
	IsAnomaly     bool
	Feature       string
	Z             float64
	Text          string
}

// ForecastPoint is one day of a demand forecast.
type ForecastPoint struct {
	Date  time.Time
	Yhat  float64
	Lower float64
	Upper float64
}

// DemandForecast holds the requested horizon for one equipment type.
type DemandForecast struct {
	EquipmentType string
	Points        []ForecastPoint
}

// RiskAlert is emitted when a scorer flags an asset.
type RiskAlert struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	EquipmentType string    `json:"equipment_type,omitempty"`
	EquipmentID   string    `json:"equipment_id,omitempty"`
	Probability   float64   `json:"probability,omitempty"`
	Feature       string    `json:"feature,omitempty"`
	Detail        string    `json:"detail"`
	EmittedAt     time.Time `json:"emitted_at"`
}

const (
	AlertBreakdown = "breakdown"
	AlertAnomaly   = "anomaly"
)

// Capability names one independently loaded artifact family.
type Capability string

const (
	CapBreakdown Capability = "predict_breakdown"
	CapPrice     Capability = "predict_price"
	CapForecast  Capability = "forecast_demand"
	CapAnomaly   Capability = "detect_anomaly"
	CapLedger    Capability = "asset_ledger"
)
