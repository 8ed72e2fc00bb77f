package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
	"SmartRental/internal/services/features"
)

type fixedClassifier struct {
	p   float64
	row map[string]float64
}

func (c *fixedClassifier) Classify(_ context.Context, row map[string]float64) (float64, error) {
	c.row = row
	return c.p, nil
}

type fixedRegressor float64

func (r fixedRegressor) Regress(context.Context, map[string]float64) (float64, error) {
	return float64(r), nil
}

type baselineMap map[string]models.BaselineStats

func (b baselineMap) Get(scope string) (models.BaselineStats, error) {
	s, ok := b[scope]
	if !ok {
		return nil, &models.NotFoundError{Kind: "baseline", Key: scope}
	}
	return s, nil
}

func TestStatProbability(t *testing.T) {
	cases := []struct {
		z    float64
		want float64
	}{
		{0, 0},
		{2.5, 0},
		{3.75, 0.475},
		{5, 0.95},
		{10, 0.95},
		{1e9, 0.95},
	}
	for _, tc := range cases {
		if got := StatProbability(tc.z); got != tc.want {
			t.Errorf("StatProbability(%v) = %v, want %v", tc.z, got, tc.want)
		}
	}
}

func TestRiskScorerClampsOutlier(t *testing.T) {
	baselines := baselineMap{models.GlobalScope: {features.OperatingHours: {Mean: 100, Std: 10}}}
	clf := &fixedClassifier{p: 0.1}
	s := NewRiskScorer(baselines, clf)

	risk, err := s.Score(context.Background(), models.FeatureSnapshot{
		features.OperatingHours: models.Numeric(200),
		features.Type:           models.Categorical("Crane"),
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if risk.MaxZ != 10 || risk.StatProbability != 0.95 {
		t.Fatalf("expected z=10 and stat=0.95, got %+v", risk)
	}
	if risk.Probability != 0.95 || risk.Prediction != 1 || risk.Label != LabelLikely {
		t.Fatalf("unexpected decision: %+v", risk)
	}
	if clf.row["Type_Crane"] != 1 || clf.row[features.OperatingHours] != 200 {
		t.Fatalf("classifier saw unexpected row: %v", clf.row)
	}
	if v, ok := clf.row[features.IdleHours]; !ok || v != 0 {
		t.Fatalf("absent columns must be filled with 0")
	}
}

func TestRiskScorerBlendIsMax(t *testing.T) {
	baselines := baselineMap{models.GlobalScope: {
		features.OperatingHours: {Mean: 100, Std: 10},
		features.IdleHours:      {Mean: 5, Std: 0},
	}}
	for _, tc := range []struct {
		hours, model float64
	}{
		{100, 0.2}, {130, 0.2}, {140, 0.7}, {160, 0.05}, {100, 0.51}, {100, 0.5},
	} {
		risk, err := NewRiskScorer(baselines, &fixedClassifier{p: tc.model}).Score(context.Background(), models.FeatureSnapshot{
			features.OperatingHours: models.Numeric(tc.hours),
			features.IdleHours:      models.Numeric(1e6),
		})
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if risk.Probability < risk.StatProbability || risk.Probability < risk.ModelProbability {
			t.Fatalf("blend below a channel: %+v", risk)
		}
		if (risk.Prediction == 1) != (risk.Probability > 0.5) {
			t.Fatalf("decision does not follow threshold: %+v", risk)
		}
	}
}

func TestRiskScorerZeroVarianceAndAbsentFeatures(t *testing.T) {
	baselines := baselineMap{models.GlobalScope: {
		features.OperatingHours: {Mean: 100, Std: 10},
		features.IdleHours:      {Mean: 5, Std: 0},
	}}
	risk, err := NewRiskScorer(baselines, &fixedClassifier{p: 0}).Score(context.Background(), models.FeatureSnapshot{
		features.IdleHours: models.Numeric(1e6),
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if risk.MaxZ != 0 || risk.StatProbability != 0 || risk.Prediction != 0 || risk.Label != LabelUnlikely {
		t.Fatalf("zero-variance and absent features must not contribute: %+v", risk)
	}
}

func TestRiskScorerMissingArtifacts(t *testing.T) {
	var missing *models.MissingArtifactError
	if _, err := NewRiskScorer(baselineMap{}, &fixedClassifier{}).Score(context.Background(), nil); !errors.As(err, &missing) {
		t.Fatalf("missing baseline: expected MissingArtifactError, got %v", err)
	}
	if _, err := NewRiskScorer(baselineMap{models.GlobalScope: {}}, nil).Score(context.Background(), nil); !errors.As(err, &missing) {
		t.Fatalf("missing classifier: expected MissingArtifactError, got %v", err)
	}
}

func craneBaseline() baselineMap {
	return baselineMap{"Crane": {
		features.OperatingHours:  {Mean: 100, Std: 10},
		features.IdleHours:       {Mean: 20, Std: 5},
		features.FuelConsumed:    {Mean: 300, Std: 30},
		features.FuelEfficiency:  {Mean: 3, Std: 0.5},
		features.LoadCycles:      {Mean: 50, Std: 0},
		features.UtilizationRate: {Mean: 0.7, Std: 0.1},
	}}
}

func TestAnomalyFirstFeatureWins(t *testing.T) {
	d := NewAnomalyDetector(craneBaseline())
	res, err := d.Detect(context.Background(), "Crane", models.FeatureSnapshot{
		features.FuelConsumed: models.Numeric(1000),
		features.IdleHours:    models.Numeric(40),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !res.IsAnomaly || res.Feature != features.IdleHours {
		t.Fatalf("expected Idle_Hours to be reported first, got %+v", res)
	}
	if res.Text != "Anomalous Usage Detected: Idle_Hours is abnormal" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Z != 4 {
		t.Fatalf("expected signed z 4, got %v", res.Z)
	}
}

func TestAnomalyNegativeZAndDefaults(t *testing.T) {
	d := NewAnomalyDetector(craneBaseline())
	res, err := d.Detect(context.Background(), "Crane", models.FeatureSnapshot{
		features.OperatingHours: models.Numeric(50),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !res.IsAnomaly || res.Z != -5 {
		t.Fatalf("expected low operating hours to be anomalous, got %+v", res)
	}

	res, err = d.Detect(context.Background(), "Crane", models.FeatureSnapshot{
		features.LoadCycles:     models.Numeric(1e9),
		features.OperatingHours: models.Numeric(130),
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if res.IsAnomaly || res.Text != "Normal Usage" {
		t.Fatalf("z=3 exactly and zero-variance features must stay normal, got %+v", res)
	}
}

func TestAnomalyUnknownType(t *testing.T) {
	d := NewAnomalyDetector(craneBaseline())
	var unknown *models.UnknownTypeError
	if _, err := d.Detect(context.Background(), "Forklift", nil); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if _, err := d.Detect(context.Background(), models.GlobalScope, nil); !errors.As(err, &unknown) {
		t.Fatalf("global scope is not an equipment type, got %v", err)
	}
	var invalid *models.InvalidInputError
	if _, err := d.Detect(context.Background(), "", nil); !errors.As(err, &invalid) || invalid.Field != "Type" {
		t.Fatalf("expected InvalidInputError on Type, got %v", err)
	}
}

type seqForecaster struct{ history int }

func (f seqForecaster) Forecast(_ context.Context, horizon int) ([]models.ForecastPoint, error) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.ForecastPoint, f.history+horizon)
	for i := range out {
		out[i] = models.ForecastPoint{Date: start.AddDate(0, 0, i), Yhat: float64(i)}
	}
	return out, nil
}

type catalog map[string]domsvc.Forecaster

func (c catalog) Forecaster(t string) (domsvc.Forecaster, error) {
	f, ok := c[t]
	if !ok {
		return nil, &models.UnknownTypeError{Capability: string(models.CapForecast), Type: t}
	}
	return f, nil
}

func TestDemandForecastTail(t *testing.T) {
	s := NewDemandForecastService(catalog{"Crane": seqForecaster{history: 100}})
	fc, err := s.Forecast(context.Background(), "Crane", 30)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(fc.Points) != 30 || fc.Points[0].Yhat != 100 || fc.Points[29].Yhat != 129 {
		t.Fatalf("expected the 30 future points, got %d starting %v", len(fc.Points), fc.Points[0].Yhat)
	}

	var invalid *models.InvalidInputError
	if _, err := s.Forecast(context.Background(), "Crane", 0); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for periods=0, got %v", err)
	}
	var unknown *models.UnknownTypeError
	if _, err := s.Forecast(context.Background(), "Forklift", 5); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
}

func TestPricePredictor(t *testing.T) {
	got, err := NewPricePredictor(fixedRegressor(1234.5678)).Predict(context.Background(), nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != 1234.57 {
		t.Fatalf("expected 1234.57, got %v", got)
	}
	var missing *models.MissingArtifactError
	if _, err := NewPricePredictor(nil).Predict(context.Background(), nil); !errors.As(err, &missing) {
		t.Fatalf("expected MissingArtifactError, got %v", err)
	}
}
