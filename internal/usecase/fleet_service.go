package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"SmartRental/internal/domain/models"
	"SmartRental/internal/domain/repository"
	"SmartRental/internal/services/features"
	"SmartRental/pkg/logger"

	"github.com/google/uuid"
)

// FleetService answers every fleet query against the snapshot that is
// current when the call starts, and raises risk alerts on positive results.
type FleetService struct {
	holder       *SnapshotHolder
	alerts       repository.AlertPublisher
	metrics      repository.Metrics
	l            *logger.Logger
	alertTimeout time.Duration
	wg           sync.WaitGroup
}

type FleetOption func(*FleetService)

// WithAlerts publishes a RiskAlert for every positive breakdown or anomaly result.
func WithAlerts(p repository.AlertPublisher, timeout time.Duration) FleetOption {
	return func(s *FleetService) {
		s.alerts = p
		if timeout > 0 {
			s.alertTimeout = timeout
		}
	}
}

func WithMetrics(m repository.Metrics) FleetOption {
	return func(s *FleetService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func NewFleetService(holder *SnapshotHolder, l *logger.Logger, opts ...FleetOption) *FleetService {
	if l == nil {
		l = logger.Nop()
	}
	s := &FleetService{holder: holder, metrics: nopMetrics{}, l: l, alertTimeout: 2 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the snapshot new calls will read.
func (s *FleetService) Snapshot() *Snapshot {
	return s.holder.Current()
}

func (s *FleetService) PredictBreakdown(ctx context.Context, raw map[string]interface{}) (models.BreakdownRisk, error) {
	defer s.observe("predict_breakdown", time.Now())
	snap, err := features.Parse(raw)
	if err != nil {
		return models.BreakdownRisk{}, s.fail("predict_breakdown", err)
	}
	risk, err := s.Snapshot().Risk.Score(ctx, snap)
	if err != nil {
		return models.BreakdownRisk{}, s.fail("predict_breakdown", err)
	}

	outcome := "negative"
	if risk.Prediction == 1 {
		outcome = "positive"
		typ, _ := snap.Text(features.Type)
		id, _ := snap.Text(features.EquipmentID)
		s.raise(models.RiskAlert{
			Kind:          models.AlertBreakdown,
			EquipmentType: typ,
			EquipmentID:   id,
			Probability:   risk.Probability,
			Detail:        risk.Label,
		})
	}
	s.metrics.RecordPrediction(string(models.CapBreakdown), outcome)
	return risk, nil
}

func (s *FleetService) DetectAnomaly(ctx context.Context, raw map[string]interface{}) (models.UsageAnomaly, error) {
	defer s.observe("detect_anomaly", time.Now())
	typ, err := equipmentType(raw)
	if err != nil {
		return models.UsageAnomaly{}, s.fail("detect_anomaly", err)
	}
	snap, err := features.Parse(raw)
	if err != nil {
		return models.UsageAnomaly{}, s.fail("detect_anomaly", err)
	}
	res, err := s.Snapshot().Anomaly.Detect(ctx, typ, snap)
	if err != nil {
		return models.UsageAnomaly{}, s.fail("detect_anomaly", err)
	}

	s.metrics.RecordAnomaly(typ, res.IsAnomaly)
	if res.IsAnomaly {
		id, _ := snap.Text(features.EquipmentID)
		s.raise(models.RiskAlert{
			Kind:          models.AlertAnomaly,
			EquipmentType: typ,
			EquipmentID:   id,
			Feature:       res.Feature,
			Detail:        res.Text,
		})
	}
	return res, nil
}

func equipmentType(raw map[string]interface{}) (string, error) {
	v, ok := raw[features.Type]
	if !ok || v == nil {
		return "", models.NewInvalidInput(features.Type, "is required")
	}
	t, ok := v.(string)
	if !ok {
		return "", models.NewInvalidInput(features.Type, "expected a string, got %T", v)
	}
	return strings.TrimSpace(t), nil
}

func (s *FleetService) PredictPrice(ctx context.Context, raw map[string]interface{}) (float64, error) {
	defer s.observe("predict_price", time.Now())
	snap, err := features.Parse(raw)
	if err != nil {
		return 0, s.fail("predict_price", err)
	}
	price, err := s.Snapshot().Price.Predict(ctx, snap)
	if err != nil {
		return 0, s.fail("predict_price", err)
	}
	s.metrics.RecordPrediction(string(models.CapPrice), "ok")
	return price, nil
}

func (s *FleetService) ForecastDemand(ctx context.Context, equipmentType string, periods int) (models.DemandForecast, error) {
	defer s.observe("forecast_demand", time.Now())
	fc, err := s.Snapshot().Forecast.Forecast(ctx, equipmentType, periods)
	if err != nil {
		return models.DemandForecast{}, s.fail("forecast_demand", err)
	}
	s.metrics.RecordPrediction(string(models.CapForecast), "ok")
	return fc, nil
}

func (s *FleetService) AssetStatus(f models.StatusFilter) (models.FleetStatus, error) {
	l, err := s.Snapshot().AssetLedger()
	if err != nil {
		return models.FleetStatus{}, s.fail("asset_status", err)
	}
	return l.Status(f), nil
}

func (s *FleetService) AssetHistory(equipmentID string) (models.AssetHistory, error) {
	l, err := s.Snapshot().AssetLedger()
	if err != nil {
		return models.AssetHistory{}, s.fail("asset_history", err)
	}
	h, err := l.History(equipmentID)
	if err != nil {
		return models.AssetHistory{}, s.fail("asset_history", err)
	}
	return h, nil
}

func (s *FleetService) Underutilized(threshold float64) ([]models.UnderutilizedAsset, error) {
	l, err := s.Snapshot().AssetLedger()
	if err != nil {
		return nil, s.fail("underutilized_assets", err)
	}
	out, err := l.Underutilized(threshold)
	if err != nil {
		return nil, s.fail("underutilized_assets", err)
	}
	return out, nil
}

func (s *FleetService) ReturnsDue(days int) (models.ReturnWindow, error) {
	l, err := s.Snapshot().AssetLedger()
	if err != nil {
		return models.ReturnWindow{}, s.fail("returns_due_soon", err)
	}
	w, err := l.ReturnsDue(days)
	if err != nil {
		return models.ReturnWindow{}, s.fail("returns_due_soon", err)
	}
	return w, nil
}

// Wait blocks until in-flight alert deliveries finish.
func (s *FleetService) Wait() {
	s.wg.Wait()
}

// raise hands the alert to the publisher in the background. Delivery failures
// are logged and counted, never returned to the caller.
func (s *FleetService) raise(a models.RiskAlert) {
	if s.alerts == nil {
		return
	}
	a.ID = uuid.NewString()
	a.EmittedAt = time.Now().UTC()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.alertTimeout)
		defer cancel()
		err := s.alerts.Publish(ctx, a)
		s.metrics.RecordAlert(s.alerts.Name(), err == nil)
		if err != nil {
			s.l.Warn("risk alert not delivered",
				logger.String("alert_id", a.ID),
				logger.String("kind", a.Kind),
				logger.String("backend", s.alerts.Name()),
				logger.Error(err),
			)
		}
	}()
}

func (s *FleetService) observe(op string, start time.Time) {
	s.metrics.RecordLatency(op, time.Since(start).Seconds())
}

// fail counts err under its domain kind and returns it unchanged.
func (s *FleetService) fail(op string, err error) error {
	s.metrics.RecordError(ErrorKind(err))
	if ErrorKind(err) == "internal" {
		s.l.Error("request failed", logger.String("op", op), logger.Error(err))
	}
	return err
}

// ErrorKind names the domain error class of err.
func ErrorKind(err error) string {
	var (
		missing *models.MissingArtifactError
		unknown *models.UnknownTypeError
		nf      *models.NotFoundError
		invalid *models.InvalidInputError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_artifact"
	case errors.As(err, &unknown):
		return "unknown_type"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid_input"
	default:
		return "internal"
	}
}
