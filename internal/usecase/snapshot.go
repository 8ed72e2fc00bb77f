package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"SmartRental/internal/domain/models"
	"SmartRental/internal/domain/repository"
	"SmartRental/internal/services/analytics"
	"SmartRental/internal/services/artifacts"
	"SmartRental/pkg/logger"
)

// Snapshot is everything a request reads: artifacts, the ledger and the
// scorers built on them. It is immutable once published.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Registry *artifacts.Registry
	Ledger   *AssetLedger

	Risk     *analytics.RiskScorer
	Anomaly  *analytics.AnomalyDetector
	Forecast *analytics.DemandForecastService
	Price    *analytics.PricePredictor
}

// NewSnapshot builds the scorers over reg. ledger may be nil.
func NewSnapshot(version uint64, reg *artifacts.Registry, ledger *AssetLedger) *Snapshot {
	if reg == nil {
		reg = artifacts.NewRegistry(nil, nil, nil, nil)
	}
	clf, _ := reg.Classifier()
	rgr, _ := reg.Regressor()

	s := &Snapshot{
		Version:  version,
		LoadedAt: time.Now().UTC(),
		Registry: reg,
		Ledger:   ledger,
		Risk:     analytics.NewRiskScorer(reg.Baselines(), clf),
		Forecast: analytics.NewDemandForecastService(reg),
		Price:    analytics.NewPricePredictor(rgr),
	}
	if len(reg.Baselines().Types()) > 0 {
		s.Anomaly = analytics.NewAnomalyDetector(reg.Baselines())
	} else {
		s.Anomaly = analytics.NewAnomalyDetector(nil)
	}
	return s
}

// AssetLedger returns the ledger or a MissingArtifactError when it did not load.
func (s *Snapshot) AssetLedger() (*AssetLedger, error) {
	if s.Ledger == nil {
		return nil, &models.MissingArtifactError{Artifact: "rental ledger"}
	}
	return s.Ledger, nil
}

// Capabilities reports availability per capability, the ledger included.
func (s *Snapshot) Capabilities() map[models.Capability]bool {
	caps := s.Registry.Capabilities()
	caps[models.CapLedger] = s.Ledger != nil
	return caps
}

// SnapshotHolder publishes the active snapshot. Readers never block; a
// reload swaps the pointer whole.
type SnapshotHolder struct {
	cur atomic.Pointer[Snapshot]
}

func NewSnapshotHolder() *SnapshotHolder {
	h := &SnapshotHolder{}
	h.cur.Store(NewSnapshot(0, nil, nil))
	return h
}

func (h *SnapshotHolder) Current() *Snapshot {
	return h.cur.Load()
}

func (h *SnapshotHolder) Store(s *Snapshot) {
	h.cur.Store(s)
}

// SnapshotLoader assembles snapshots from the artifact loader and the ledger source.
type SnapshotLoader struct {
	artifacts *artifacts.Loader
	ledger    repository.LedgerSource
	metrics   repository.Metrics
	l         *logger.Logger
	timeout   time.Duration
	version   atomic.Uint64
}

func NewSnapshotLoader(al *artifacts.Loader, ledger repository.LedgerSource, m repository.Metrics, l *logger.Logger, timeout time.Duration) *SnapshotLoader {
	if m == nil {
		m = nopMetrics{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &SnapshotLoader{artifacts: al, ledger: ledger, metrics: m, l: l, timeout: timeout}
}

// Load builds a new snapshot. Each part degrades on its own, so Load always
// returns a usable snapshot.
func (ld *SnapshotLoader) Load(ctx context.Context) *Snapshot {
	if ld.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ld.timeout)
		defer cancel()
	}
	start := time.Now()

	reg, _ := ld.artifacts.Load(ctx)
	ledger := ld.loadLedger(ctx)

	snap := NewSnapshot(ld.version.Add(1), reg, ledger)
	for c, ok := range snap.Capabilities() {
		ld.metrics.SetCapability(string(c), ok)
	}
	if ledger != nil {
		ev, as := ledger.Size()
		ld.metrics.SetLedgerSize(ev, as)
	}
	ld.metrics.RecordLatency("snapshot_load", time.Since(start).Seconds())
	ld.l.Info("snapshot loaded",
		logger.Int64("version", int64(snap.Version)),
		logger.Any("capabilities", snap.Capabilities()),
		logger.Duration("took", time.Since(start)),
	)
	return snap
}

func (ld *SnapshotLoader) loadLedger(ctx context.Context) *AssetLedger {
	if ld.ledger == nil {
		return nil
	}
	events, err := ld.ledger.Load(ctx)
	if err != nil {
		ld.metrics.RecordError("ledger_load")
		ld.l.Error("ledger load failed", logger.String("source", ld.ledger.Name()), logger.Error(err))
		return nil
	}
	ledger, err := NewAssetLedger(events)
	if err != nil {
		ld.l.Warn("ledger unavailable", logger.String("source", ld.ledger.Name()), logger.Error(err))
		return nil
	}
	ld.l.Info("ledger loaded",
		logger.String("source", ld.ledger.Name()),
		logger.Int("events", len(events)),
		logger.String("reference_date", ledger.ReferenceDate().Format("2006-01-02")),
	)
	return ledger
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, string) {}
func (nopMetrics) RecordAnomaly(string, bool)      {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) SetCapability(string, bool)      {}
func (nopMetrics) SetLedgerSize(int, int)          {}
func (nopMetrics) RecordAlert(string, bool)        {}
