package artifacts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"SmartRental/internal/domain/models"
	"SmartRental/internal/domain/repository"
	domsvc "SmartRental/internal/domain/service"
	"SmartRental/internal/services/features"
	"SmartRental/pkg/codec"
	"SmartRental/pkg/logger"
)

// Artifact names as exported by the training jobs.
const (
	BreakdownBaseline = "breakdown_stats"
	BreakdownModel    = "rental_predictor"
	PriceModel        = "price_predictor"
	anomalyPrefix     = "anomaly_detector_"
	forecastPrefix    = "demand_forecaster_"
)

func AnomalyBaselineName(equipmentType string) string { return anomalyPrefix + equipmentType }

func ForecasterName(equipmentType string) string { return forecastPrefix + equipmentType }

// Report records the outcome of one load pass.
type Report struct {
	Loaded  []string
	Missing []string
	Failed  map[string]error
}

func (r *Report) record(name string, err error) {
	switch {
	case err == nil:
		r.Loaded = append(r.Loaded, name)
	case errors.Is(err, repository.ErrArtifactNotFound):
		r.Missing = append(r.Missing, name)
	default:
		r.Failed[name] = err
	}
}

// Loader builds a Registry from an artifact source. Each artifact loads on
// its own; a failure only leaves that artifact out of the registry.
type Loader struct {
	src    repository.ArtifactSource
	types  []string
	remote *RemoteModel
	l      *logger.Logger
}

type LoaderOption func(*Loader)

// WithRemote serves the classifier and regressor from a model service instead of the source.
func WithRemote(m *RemoteModel) LoaderOption {
	return func(ld *Loader) {
		ld.remote = m
	}
}

func NewLoader(src repository.ArtifactSource, equipmentTypes []string, l *logger.Logger, opts ...LoaderOption) *Loader {
	if l == nil {
		l = logger.Nop()
	}
	ld := &Loader{src: src, types: equipmentTypes, l: l}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load fetches and decodes every artifact. It never fails as a whole.
func (ld *Loader) Load(ctx context.Context) (*Registry, Report) {
	rep := Report{Failed: map[string]error{}}
	scopes := map[string]models.BaselineStats{}

	global, err := ld.baseline(ctx, BreakdownBaseline)
	rep.record(BreakdownBaseline, err)
	if err == nil {
		scopes[models.GlobalScope] = global
	}

	for _, t := range ld.types {
		if t == models.GlobalScope {
			continue
		}
		name := AnomalyBaselineName(t)
		stats, err := ld.baseline(ctx, name)
		if err == nil {
			err = requireFeatures(stats, features.AnomalyFeatures)
		}
		rep.record(name, err)
		if err == nil {
			scopes[t] = stats
		}
	}

	var clf domsvc.Classifier
	var reg domsvc.Regressor
	if ld.remote != nil {
		clf = ld.remote.Classifier(BreakdownModel)
		reg = ld.remote.Regressor(PriceModel)
		rep.Loaded = append(rep.Loaded, BreakdownModel, PriceModel)
	} else {
		c, err := ld.classifier(ctx, BreakdownModel)
		rep.record(BreakdownModel, err)
		if err == nil {
			clf = c
		}
		r, err := ld.regressor(ctx, PriceModel)
		rep.record(PriceModel, err)
		if err == nil {
			reg = r
		}
	}

	forecasters := map[string]domsvc.Forecaster{}
	for _, t := range ld.types {
		name := ForecasterName(t)
		f, err := ld.forecaster(ctx, name)
		rep.record(name, err)
		if err == nil {
			forecasters[t] = f
		}
	}

	sort.Strings(rep.Missing)
	for name, err := range rep.Failed {
		ld.l.Error("artifact rejected", logger.String("artifact", name), logger.Error(err))
	}
	if len(rep.Missing) > 0 {
		ld.l.Warn("artifacts missing", logger.Strings("artifacts", rep.Missing))
	}
	ld.l.Info("artifacts loaded",
		logger.String("source", ld.src.Name()),
		logger.Int("loaded", len(rep.Loaded)),
		logger.Int("missing", len(rep.Missing)),
		logger.Int("failed", len(rep.Failed)),
	)

	return NewRegistry(NewBaselineStore(scopes), clf, reg, forecasters), rep
}

func (ld *Loader) fetch(ctx context.Context, name string) ([]byte, string, error) {
	data, format, err := ld.src.Fetch(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", name, err)
	}
	return data, format, nil
}

func (ld *Loader) baseline(ctx context.Context, name string) (models.BaselineStats, error) {
	data, format, err := ld.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeBaseline(format, data)
}

type kindHeader struct {
	Kind string `json:"kind"`
}

func (ld *Loader) classifier(ctx context.Context, name string) (domsvc.Classifier, error) {
	data, format, err := ld.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeClassifier(format, data)
}

func (ld *Loader) regressor(ctx context.Context, name string) (domsvc.Regressor, error) {
	data, format, err := ld.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeRegressor(format, data)
}

func (ld *Loader) forecaster(ctx context.Context, name string) (domsvc.Forecaster, error) {
	data, format, err := ld.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeForecaster(format, data)
}

// DecodeClassifier accepts logistic, random_forest and gbdt artifacts.
func DecodeClassifier(format string, data []byte) (domsvc.Classifier, error) {
	m, err := decodeModel(format, data, KindLogistic)
	if err != nil {
		return nil, err
	}
	return m.(domsvc.Classifier), nil
}

// DecodeRegressor accepts linear, random_forest and gbdt artifacts.
func DecodeRegressor(format string, data []byte) (domsvc.Regressor, error) {
	m, err := decodeModel(format, data, KindLinear)
	if err != nil {
		return nil, err
	}
	return m.(domsvc.Regressor), nil
}

// decodeModel reads the kind header, then the matching body. linearKind is
// the only linear kind accepted for the caller's role.
func decodeModel(format string, data []byte, linearKind string) (interface{}, error) {
	var h kindHeader
	if err := codec.Unmarshal(format, data, &h); err != nil {
		return nil, fmt.Errorf("decode model header: %w", err)
	}
	switch h.Kind {
	case linearKind:
		var m LinearModel
		if err := codec.Unmarshal(format, data, &m); err != nil {
			return nil, fmt.Errorf("decode %s model: %w", h.Kind, err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return &m, nil
	case KindRandomForest, KindGBDT:
		var e TreeEnsemble
		if err := codec.Unmarshal(format, data, &e); err != nil {
			return nil, fmt.Errorf("decode %s model: %w", h.Kind, err)
		}
		if err := e.validate(); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("model kind %q not supported here", h.Kind)
	}
}

func DecodeForecaster(format string, data []byte) (domsvc.Forecaster, error) {
	var f TrendForecaster
	if err := codec.Unmarshal(format, data, &f); err != nil {
		return nil, fmt.Errorf("decode forecaster: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
