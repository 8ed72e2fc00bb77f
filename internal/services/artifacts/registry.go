package artifacts

import (
	"sort"

	"SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
)

// Registry indexes the loaded artifacts by capability. Absent artifacts are
// nil; lookups report them as MissingArtifactError or UnknownTypeError.
type Registry struct {
	baselines   *BaselineStore
	classifier  domsvc.Classifier
	regressor   domsvc.Regressor
	forecasters map[string]domsvc.Forecaster
}

func NewRegistry(baselines *BaselineStore, clf domsvc.Classifier, reg domsvc.Regressor, forecasters map[string]domsvc.Forecaster) *Registry {
	if baselines == nil {
		baselines = NewBaselineStore(nil)
	}
	fc := make(map[string]domsvc.Forecaster, len(forecasters))
	for t, f := range forecasters {
		if f != nil {
			fc[t] = f
		}
	}
	return &Registry{baselines: baselines, classifier: clf, regressor: reg, forecasters: fc}
}

func (r *Registry) Baselines() *BaselineStore {
	return r.baselines
}

// Classifier returns the breakdown classifier.
func (r *Registry) Classifier() (domsvc.Classifier, error) {
	if r.classifier == nil {
		return nil, &models.MissingArtifactError{Artifact: "breakdown classifier"}
	}
	return r.classifier, nil
}

// Regressor returns the price regressor.
func (r *Registry) Regressor() (domsvc.Regressor, error) {
	if r.regressor == nil {
		return nil, &models.MissingArtifactError{Artifact: "price regressor"}
	}
	return r.regressor, nil
}

// Forecaster returns the demand forecaster trained for equipmentType.
func (r *Registry) Forecaster(equipmentType string) (domsvc.Forecaster, error) {
	f, ok := r.forecasters[equipmentType]
	if !ok {
		return nil, &models.UnknownTypeError{Capability: string(models.CapForecast), Type: equipmentType}
	}
	return f, nil
}

// ForecastTypes lists the equipment types with a forecaster, sorted.
func (r *Registry) ForecastTypes() []string {
	out := make([]string, 0, len(r.forecasters))
	for t := range r.forecasters {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Capabilities reports which scoring capabilities have everything they need.
func (r *Registry) Capabilities() map[models.Capability]bool {
	return map[models.Capability]bool{
		models.CapBreakdown: r.classifier != nil && r.baselines.Has(models.GlobalScope),
		models.CapPrice:     r.regressor != nil,
		models.CapForecast:  len(r.forecasters) > 0,
		models.CapAnomaly:   len(r.baselines.Types()) > 0,
	}
}
