package artifacts

import (
	"fmt"
	"math"
	"sort"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/codec"
)

// BaselineStore holds (mean, std) statistics per scope. It is built once and never mutated.
type BaselineStore struct {
	scopes map[string]models.BaselineStats
}

// NewBaselineStore copies scopes into a read-only store.
func NewBaselineStore(scopes map[string]models.BaselineStats) *BaselineStore {
	cp := make(map[string]models.BaselineStats, len(scopes))
	for scope, stats := range scopes {
		s := make(models.BaselineStats, len(stats))
		for f, st := range stats {
			s[f] = st
		}
		cp[scope] = s
	}
	return &BaselineStore{scopes: cp}
}

// Get returns the statistics for scope or a NotFoundError.
func (s *BaselineStore) Get(scope string) (models.BaselineStats, error) {
	if s != nil {
		if stats, ok := s.scopes[scope]; ok {
			return stats, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "baseline", Key: scope}
}

func (s *BaselineStore) Has(scope string) bool {
	if s == nil {
		return false
	}
	_, ok := s.scopes[scope]
	return ok
}

// Types lists the per-type scopes, sorted.
func (s *BaselineStore) Types() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		if scope != models.GlobalScope {
			out = append(out, scope)
		}
	}
	sort.Strings(out)
	return out
}

// baselineFile is the exported shape: two parallel maps keyed by feature name.
// A null std (pandas NaN for single-row groups) reads as nil.
type baselineFile struct {
	Mean map[string]float64  `json:"mean"`
	Std  map[string]*float64 `json:"std"`
}

// DecodeBaseline parses a baseline artifact. Negative std rejects the whole
// artifact; NaN or missing std becomes 0 so the feature is skipped at scoring.
func DecodeBaseline(format string, data []byte) (models.BaselineStats, error) {
	var f baselineFile
	if err := codec.Unmarshal(format, data, &f); err != nil {
		return nil, fmt.Errorf("decode baseline: %w", err)
	}
	if len(f.Mean) == 0 {
		return nil, fmt.Errorf("baseline has no features")
	}

	stats := make(models.BaselineStats, len(f.Mean))
	for name, mean := range f.Mean {
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			return nil, fmt.Errorf("baseline mean for %s is not finite", name)
		}
		std := 0.0
		if p := f.Std[name]; p != nil && !math.IsNaN(*p) {
			std = *p
		}
		if std < 0 || math.IsInf(std, 0) {
			return nil, fmt.Errorf("baseline std for %s is invalid: %v", name, std)
		}
		stats[name] = models.FeatureStat{Mean: mean, Std: std}
	}
	return stats, nil
}

// requireFeatures fails when stats lacks any of names.
func requireFeatures(stats models.BaselineStats, names []string) error {
	for _, n := range names {
		if _, ok := stats[n]; !ok {
			return fmt.Errorf("baseline is missing feature %s", n)
		}
	}
	return nil
}
