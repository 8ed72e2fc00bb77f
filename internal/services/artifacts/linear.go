package artifacts

import (
	"context"
	"fmt"
	"math"
	"sort"
)

const (
	KindLogistic     = "logistic"
	KindLinear       = "linear"
	KindRandomForest = "random_forest"
	KindGBDT         = "gbdt"
)

// LinearModel scores a row as intercept + sum(coef * column). Kind "logistic"
// maps the score through the logistic function and serves as a classifier;
// kind "linear" returns the raw score and serves as a regressor.
type LinearModel struct {
	Kind         string             `json:"kind"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`

	order []string
}

func (m *LinearModel) validate() error {
	if m.Kind != KindLogistic && m.Kind != KindLinear {
		return fmt.Errorf("linear model kind %q not supported", m.Kind)
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("linear model intercept is not finite")
	}
	m.order = make([]string, 0, len(m.Coefficients))
	for name, c := range m.Coefficients {
		if !finite(c) {
			return fmt.Errorf("coefficient for %s is not finite", name)
		}
		m.order = append(m.order, name)
	}
	// Fixed summation order keeps scores bit-identical across calls.
	sort.Strings(m.order)
	return nil
}

func (m *LinearModel) score(row map[string]float64) float64 {
	s := m.Intercept
	for _, name := range m.order {
		s += m.Coefficients[name] * row[name]
	}
	return s
}

func (m *LinearModel) Classify(_ context.Context, row map[string]float64) (float64, error) {
	if m.Kind != KindLogistic {
		return 0, fmt.Errorf("%s model cannot classify", m.Kind)
	}
	return sigmoid(m.score(row)), nil
}

func (m *LinearModel) Regress(_ context.Context, row map[string]float64) (float64, error) {
	if m.Kind != KindLinear {
		return 0, fmt.Errorf("%s model cannot regress", m.Kind)
	}
	return m.score(row), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
