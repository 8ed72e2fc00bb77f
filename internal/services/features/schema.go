package features

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"SmartRental/internal/domain/models"
)

type kind int

const (
	kindNumeric kind = iota + 1
	kindCategorical
)

var schema = func() map[string]kind {
	m := make(map[string]kind, len(numericFeatures)+len(categoricalFeatures))
	for _, f := range numericFeatures {
		m[f] = kindNumeric
	}
	for _, f := range categoricalFeatures {
		m[f] = kindCategorical
	}
	return m
}()

// IsKnown reports whether name is part of the feature schema.
func IsKnown(name string) bool {
	_, ok := schema[name]
	return ok
}

// Parse coerces a decoded JSON object into a FeatureSnapshot.
//
// Known numeric features accept numbers, numeric strings and booleans (1/0).
// Known categorical features accept strings, and booleans as "Yes"/"No".
// null counts as absent. Unknown keys are ignored. Any other shape for a known
// feature is an InvalidInputError naming that feature.
func Parse(raw map[string]interface{}) (models.FeatureSnapshot, error) {
	snap := make(models.FeatureSnapshot, len(raw))
	for name, v := range raw {
		k, ok := schema[name]
		if !ok || v == nil {
			continue
		}
		switch k {
		case kindNumeric:
			f, err := toNumber(name, v)
			if err != nil {
				return nil, err
			}
			snap[name] = models.Numeric(f)
		case kindCategorical:
			s, err := toCategory(name, v)
			if err != nil {
				return nil, err
			}
			snap[name] = models.Categorical(s)
		}
	}
	return snap, nil
}

func toNumber(name string, v interface{}) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, models.NewInvalidInput(name, "expected a number, got %q", x.String())
		}
		f = p
	case bool:
		if x {
			f = 1
		}
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, models.NewInvalidInput(name, "expected a number, got %q", x)
		}
		f = p
	default:
		return 0, models.NewInvalidInput(name, "expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, models.NewInvalidInput(name, "must be finite")
	}
	return f, nil
}

func toCategory(name string, v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		if x {
			return "Yes", nil
		}
		return "No", nil
	default:
		return "", models.NewInvalidInput(name, "expected a string, got %T", v)
	}
}
