package features

import "SmartRental/internal/domain/models"

// Encoder lays a FeatureSnapshot out on a fixed column set. Numeric features
// fill their own column; a categorical value v of feature f sets column "f_v"
// to 1. Columns the snapshot does not mention stay 0, and snapshot entries with
// no matching column are dropped.
type Encoder struct {
	columns []string
	index   map[string]struct{}
}

func NewEncoder(columns []string) *Encoder {
	idx := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		idx[c] = struct{}{}
	}
	return &Encoder{columns: columns, index: idx}
}

// Columns returns the column layout in order.
func (e *Encoder) Columns() []string {
	return e.columns
}

// Encode returns a row holding every column.
func (e *Encoder) Encode(s models.FeatureSnapshot) map[string]float64 {
	row := make(map[string]float64, len(e.columns))
	for _, c := range e.columns {
		row[c] = 0
	}
	for name, v := range s {
		switch v.Kind {
		case models.FeatureNumeric:
			if _, ok := e.index[name]; ok {
				row[name] = v.Num
			}
		case models.FeatureCategorical:
			col := name + "_" + v.Str
			if _, ok := e.index[col]; ok {
				row[col] = 1
			}
		}
	}
	return row
}

// Vector returns the row as a slice ordered like Columns.
func (e *Encoder) Vector(row map[string]float64) []float64 {
	out := make([]float64, len(e.columns))
	for i, c := range e.columns {
		out[i] = row[c]
	}
	return out
}
