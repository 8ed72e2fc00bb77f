package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Percent renders a ratio as a percentage with two decimals: 0.95 -> "95.00%".
func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// ParseFiniteFloat parses s as a finite float64.
func ParseFiniteFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
