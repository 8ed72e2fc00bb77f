package artifacts

import (
	"context"
	"fmt"
	"math"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/util"
)

// maxHistoryDays bounds the daily history an artifact may declare (~30 years).
const maxHistoryDays = 11000

// TrendForecaster is an additive daily demand model: a linear trend plus a
// weekly profile. Weekly holds seven offsets indexed by time.Weekday (Sunday
// first) and may be empty. The uncertainty band is IntervalZ * Sigma wide on
// each side in the history and widens by SpreadGrowth per day past it.
type TrendForecaster struct {
	HistoryStart string    `json:"history_start"`
	HistoryEnd   string    `json:"history_end"`
	Base         float64   `json:"base"`
	Slope        float64   `json:"slope"`
	Weekly       []float64 `json:"weekly"`
	Sigma        float64   `json:"sigma"`
	IntervalZ    float64   `json:"interval_z"`
	SpreadGrowth float64   `json:"spread_growth"`

	days int
}

func (f *TrendForecaster) validate() error {
	start, ok := util.ParseDate(f.HistoryStart)
	if !ok {
		return fmt.Errorf("forecaster history_start %q is not a date", f.HistoryStart)
	}
	end, ok := util.ParseDate(f.HistoryEnd)
	if !ok {
		return fmt.Errorf("forecaster history_end %q is not a date", f.HistoryEnd)
	}
	if end.Before(start) {
		return fmt.Errorf("forecaster history ends before it starts")
	}
	f.days = int(end.Sub(start).Hours()/24) + 1
	if f.days > maxHistoryDays {
		return fmt.Errorf("forecaster history spans %d days", f.days)
	}
	if len(f.Weekly) != 0 && len(f.Weekly) != 7 {
		return fmt.Errorf("weekly profile needs 7 entries, got %d", len(f.Weekly))
	}
	for _, v := range append([]float64{f.Base, f.Slope, f.Sigma, f.IntervalZ, f.SpreadGrowth}, f.Weekly...) {
		if !finite(v) {
			return fmt.Errorf("forecaster parameter is not finite")
		}
	}
	if f.Sigma < 0 || f.SpreadGrowth < 0 {
		return fmt.Errorf("forecaster sigma and spread_growth must be non-negative")
	}
	if f.IntervalZ == 0 {
		// 80% interval.
		f.IntervalZ = 1.2816
	}
	return nil
}

// Forecast returns one point per history day followed by horizon future days.
func (f *TrendForecaster) Forecast(_ context.Context, horizon int) ([]models.ForecastPoint, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("negative horizon %d", horizon)
	}
	start, _ := util.ParseDate(f.HistoryStart)
	total := f.days + horizon
	out := make([]models.ForecastPoint, 0, total)
	for i := 0; i < total; i++ {
		d := util.AddDays(start, i)
		yhat := f.Base + f.Slope*float64(i)
		if len(f.Weekly) == 7 {
			yhat += f.Weekly[d.Weekday()]
		}
		ahead := math.Max(0, float64(i-f.days+1))
		half := f.IntervalZ * f.Sigma * (1 + f.SpreadGrowth*ahead)
		out = append(out, models.ForecastPoint{
			Date:  d,
			Yhat:  yhat,
			Lower: yhat - half,
			Upper: yhat + half,
		})
	}
	return out, nil
}
