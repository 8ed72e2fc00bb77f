package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "SmartRental/internal/domain/models"
	domsvc "SmartRental/internal/domain/service"
	icache "SmartRental/internal/service/cache"
	"SmartRental/internal/service/ratelimit"
	"SmartRental/internal/services/artifacts"
	"SmartRental/internal/usecase"
	"SmartRental/pkg/codec"

	"github.com/labstack/echo/v4"
)

type fixedForecaster struct{ days int }

func (f fixedForecaster) Forecast(_ context.Context, horizon int) ([]models.ForecastPoint, error) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.ForecastPoint, 0, f.days+horizon)
	for i := 0; i < f.days+horizon; i++ {
		y := float64(i)
		out = append(out, models.ForecastPoint{Date: start.AddDate(0, 0, i), Yhat: y, Lower: y - 1, Upper: y + 1})
	}
	return out, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func datePtr(s string) *time.Time {
	t := day(s)
	return &t
}

func testLedger(t *testing.T) *usecase.AssetLedger {
	t.Helper()
	l, err := usecase.NewAssetLedger([]models.RentalEvent{
		{EquipmentID: "EQ1", CustomerID: "C0", Type: "Crane", Model: "330C", Site: "Site_A",
			CheckOut: day("2024-01-01"), PlannedReturn: day("2024-01-08"), CheckIn: datePtr("2024-01-10"),
			UtilizationRate: 0.8, OperatingHours: 100, Breakdowns: 1},
		{EquipmentID: "EQ2", CustomerID: "C2", Type: "Loader", Model: "950GC", Site: "Site_B",
			CheckOut: day("2024-01-15"), PlannedReturn: day("2024-01-19"), CheckIn: datePtr("2024-01-20"),
			UtilizationRate: 0.3, OperatingHours: 40},
		{EquipmentID: "EQ1", CustomerID: "C1", Type: "Crane", Model: "330C", Site: "Site_C",
			CheckOut: day("2024-02-01"), PlannedReturn: day("2024-02-05"),
			UtilizationRate: 0.8, OperatingHours: 120},
	})
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return l
}

func testRegistry(t *testing.T) *artifacts.Registry {
	t.Helper()
	clf, err := artifacts.DecodeClassifier(codec.FormatJSON, []byte(`{"kind":"logistic","coefficients":{},"intercept":-3}`))
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	baselines := artifacts.NewBaselineStore(map[string]models.BaselineStats{
		models.GlobalScope: {"Operating_Hours": {Mean: 100, Std: 10}},
		"Crane": {
			"Operating_Hours":          {Mean: 100, Std: 10},
			"Idle_Hours":               {Mean: 20, Std: 5},
			"Fuel_Consumed_Liters":     {Mean: 300, Std: 30},
			"Fuel_Efficiency_L_per_hr": {Mean: 3, Std: 0.5},
			"Load_Cycles":              {Mean: 50, Std: 10},
			"Utilization_Rate":         {Mean: 0.7, Std: 0.1},
		},
	})
	return artifacts.NewRegistry(baselines, clf, nil, map[string]domsvc.Forecaster{
		"Crane": fixedForecaster{days: 10},
	})
}

func newTestServer(t *testing.T, snap *usecase.Snapshot, setup func(*FleetEchoHandler)) *echo.Echo {
	t.Helper()
	holder := usecase.NewSnapshotHolder()
	if snap != nil {
		holder.Store(snap)
	}
	h := NewFleetEchoHandler(nil, usecase.NewFleetService(holder, nil))
	if setup != nil {
		setup(h)
	}
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHomeAndHealth(t *testing.T) {
	e := newTestServer(t, nil, nil)

	rec := do(e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != Banner {
		t.Fatalf("unexpected banner %d %q", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "degraded" {
		t.Fatalf("empty snapshot should be degraded, got %v", body["status"])
	}
	caps, ok := body["capabilities"].(map[string]interface{})
	if !ok || caps[string(models.CapLedger)] != false || caps[string(models.CapBreakdown)] != false {
		t.Fatalf("unexpected capabilities %v", body["capabilities"])
	}
}

func TestPredictBreakdownBlendsStatisticalScore(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, testRegistry(t), nil), nil)

	rec := do(e, http.MethodPost, "/predict_breakdown", `{"Operating_Hours": 200, "Type": "Crane"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["prediction"] != float64(1) || body["prediction_text"] != "Likely Breakdown" || body["breakdown_probability"] != "95.00%" {
		t.Fatalf("unexpected body %v", body)
	}

	rec = do(e, http.MethodPost, "/predict_breakdown", `{"Operating_Hours": 100}`)
	body = decode(t, rec)
	if body["prediction"] != float64(0) || body["prediction_text"] != "No Breakdown Likely" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestMissingArtifactsAreUnavailable(t *testing.T) {
	e := newTestServer(t, nil, nil)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/predict_breakdown", `{"Operating_Hours": 1}`},
		{http.MethodPost, "/predict_price", `{"Operating_Hours": 1}`},
		{http.MethodGet, "/asset_status", ""},
		{http.MethodGet, "/returns_due_soon", ""},
	} {
		rec := do(e, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d: %s", tc.path, rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		if body["status"] != float64(http.StatusServiceUnavailable) {
			t.Fatalf("%s: expected error envelope, got %v", tc.path, body)
		}
	}
}

func TestDetectAnomaly(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, testRegistry(t), nil), nil)

	rec := do(e, http.MethodPost, "/detect_anomaly", `{"Type": "Crane", "Idle_Hours": 45}`)
	body := decode(t, rec)
	if rec.Code != http.StatusOK || body["is_anomaly"] != true || body["result_text"] != "Anomalous Usage Detected: Idle_Hours is abnormal" {
		t.Fatalf("unexpected %d %v", rec.Code, body)
	}

	rec = do(e, http.MethodPost, "/detect_anomaly", `{"Type": "Crane"}`)
	body = decode(t, rec)
	if body["is_anomaly"] != false || body["result_text"] != "Normal Usage" || body["equipment_type"] != "Crane" {
		t.Fatalf("unexpected %v", body)
	}

	if rec := do(e, http.MethodPost, "/detect_anomaly", `{"Type": "Submarine"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown type: expected 404, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/detect_anomaly", `{"Idle_Hours": 3}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing type: expected 400, got %d", rec.Code)
	}
}

func TestForecastDemand(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, testRegistry(t), nil), nil)

	rec := do(e, http.MethodPost, "/forecast_demand", `{"equipment_type": "Crane", "periods": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var fc forecastDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.EquipmentType != "Crane" || len(fc.Forecast) != 3 {
		t.Fatalf("unexpected forecast %+v", fc)
	}
	if fc.Forecast[0].DS != "2024-01-11" || fc.Forecast[2].Yhat != 12 {
		t.Fatalf("expected the tail of the sequence, got %+v", fc.Forecast)
	}

	rec = do(e, http.MethodPost, "/forecast_demand", `{"equipment_type": "Crane"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil || len(fc.Forecast) != 30 {
		t.Fatalf("expected default of 30 periods, got %d (%v)", len(fc.Forecast), err)
	}

	if rec := do(e, http.MethodPost, "/forecast_demand", `{"equipment_type": "Crane", "periods": 0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("periods 0: expected 400, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/forecast_demand", `{"equipment_type": "Loader"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown type: expected 404, got %d", rec.Code)
	}
}

func TestAssetStatusDocument(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, nil, testLedger(t)), nil)

	rec := do(e, http.MethodGet, "/asset_status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var fs fleetStatusDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &fs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fs.StatusDate != "2024-02-01" || fs.AssetCount != 2 {
		t.Fatalf("unexpected header %+v", fs)
	}
	active, idle := fs.Assets[0], fs.Assets[1]
	if active.Status != "Active" || active.CurrentCustomerID != "C1" || active.PlannedReturnDate != "2024-02-05" || active.LastReturnedOn != "N/A" {
		t.Fatalf("unexpected active asset %+v", active)
	}
	if idle.Status != "Idle" || idle.CurrentCustomerID != "N/A" || idle.PlannedReturnDate != "N/A" || idle.LastReturnedOn != "2024-01-20" {
		t.Fatalf("unexpected idle asset %+v", idle)
	}
	if active.LastUtilizationRate != "80.00%" {
		t.Fatalf("expected percent rendering, got %q", active.LastUtilizationRate)
	}

	rec = do(e, http.MethodGet, "/asset_status?status=Idle", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &fs); err != nil || fs.AssetCount != 1 || fs.Assets[0].EquipmentID != "EQ2" {
		t.Fatalf("status filter: %+v (%v)", fs, err)
	}
	if rec := do(e, http.MethodGet, "/asset_status?status=Broken", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", rec.Code)
	}
}

func TestAssetHistory(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, nil, testLedger(t)), nil)

	rec := do(e, http.MethodGet, "/asset_history/EQ1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	summary := body["summary"].(map[string]interface{})
	if summary["total_rentals"] != float64(2) || summary["total_operating_hours"] != float64(220) {
		t.Fatalf("unexpected summary %v", summary)
	}
	history := body["rental_history"].([]interface{})
	latest := history[0].(map[string]interface{})
	if latest["CheckOut_Date"] != "2024-02-01" || latest["CheckIn_Date"] != nil {
		t.Fatalf("expected newest rental first with null check-in, got %v", latest)
	}

	rec = do(e, http.MethodGet, "/asset_history/EQ404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUnderutilizedAndReturnsDue(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, nil, testLedger(t)), nil)

	rec := do(e, http.MethodGet, "/underutilized_assets", "")
	var u underutilizedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Threshold != "<50%" || u.Count != 1 || u.Assets[0].EquipmentID != "EQ2" {
		t.Fatalf("unexpected underutilized %+v", u)
	}
	if rec := do(e, http.MethodGet, "/underutilized_assets?threshold=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad threshold: expected 400, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/returns_due_soon?days_out=7", "")
	var w returnWindowDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.FromDate != "2024-02-01" || w.ToDate != "2024-02-08" || w.Count != 1 || w.Assets[0].CustomerID != "C1" {
		t.Fatalf("unexpected window %+v", w)
	}
	rec = do(e, http.MethodGet, "/returns_due_soon?days_out=2", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil || w.Count != 0 {
		t.Fatalf("narrow window: %+v (%v)", w, err)
	}
	rec = do(e, http.MethodGet, "/returns_due_soon?days_out=soon", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad days_out: expected 400, got %d", rec.Code)
	}
	if decode(t, rec)["data"] == nil {
		t.Fatalf("expected error details")
	}
}

func TestLedgerResponsesAreCachedPerSnapshot(t *testing.T) {
	c := icache.NewTTLCache()
	holder := usecase.NewSnapshotHolder()
	holder.Store(usecase.NewSnapshot(1, nil, testLedger(t)))
	h := NewFleetEchoHandler(nil, usecase.NewFleetService(holder, nil))
	h.SetCache(c, time.Minute)
	e := echo.New()
	h.RegisterRoutes(e)

	first := do(e, http.MethodGet, "/asset_status?search=eq1", "")
	second := do(e, http.MethodGet, "/asset_status?search=eq1", "")
	if first.Body.String() != second.Body.String() || c.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", c.Len())
	}

	holder.Store(usecase.NewSnapshot(2, nil, testLedger(t)))
	do(e, http.MethodGet, "/asset_status?search=eq1", "")
	if c.Len() != 2 {
		t.Fatalf("a new snapshot must not reuse old entries, got %d", c.Len())
	}
}

func TestScoringEndpointsAreRateLimited(t *testing.T) {
	e := newTestServer(t, usecase.NewSnapshot(1, testRegistry(t), nil), func(h *FleetEchoHandler) {
		h.SetLimiter(ratelimit.New(1, 0.001))
	})

	if rec := do(e, http.MethodPost, "/detect_anomaly", `{"Type": "Crane"}`); rec.Code != http.StatusOK {
		t.Fatalf("first call: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/detect_anomaly", `{"Type": "Crane"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call: expected 429, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/forecast_demand", `{"equipment_type": "Crane"}`); rec.Code != http.StatusOK {
		t.Fatalf("buckets are per endpoint, got %d", rec.Code)
	}
}
