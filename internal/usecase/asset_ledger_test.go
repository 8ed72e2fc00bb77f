package usecase

import (
	"errors"
	"testing"
	"time"

	"SmartRental/internal/domain/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// Reference date is 2024-03-10, the latest checkout.
func sampleLedger(t *testing.T) *AssetLedger {
	t.Helper()
	l, err := NewAssetLedger([]models.RentalEvent{
		{EquipmentID: "EQ2", CustomerID: "C9", Type: "Crane", Model: "330C", Site: "Site_B",
			CheckOut: day("2024-03-10"), PlannedReturn: day("2024-03-10"), UtilizationRate: 0.6,
			OperatingHours: 3},
		{EquipmentID: "EQ1", CustomerID: "C1", Type: "Loader", Model: "950GC", Site: "Site_A",
			CheckOut: day("2024-01-01"), PlannedReturn: day("2024-01-10"), CheckIn: dayPtr("2024-01-09"),
			OperatingHours: 5.9, IdleHours: 1.5, FuelConsumed: 10.111, RentalDurationDays: 8, Breakdowns: 1,
			UtilizationRate: 0.2},
		{EquipmentID: "EQ1", CustomerID: "C2", Type: "Loader", Model: "950GC", Site: "Site_C",
			CheckOut: day("2024-02-01"), PlannedReturn: day("2024-02-10"), CheckIn: dayPtr("2024-02-08"),
			OperatingHours: 7.9, IdleHours: 1.6, FuelConsumed: 20.222, RentalDurationDays: 7,
			UtilizationRate: 0.4},
		{EquipmentID: "EQ3", CustomerID: "C3", Type: "Excavator", Model: "320D2", Site: "Site_A",
			CheckOut: day("2024-03-01"), PlannedReturn: day("2024-03-15"), CheckIn: dayPtr("2024-03-20"),
			UtilizationRate: 0.3},
		{EquipmentID: "EQ4", CustomerID: "C4", Type: "Crane", Model: "350C", Site: "Site_D",
			CheckOut: day("2024-03-05"), PlannedReturn: day("2024-03-25"),
			UtilizationRate: 0.9},
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l
}

func TestReferenceDateIsLatestCheckout(t *testing.T) {
	l := sampleLedger(t)
	if !l.ReferenceDate().Equal(day("2024-03-10")) {
		t.Fatalf("unexpected reference date %v", l.ReferenceDate())
	}
	if ev, as := l.Size(); ev != 5 || as != 4 {
		t.Fatalf("expected 5 events over 4 assets, got %d/%d", ev, as)
	}
	if _, err := NewAssetLedger(nil); !errors.Is(err, ErrEmptyLedger) {
		t.Fatalf("expected ErrEmptyLedger, got %v", err)
	}
}

func TestStatusIsStrictPartition(t *testing.T) {
	st := sampleLedger(t).Status(models.StatusFilter{})
	if len(st.Assets) != 4 {
		t.Fatalf("expected 4 assets, got %d", len(st.Assets))
	}
	want := map[string]models.AssetState{
		"EQ1": models.StateIdle,
		"EQ2": models.StateActive,
		"EQ3": models.StateActive,
		"EQ4": models.StateActive,
	}
	for i, a := range st.Assets {
		if i > 0 && st.Assets[i-1].EquipmentID >= a.EquipmentID {
			t.Fatalf("assets not sorted by id")
		}
		if a.State != want[a.EquipmentID] {
			t.Fatalf("%s: expected %s, got %s", a.EquipmentID, want[a.EquipmentID], a.State)
		}
		active := a.CustomerID != "" && a.PlannedReturn != nil
		idle := a.LastReturned != nil
		if active == idle {
			t.Fatalf("%s: exactly one of active/idle fields must be set: %+v", a.EquipmentID, a)
		}
		if (a.State == models.StateActive) != active {
			t.Fatalf("%s: state does not match populated fields", a.EquipmentID)
		}
	}
	eq1 := st.Assets[0]
	if eq1.Site != "Site_C" || !eq1.LastReturned.Equal(day("2024-02-08")) {
		t.Fatalf("EQ1 should come from its latest rental: %+v", eq1)
	}
}

func TestStatusFilters(t *testing.T) {
	l := sampleLedger(t)
	if got := l.Status(models.StatusFilter{State: models.StateIdle}).Assets; len(got) != 1 || got[0].EquipmentID != "EQ1" {
		t.Fatalf("state filter: %+v", got)
	}
	if got := l.Status(models.StatusFilter{Location: "Site_A"}).Assets; len(got) != 1 || got[0].EquipmentID != "EQ3" {
		t.Fatalf("location filter: %+v", got)
	}
	if got := l.Status(models.StatusFilter{Search: "crane"}).Assets; len(got) != 2 {
		t.Fatalf("search filter: %+v", got)
	}
}

func TestLatestTieGoesToLaterPosition(t *testing.T) {
	l, err := NewAssetLedger([]models.RentalEvent{
		{EquipmentID: "EQ1", CustomerID: "first", CheckOut: day("2024-01-01"), PlannedReturn: day("2024-01-05")},
		{EquipmentID: "EQ1", CustomerID: "second", CheckOut: day("2024-01-01"), PlannedReturn: day("2024-01-06")},
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if got := l.Status(models.StatusFilter{}).Assets[0].CustomerID; got != "second" {
		t.Fatalf("expected later event to win, got %s", got)
	}
}

func TestHistorySummary(t *testing.T) {
	l, err := NewAssetLedger([]models.RentalEvent{
		{EquipmentID: "EQ9", Site: "Site_A", CheckOut: day("2024-01-01"), OperatingHours: 5},
		{EquipmentID: "EQ9", Site: "Site_A", CheckOut: day("2024-02-01"), OperatingHours: 7},
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	h, err := l.History("EQ9")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if h.Summary.TotalOperatingHours != 12 || h.Summary.TotalRentals != 2 || h.Summary.RentalsPerSite["Site_A"] != 2 {
		t.Fatalf("unexpected summary: %+v", h.Summary)
	}
	if !h.Rentals[0].CheckOut.Equal(day("2024-02-01")) {
		t.Fatalf("history must be most recent first")
	}
}

func TestHistoryTruncatesAndRounds(t *testing.T) {
	h, err := sampleLedger(t).History("EQ1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	s := h.Summary
	if s.TotalOperatingHours != 13 || s.TotalIdleHours != 3 || s.TotalRentalDays != 15 {
		t.Fatalf("expected truncated totals 13/3/15, got %+v", s)
	}
	if s.TotalFuelLiters != 30.33 || s.LifetimeBreakdowns != 1 {
		t.Fatalf("unexpected fuel/breakdowns: %+v", s)
	}

	var nf *models.NotFoundError
	if _, err := sampleLedger(t).History("NOPE"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUnderutilized(t *testing.T) {
	got, err := sampleLedger(t).Underutilized(0.5)
	if err != nil {
		t.Fatalf("underutilized: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.EquipmentID)
	}
	// EQ1 averages 0.3, EQ3 0.3; EQ2 (0.6) and EQ4 (0.9) stay out.
	if len(ids) != 2 || ids[0] != "EQ1" || ids[1] != "EQ3" {
		t.Fatalf("unexpected assets %v", ids)
	}
	if got[0].Site != "Site_C" {
		t.Fatalf("EQ1 should carry its latest site, got %s", got[0].Site)
	}
}

func TestParseThreshold(t *testing.T) {
	if v, err := ParseThreshold(""); err != nil || v != 0.5 {
		t.Fatalf("default threshold: %v %v", v, err)
	}
	for _, raw := range []string{"abc", "NaN", "inf"} {
		var invalid *models.InvalidInputError
		if _, err := ParseThreshold(raw); !errors.As(err, &invalid) || invalid.Field != "threshold" {
			t.Fatalf("%q: expected InvalidInputError, got %v", raw, err)
		}
	}
	if got := FormatThreshold(0.5); got != "<50%" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestReturnsDue(t *testing.T) {
	l := sampleLedger(t)

	w, err := l.ReturnsDue(0)
	if err != nil {
		t.Fatalf("returns due: %v", err)
	}
	if len(w.Due) != 1 || w.Due[0].EquipmentID != "EQ2" {
		t.Fatalf("days_out=0 should only match returns on the reference date: %+v", w.Due)
	}

	w, err = l.ReturnsDue(7)
	if err != nil {
		t.Fatalf("returns due: %v", err)
	}
	if len(w.Due) != 2 || !w.To.Equal(day("2024-03-17")) {
		t.Fatalf("expected EQ3 and EQ2 due by 2024-03-17, got %+v", w)
	}

	w, _ = l.ReturnsDue(15)
	if len(w.Due) != 3 {
		t.Fatalf("expected the open-ended EQ4 rental at 15 days, got %+v", w.Due)
	}
}

func TestParseDays(t *testing.T) {
	if n, err := ParseDays(""); err != nil || n != 7 {
		t.Fatalf("default days: %v %v", n, err)
	}
	for _, raw := range []string{"-1", "1.5", "x"} {
		var invalid *models.InvalidInputError
		if _, err := ParseDays(raw); !errors.As(err, &invalid) {
			t.Fatalf("%q: expected InvalidInputError, got %v", raw, err)
		}
	}
}
