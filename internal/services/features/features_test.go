package features

import (
	"encoding/json"
	"errors"
	"testing"

	"SmartRental/internal/domain/models"
)

func TestParseCoercesKnownFeatures(t *testing.T) {
	raw := map[string]interface{}{
		"Operating_Hours":  120.5,
		"Idle_Hours":       "14",
		"Load_Cycles":      json.Number("300"),
		"Overdue_Days":     true,
		"Type":             "Crane",
		"Maintenance_Flag": false,
		"Engine_Temp_Max":  nil,
		"Operator_Notes":   []interface{}{"unknown keys are ignored"},
	}
	snap, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := snap.Number(OperatingHours); !ok || v != 120.5 {
		t.Fatalf("unexpected Operating_Hours %v %v", v, ok)
	}
	if v, _ := snap.Number(IdleHours); v != 14 {
		t.Fatalf("numeric string not coerced: %v", v)
	}
	if v, _ := snap.Number(LoadCycles); v != 300 {
		t.Fatalf("json.Number not coerced: %v", v)
	}
	if v, _ := snap.Number(OverdueDays); v != 1 {
		t.Fatalf("bool not coerced: %v", v)
	}
	if v, _ := snap.Text(MaintenanceFlag); v != "No" {
		t.Fatalf("bool flag not coerced: %q", v)
	}
	if _, ok := snap[EngineTempMax]; ok {
		t.Fatalf("null should be absent")
	}
	if _, ok := snap["Operator_Notes"]; ok {
		t.Fatalf("unknown key should be dropped")
	}
}

func TestParseRejectsWrongTypes(t *testing.T) {
	cases := []map[string]interface{}{
		{"Operating_Hours": "lots"},
		{"Operating_Hours": map[string]interface{}{"v": 1}},
		{"Type": 3.0},
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		var inv *models.InvalidInputError
		if !errors.As(err, &inv) {
			t.Fatalf("expected InvalidInputError for %v, got %v", raw, err)
		}
		for k := range raw {
			if inv.Field != k {
				t.Fatalf("expected field %q, got %q", k, inv.Field)
			}
		}
	}
}

func TestEncodeOneHot(t *testing.T) {
	enc := NewEncoder(BreakdownColumns)
	snap := models.FeatureSnapshot{
		OperatingHours:  models.Numeric(200),
		Type:            models.Categorical("Crane"),
		Model:           models.Categorical("D8T"),
		GPSLocation:     models.Categorical("Site_A"), // dropped level
		MaintenanceFlag: models.Categorical("Yes"),
		Breakdowns:      models.Numeric(3), // not a model column
	}
	row := enc.Encode(snap)
	if len(row) != len(BreakdownColumns) {
		t.Fatalf("expected %d columns, got %d", len(BreakdownColumns), len(row))
	}
	if row[OperatingHours] != 200 {
		t.Fatalf("numeric column not set")
	}
	for _, col := range []string{"Type_Crane", "Model_D8T", "Maintenance_Flag_Yes"} {
		if row[col] != 1 {
			t.Fatalf("expected %s = 1", col)
		}
	}
	for _, col := range []string{"Type_Loader", "GPS_Location_Site_B", IdleHours} {
		if row[col] != 0 {
			t.Fatalf("expected %s = 0", col)
		}
	}
	if _, ok := row[Breakdowns]; ok {
		t.Fatalf("non-column feature leaked into row")
	}
	vec := enc.Vector(row)
	if vec[1] != 200 {
		t.Fatalf("vector order mismatch: %v", vec[:3])
	}
}

func TestPriceColumnsDropCost(t *testing.T) {
	if len(PriceColumns) != len(BreakdownColumns)-1 {
		t.Fatalf("expected one fewer price column")
	}
	for _, c := range PriceColumns {
		if c == RentalCost {
			t.Fatalf("price columns must not include the target")
		}
	}
}
