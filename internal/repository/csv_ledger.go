package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/util"
)

// CSVLedger reads the cleaned rental export (one row per rental, header row first).
type CSVLedger struct {
	path string
}

func NewCSVLedger(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

func (s *CSVLedger) Name() string { return "csv" }

func (s *CSVLedger) Load(ctx context.Context) ([]models.RentalEvent, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()
	return ReadLedgerCSV(ctx, f)
}

var requiredCSVColumns = []string{"Equipment_ID", "CheckOut_Date", "Planned_Return_Date"}

// ReadLedgerCSV parses ledger rows from r. Unknown columns are ignored and
// absent optional columns read as zero.
func ReadLedgerCSV(ctx context.Context, r io.Reader) ([]models.RentalEvent, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredCSVColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("ledger is missing column %s", c)
		}
	}

	var events []models.RentalEvent
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := csvRow{cols: cols, rec: rec}
		e, err := row.event()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return normalizeEvents(events)
}

type csvRow struct {
	cols map[string]int
	rec  []string
	err  error
}

func (r *csvRow) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *csvRow) num(col string) float64 {
	s := r.str(col)
	if s == "" || r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.err = fmt.Errorf("%s: %q is not a number", col, s)
		return 0
	}
	return v
}

func (r *csvRow) date(col string) (time.Time, bool) {
	s := r.str(col)
	t, ok := util.ParseDate(s)
	if !ok && r.err == nil && !missingDate(s) {
		r.err = fmt.Errorf("%s: %q is not a date", col, s)
	}
	return t, ok
}

func missingDate(s string) bool {
	switch s {
	case "", "NaT", "N/A", "null":
		return true
	}
	return false
}

func (r *csvRow) event() (models.RentalEvent, error) {
	e := models.RentalEvent{
		EquipmentID:          r.str("Equipment_ID"),
		CustomerID:           r.str("Customer_ID"),
		Type:                 r.str("Type"),
		Model:                r.str("Model"),
		ManufactureYear:      int(r.num("Manufacture_Year")),
		Site:                 r.str("GPS_Location"),
		RentalStatus:         r.str("Rental_Status"),
		OperatingHours:       r.num("Operating_Hours"),
		IdleHours:            r.num("Idle_Hours"),
		FuelConsumed:         r.num("Fuel_Consumed_Liters"),
		FuelEfficiency:       r.num("Fuel_Efficiency_L_per_hr"),
		DistanceKm:           r.num("Distance_Traveled_km"),
		LoadCycles:           r.num("Load_Cycles"),
		EngineTempMax:        r.num("Engine_Temp_Max"),
		HydraulicPressureMax: r.num("Hydraulic_Pressure_Max"),
		Breakdowns:           int(r.num("Breakdowns")),
		MaintenanceFlag:      r.str("Maintenance_Flag"),
		RentalCostUSD:        r.num("Rental_Cost_USD"),
		OverdueFineUSD:       r.num("Overdue_Fine_USD"),
		TotalBillUSD:         r.num("Total_Bill_USD"),
		RentalDurationDays:   r.num("Rental_Duration_Days"),
		PlannedDurationDays:  r.num("Planned_Duration_Days"),
		OverdueDays:          r.num("Overdue_Days"),
		EquipmentAgeYears:    r.num("Equipment_Age_Years"),
		UtilizationRate:      r.num("Utilization_Rate"),
	}

	checkout, ok := r.date("CheckOut_Date")
	if !ok && r.err == nil {
		r.err = fmt.Errorf("CheckOut_Date is required")
	}
	e.CheckOut = checkout
	planned, ok := r.date("Planned_Return_Date")
	if !ok && r.err == nil {
		r.err = fmt.Errorf("Planned_Return_Date is required")
	}
	e.PlannedReturn = planned
	if checkin, ok := r.date("CheckIn_Date"); ok {
		e.CheckIn = &checkin
	}
	if r.err != nil {
		return models.RentalEvent{}, r.err
	}
	return e, nil
}
