package repository

import (
	"fmt"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/util"
)

// ledgerColumns is the select list shared by the SQL ledger sources, in
// RentalEvent field order.
const ledgerColumns = `equipment_id, customer_id, type, model, manufacture_year, gps_location,
        checkout_date, planned_return_date, checkin_date, rental_status,
        operating_hours, idle_hours, fuel_consumed_liters, fuel_efficiency_l_per_hr,
        distance_traveled_km, load_cycles, engine_temp_max, hydraulic_pressure_max,
        breakdowns, maintenance_flag, rental_cost_usd, overdue_fine_usd, total_bill_usd,
        rental_duration_days, planned_duration_days, overdue_days, equipment_age_years,
        utilization_rate`

// normalizeEvents truncates every date to its calendar day and drops rows
// without an equipment id.
func normalizeEvents(events []models.RentalEvent) ([]models.RentalEvent, error) {
	out := events[:0]
	for i, e := range events {
		if e.EquipmentID == "" {
			return nil, fmt.Errorf("event %d has no equipment id", i)
		}
		e.CheckOut = util.TruncateDay(e.CheckOut)
		e.PlannedReturn = util.TruncateDay(e.PlannedReturn)
		if e.CheckIn != nil {
			ci := util.TruncateDay(*e.CheckIn)
			e.CheckIn = &ci
		}
		out = append(out, e)
	}
	return out, nil
}
