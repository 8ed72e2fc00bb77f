package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SmartRental/internal/domain/models"
	pkgch "SmartRental/pkg/clickhouse"
	applogger "SmartRental/pkg/logger"
)

// CHLedger loads the rental ledger from a ClickHouse table.
type CHLedger struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHLedger(ch *pkgch.Client, table string) *CHLedger {
	return &CHLedger{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHLedger) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHLedger) Name() string { return "clickhouse" }

// LedgerSchema is the DDL for the ledger table.
func LedgerSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            equipment_id String,
            customer_id String,
            type LowCardinality(String),
            model LowCardinality(String),
            manufacture_year Int32,
            gps_location LowCardinality(String),
            checkout_date Date,
            planned_return_date Date,
            checkin_date Nullable(Date),
            rental_status LowCardinality(String),
            operating_hours Float64,
            idle_hours Float64,
            fuel_consumed_liters Float64,
            fuel_efficiency_l_per_hr Float64,
            distance_traveled_km Float64,
            load_cycles Float64,
            engine_temp_max Float64,
            hydraulic_pressure_max Float64,
            breakdowns Int32,
            maintenance_flag LowCardinality(String),
            rental_cost_usd Float64,
            overdue_fine_usd Float64,
            total_bill_usd Float64,
            rental_duration_days Float64,
            planned_duration_days Float64,
            overdue_days Float64,
            equipment_age_years Float64,
            utilization_rate Float64
        ) ENGINE = MergeTree
        ORDER BY (checkout_date, equipment_id)
    `, table)}
}

func (s *CHLedger) Load(ctx context.Context) ([]models.RentalEvent, error) {
	start := time.Now()
	const qtpl = `
        SELECT %s
        FROM %s
        ORDER BY checkout_date ASC
    `
	q := fmt.Sprintf(qtpl, ledgerColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("clickhouse ledger query error", err)
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	out := make([]models.RentalEvent, 0, 4096)
	for rows.Next() {
		var (
			e       models.RentalEvent
			checkIn sql.NullTime
		)
		if err := rows.Scan(
			&e.EquipmentID, &e.CustomerID, &e.Type, &e.Model, &e.ManufactureYear, &e.Site,
			&e.CheckOut, &e.PlannedReturn, &checkIn, &e.RentalStatus,
			&e.OperatingHours, &e.IdleHours, &e.FuelConsumed, &e.FuelEfficiency,
			&e.DistanceKm, &e.LoadCycles, &e.EngineTempMax, &e.HydraulicPressureMax,
			&e.Breakdowns, &e.MaintenanceFlag, &e.RentalCostUSD, &e.OverdueFineUSD, &e.TotalBillUSD,
			&e.RentalDurationDays, &e.PlannedDurationDays, &e.OverdueDays, &e.EquipmentAgeYears,
			&e.UtilizationRate,
		); err != nil {
			s.logError("clickhouse ledger scan error", err)
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		if checkIn.Valid {
			t := checkIn.Time
			e.CheckIn = &t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse ledger rows error", err)
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse ledger loaded",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("took", time.Since(start)),
		)
	}
	return normalizeEvents(out)
}

func (s *CHLedger) logError(msg string, err error) {
	if s.l != nil {
		s.l.Error(msg, applogger.String("table", s.table), applogger.Error(err))
	}
}
