package models

import "time"

// RentalEvent is one completed or in-progress rental from the ledger.
// CheckIn is nil while the rental has not been returned.
type RentalEvent struct {
	EquipmentID          string     `db:"equipment_id"`
	CustomerID           string     `db:"customer_id"`
	Type                 string     `db:"type"`
	Model                string     `db:"model"`
	ManufactureYear      int        `db:"manufacture_year"`
	Site                 string     `db:"gps_location"`
	CheckOut             time.Time  `db:"checkout_date"`
	PlannedReturn        time.Time  `db:"planned_return_date"`
	CheckIn              *time.Time `db:"checkin_date"`
	RentalStatus         string     `db:"rental_status"`
	OperatingHours       float64    `db:"operating_hours"`
	IdleHours            float64    `db:"idle_hours"`
	FuelConsumed         float64    `db:"fuel_consumed_liters"`
	FuelEfficiency       float64    `db:"fuel_efficiency_l_per_hr"`
	DistanceKm           float64    `db:"distance_traveled_km"`
	LoadCycles           float64    `db:"load_cycles"`
	EngineTempMax        float64    `db:"engine_temp_max"`
	HydraulicPressureMax float64    `db:"hydraulic_pressure_max"`
	Breakdowns           int        `db:"breakdowns"`
	MaintenanceFlag      string     `db:"maintenance_flag"`
	RentalCostUSD        float64    `db:"rental_cost_usd"`
	OverdueFineUSD       float64    `db:"overdue_fine_usd"`
	TotalBillUSD         float64    `db:"total_bill_usd"`
	RentalDurationDays   float64    `db:"rental_duration_days"`
	PlannedDurationDays  float64    `db:"planned_duration_days"`
	OverdueDays          float64    `db:"overdue_days"`
	EquipmentAgeYears    float64    `db:"equipment_age_years"`
	UtilizationRate      float64    `db:"utilization_rate"`
}

// ActiveAt reports whether the rental is still out as of ref.
func (e RentalEvent) ActiveAt(ref time.Time) bool {
	return e.CheckIn == nil || e.CheckIn.After(ref)
}

// AssetState is the derived rental state of one asset.
type AssetState string

const (
	StateActive AssetState = "Active"
	StateIdle   AssetState = "Idle"
)

// AssetStatus is derived from an asset's most recent rental. Active carries
// CustomerID and PlannedReturn; Idle carries LastReturned. Never both.
type AssetStatus struct {
	EquipmentID         string
	State               AssetState
	Type                string
	Model               string
	EquipmentAgeYears   float64
	Site                string
	CustomerID          string
	PlannedReturn       *time.Time
	LastReturned        *time.Time
	LastOperatingHours  float64
	LastUtilizationRate float64
	LastBreakdowns      int
}

// FleetStatus is the status of every asset as of the reference date.
type FleetStatus struct {
	AsOf   time.Time
	Assets []AssetStatus
}

// StatusFilter narrows a fleet status listing. Empty fields match everything.
type StatusFilter struct {
	State    AssetState
	Location string
	Search   string
}

// HistorySummary aggregates every rental of one asset.
type HistorySummary struct {
	TotalRentals        int
	TotalRentalDays     int64
	TotalOperatingHours int64
	TotalIdleHours      int64
	TotalFuelLiters     float64
	LifetimeBreakdowns  int
	RentalsPerSite      map[string]int
}

// AssetHistory is the summary plus the rentals, most recent first.
type AssetHistory struct {
	EquipmentID string
	Summary     HistorySummary
	Rentals     []RentalEvent
}

// UnderutilizedAsset is an asset whose mean utilization falls below a threshold.
type UnderutilizedAsset struct {
	EquipmentID        string
	AverageUtilization float64
	Type               string
	Model              string
	Site               string
}

// ReturnDue is an active rental whose planned return falls in the reminder window.
type ReturnDue struct {
	EquipmentID   string
	Type          string
	Model         string
	CustomerID    string
	Site          string
	PlannedReturn time.Time
}

// ReturnWindow lists rentals due back between From and To inclusive.
type ReturnWindow struct {
	Days int
	From time.Time
	To   time.Time
	Due  []ReturnDue
}
