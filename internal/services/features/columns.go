package features

// Feature names as they appear in payloads, the ledger and artifacts.
const (
	ManufactureYear      = "Manufacture_Year"
	OperatingHours       = "Operating_Hours"
	IdleHours            = "Idle_Hours"
	FuelConsumed         = "Fuel_Consumed_Liters"
	FuelEfficiency       = "Fuel_Efficiency_L_per_hr"
	DistanceTraveled     = "Distance_Traveled_km"
	LoadCycles           = "Load_Cycles"
	EngineTempMax        = "Engine_Temp_Max"
	HydraulicPressureMax = "Hydraulic_Pressure_Max"
	RentalCost           = "Rental_Cost_USD"
	RentalDurationDays   = "Rental_Duration_Days"
	PlannedDurationDays  = "Planned_Duration_Days"
	OverdueDays          = "Overdue_Days"
	EquipmentAgeYears    = "Equipment_Age_Years"
	UtilizationRate      = "Utilization_Rate"
	Breakdowns           = "Breakdowns"
	OverdueFine          = "Overdue_Fine_USD"
	TotalBill            = "Total_Bill_USD"

	Type            = "Type"
	Model           = "Model"
	GPSLocation     = "GPS_Location"
	MaintenanceFlag = "Maintenance_Flag"
	RentalStatus    = "Rental_Status"
	EquipmentID     = "Equipment_ID"
	CustomerID      = "Customer_ID"
)

// AnomalyFeatures is the fixed, ordered usage feature set checked by the
// anomaly detector. The first feature over threshold is the one reported.
var AnomalyFeatures = []string{
	OperatingHours,
	IdleHours,
	FuelConsumed,
	FuelEfficiency,
	LoadCycles,
	UtilizationRate,
}

var numericFeatures = []string{
	ManufactureYear, OperatingHours, IdleHours, FuelConsumed, FuelEfficiency,
	DistanceTraveled, LoadCycles, EngineTempMax, HydraulicPressureMax, RentalCost,
	RentalDurationDays, PlannedDurationDays, OverdueDays, EquipmentAgeYears,
	UtilizationRate, Breakdowns, OverdueFine, TotalBill,
}

var categoricalFeatures = []string{
	Type, Model, GPSLocation, MaintenanceFlag, RentalStatus, EquipmentID, CustomerID,
}

// BreakdownColumns is the classifier's input layout: numeric features followed by
// one-hot columns for the categories seen in training (first level dropped).
var BreakdownColumns = []string{
	ManufactureYear, OperatingHours, IdleHours, FuelConsumed, FuelEfficiency,
	DistanceTraveled, LoadCycles, EngineTempMax, HydraulicPressureMax, RentalCost,
	RentalDurationDays, PlannedDurationDays, OverdueDays, EquipmentAgeYears, UtilizationRate,
	"Type_Crane", "Type_DumpTruck", "Type_Excavator", "Type_Loader",
	"Model_320D2", "Model_323D3", "Model_330C", "Model_336D2", "Model_350C",
	"Model_773G", "Model_775G", "Model_777G", "Model_950GC", "Model_966GC",
	"Model_980M", "Model_D6R2", "Model_D7R2", "Model_D8T",
	"GPS_Location_Site_B", "GPS_Location_Site_C", "GPS_Location_Site_D",
	"GPS_Location_Site_E", "GPS_Location_Site_F",
	"Maintenance_Flag_Yes",
}

// PriceColumns is the regressor's input layout; the price itself is the target.
var PriceColumns = without(BreakdownColumns, RentalCost)

func without(cols []string, drop string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
