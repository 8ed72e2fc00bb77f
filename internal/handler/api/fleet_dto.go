package api

import (
	"SmartRental/internal/domain/models"
	"SmartRental/internal/usecase"
	xhttp "SmartRental/pkg/http"
	"SmartRental/pkg/util"
)

// Response documents keep the column names dashboard clients already read.

type assetStatusDTO struct {
	EquipmentID            string  `json:"Equipment_ID"`
	Status                 string  `json:"Status"`
	Type                   string  `json:"Type"`
	Model                  string  `json:"Model"`
	EquipmentAgeYears      float64 `json:"Equipment_Age_Years"`
	LastKnownLocation      string  `json:"Last_Known_Location"`
	CurrentCustomerID      string  `json:"Current_Customer_ID"`
	PlannedReturnDate      string  `json:"Planned_Return_Date"`
	LastReturnedOn         string  `json:"Last_Returned_On"`
	LastOperatingHours     float64 `json:"Last_Operating_Hours"`
	LastUtilizationRate    string  `json:"Last_Utilization_Rate"`
	BreakdownsOnLastRental int     `json:"Breakdowns_on_Last_Rental"`
}

type fleetStatusDTO struct {
	StatusDate string           `json:"status_date"`
	AssetCount int              `json:"asset_count"`
	Assets     []assetStatusDTO `json:"assets"`
}

func toFleetStatusDTO(fs models.FleetStatus) fleetStatusDTO {
	out := fleetStatusDTO{
		StatusDate: util.FormatDate(fs.AsOf),
		AssetCount: len(fs.Assets),
		Assets:     make([]assetStatusDTO, 0, len(fs.Assets)),
	}
	for _, a := range fs.Assets {
		d := assetStatusDTO{
			EquipmentID:            a.EquipmentID,
			Status:                 string(a.State),
			Type:                   a.Type,
			Model:                  a.Model,
			EquipmentAgeYears:      a.EquipmentAgeYears,
			LastKnownLocation:      a.Site,
			CurrentCustomerID:      xhttp.NotApplicable,
			PlannedReturnDate:      xhttp.DateOrNA(a.PlannedReturn),
			LastReturnedOn:         xhttp.DateOrNA(a.LastReturned),
			LastOperatingHours:     a.LastOperatingHours,
			LastUtilizationRate:    util.Percent(a.LastUtilizationRate),
			BreakdownsOnLastRental: a.LastBreakdowns,
		}
		if a.State == models.StateActive {
			d.CurrentCustomerID = xhttp.StringOrNA(a.CustomerID)
		}
		out.Assets = append(out.Assets, d)
	}
	return out
}

type rentalRecordDTO struct {
	EquipmentID          string  `json:"Equipment_ID"`
	CustomerID           string  `json:"Customer_ID"`
	Type                 string  `json:"Type"`
	Model                string  `json:"Model"`
	ManufactureYear      int     `json:"Manufacture_Year"`
	GPSLocation          string  `json:"GPS_Location"`
	CheckOutDate         string  `json:"CheckOut_Date"`
	PlannedReturnDate    string  `json:"Planned_Return_Date"`
	CheckInDate          *string `json:"CheckIn_Date"`
	RentalStatus         string  `json:"Rental_Status"`
	OperatingHours       float64 `json:"Operating_Hours"`
	IdleHours            float64 `json:"Idle_Hours"`
	FuelConsumedLiters   float64 `json:"Fuel_Consumed_Liters"`
	FuelEfficiency       float64 `json:"Fuel_Efficiency_L_per_hr"`
	DistanceTraveledKm   float64 `json:"Distance_Traveled_km"`
	LoadCycles           float64 `json:"Load_Cycles"`
	EngineTempMax        float64 `json:"Engine_Temp_Max"`
	HydraulicPressureMax float64 `json:"Hydraulic_Pressure_Max"`
	Breakdowns           int     `json:"Breakdowns"`
	MaintenanceFlag      string  `json:"Maintenance_Flag"`
	RentalCostUSD        float64 `json:"Rental_Cost_USD"`
	OverdueFineUSD       float64 `json:"Overdue_Fine_USD"`
	TotalBillUSD         float64 `json:"Total_Bill_USD"`
	RentalDurationDays   float64 `json:"Rental_Duration_Days"`
	PlannedDurationDays  float64 `json:"Planned_Duration_Days"`
	OverdueDays          float64 `json:"Overdue_Days"`
	EquipmentAgeYears    float64 `json:"Equipment_Age_Years"`
	UtilizationRate      float64 `json:"Utilization_Rate"`
}

type historySummaryDTO struct {
	TotalRentals        int            `json:"total_rentals"`
	TotalRentalDays     int64          `json:"total_rental_days"`
	TotalOperatingHours int64          `json:"total_operating_hours"`
	TotalIdleHours      int64          `json:"total_idle_hours"`
	TotalFuelLiters     float64        `json:"total_fuel_consumed_liters"`
	LifetimeBreakdowns  int            `json:"lifetime_breakdowns"`
	RentalsPerSite      map[string]int `json:"rentals_per_site"`
}

type assetHistoryDTO struct {
	EquipmentID   string            `json:"equipment_id"`
	Summary       historySummaryDTO `json:"summary"`
	RentalHistory []rentalRecordDTO `json:"rental_history"`
}

func toAssetHistoryDTO(h models.AssetHistory) assetHistoryDTO {
	s := h.Summary
	out := assetHistoryDTO{
		EquipmentID: h.EquipmentID,
		Summary: historySummaryDTO{
			TotalRentals:        s.TotalRentals,
			TotalRentalDays:     s.TotalRentalDays,
			TotalOperatingHours: s.TotalOperatingHours,
			TotalIdleHours:      s.TotalIdleHours,
			TotalFuelLiters:     s.TotalFuelLiters,
			LifetimeBreakdowns:  s.LifetimeBreakdowns,
			RentalsPerSite:      s.RentalsPerSite,
		},
		RentalHistory: make([]rentalRecordDTO, 0, len(h.Rentals)),
	}
	for _, e := range h.Rentals {
		out.RentalHistory = append(out.RentalHistory, toRentalRecordDTO(e))
	}
	return out
}

func toRentalRecordDTO(e models.RentalEvent) rentalRecordDTO {
	var checkin *string
	if e.CheckIn != nil {
		s := util.FormatDate(*e.CheckIn)
		checkin = &s
	}
	return rentalRecordDTO{
		EquipmentID:          e.EquipmentID,
		CustomerID:           e.CustomerID,
		Type:                 e.Type,
		Model:                e.Model,
		ManufactureYear:      e.ManufactureYear,
		GPSLocation:          e.Site,
		CheckOutDate:         util.FormatDate(e.CheckOut),
		PlannedReturnDate:    util.FormatDate(e.PlannedReturn),
		CheckInDate:          checkin,
		RentalStatus:         e.RentalStatus,
		OperatingHours:       e.OperatingHours,
		IdleHours:            e.IdleHours,
		FuelConsumedLiters:   e.FuelConsumed,
		FuelEfficiency:       e.FuelEfficiency,
		DistanceTraveledKm:   e.DistanceKm,
		LoadCycles:           e.LoadCycles,
		EngineTempMax:        e.EngineTempMax,
		HydraulicPressureMax: e.HydraulicPressureMax,
		Breakdowns:           e.Breakdowns,
		MaintenanceFlag:      e.MaintenanceFlag,
		RentalCostUSD:        e.RentalCostUSD,
		OverdueFineUSD:       e.OverdueFineUSD,
		TotalBillUSD:         e.TotalBillUSD,
		RentalDurationDays:   e.RentalDurationDays,
		PlannedDurationDays:  e.PlannedDurationDays,
		OverdueDays:          e.OverdueDays,
		EquipmentAgeYears:    e.EquipmentAgeYears,
		UtilizationRate:      e.UtilizationRate,
	}
}

type underutilizedAssetDTO struct {
	EquipmentID        string  `json:"Equipment_ID"`
	AverageUtilization float64 `json:"Average_Utilization_Rate"`
	Type               string  `json:"Type"`
	Model              string  `json:"Model"`
	GPSLocation        string  `json:"GPS_Location"`
}

type underutilizedDTO struct {
	Threshold string                  `json:"threshold"`
	Count     int                     `json:"count"`
	Assets    []underutilizedAssetDTO `json:"underutilized_assets"`
}

func toUnderutilizedDTO(threshold float64, assets []models.UnderutilizedAsset) underutilizedDTO {
	out := underutilizedDTO{
		Threshold: usecase.FormatThreshold(threshold),
		Count:     len(assets),
		Assets:    make([]underutilizedAssetDTO, 0, len(assets)),
	}
	for _, a := range assets {
		out.Assets = append(out.Assets, underutilizedAssetDTO{
			EquipmentID:        a.EquipmentID,
			AverageUtilization: a.AverageUtilization,
			Type:               a.Type,
			Model:              a.Model,
			GPSLocation:        a.Site,
		})
	}
	return out
}

type returnDueDTO struct {
	EquipmentID       string `json:"Equipment_ID"`
	Type              string `json:"Type"`
	Model             string `json:"Model"`
	CustomerID        string `json:"Customer_ID"`
	GPSLocation       string `json:"GPS_Location"`
	PlannedReturnDate string `json:"Planned_Return_Date"`
}

type returnWindowDTO struct {
	ReminderWindowDays int            `json:"reminder_window_days"`
	FromDate           string         `json:"from_date"`
	ToDate             string         `json:"to_date"`
	Count              int            `json:"count"`
	Assets             []returnDueDTO `json:"assets_due_for_return"`
}

func toReturnWindowDTO(w models.ReturnWindow) returnWindowDTO {
	out := returnWindowDTO{
		ReminderWindowDays: w.Days,
		FromDate:           util.FormatDate(w.From),
		ToDate:             util.FormatDate(w.To),
		Count:              len(w.Due),
		Assets:             make([]returnDueDTO, 0, len(w.Due)),
	}
	for _, d := range w.Due {
		out.Assets = append(out.Assets, returnDueDTO{
			EquipmentID:       d.EquipmentID,
			Type:              d.Type,
			Model:             d.Model,
			CustomerID:        d.CustomerID,
			GPSLocation:       d.Site,
			PlannedReturnDate: util.FormatDate(d.PlannedReturn),
		})
	}
	return out
}

type breakdownDTO struct {
	Prediction           int    `json:"prediction"`
	PredictionText       string `json:"prediction_text"`
	BreakdownProbability string `json:"breakdown_probability"`
}

func toBreakdownDTO(r models.BreakdownRisk) breakdownDTO {
	return breakdownDTO{
		Prediction:           r.Prediction,
		PredictionText:       r.Label,
		BreakdownProbability: util.Percent(r.Probability),
	}
}

type priceDTO struct {
	PredictedPriceUSD float64 `json:"predicted_price_usd"`
}

type forecastPointDTO struct {
	DS    string  `json:"ds"`
	Yhat  float64 `json:"yhat"`
	Lower float64 `json:"yhat_lower"`
	Upper float64 `json:"yhat_upper"`
}

type forecastDTO struct {
	EquipmentType string             `json:"equipment_type"`
	Forecast      []forecastPointDTO `json:"forecast"`
}

func toForecastDTO(f models.DemandForecast) forecastDTO {
	out := forecastDTO{
		EquipmentType: f.EquipmentType,
		Forecast:      make([]forecastPointDTO, 0, len(f.Points)),
	}
	for _, p := range f.Points {
		out.Forecast = append(out.Forecast, forecastPointDTO{
			DS:    util.FormatDate(p.Date),
			Yhat:  p.Yhat,
			Lower: p.Lower,
			Upper: p.Upper,
		})
	}
	return out
}

type anomalyDTO struct {
	EquipmentType string `json:"equipment_type"`
	IsAnomaly     bool   `json:"is_anomaly"`
	ResultText    string `json:"result_text"`
}

type healthDTO struct {
	Status          string          `json:"status"`
	SnapshotVersion uint64          `json:"snapshot_version"`
	LoadedAt        string          `json:"loaded_at,omitempty"`
	Capabilities    map[string]bool `json:"capabilities"`
}

func toHealthDTO(s *usecase.Snapshot) healthDTO {
	out := healthDTO{
		Status:          "ok",
		SnapshotVersion: s.Version,
		Capabilities:    map[string]bool{},
	}
	if !s.LoadedAt.IsZero() {
		out.LoadedAt = s.LoadedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	for capability, ok := range s.Capabilities() {
		out.Capabilities[string(capability)] = ok
		if !ok {
			out.Status = "degraded"
		}
	}
	return out
}
