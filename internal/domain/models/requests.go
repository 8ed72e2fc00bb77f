package models

// Requests for the fleet HTTP endpoints. Numeric query parameters stay strings so
// the ledger can reject unparsable values with InvalidInputError naming the field.

type AssetStatusRequest struct {
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=Active Idle"`
	Location string `query:"location" json:"location" validate:"max=64"`
	Search   string `query:"search" json:"search" validate:"max=64"`
}

type AssetHistoryRequest struct {
	EquipmentID string `param:"equipment_id" validate:"required,max=64"`
}

type UnderutilizedRequest struct {
	Threshold string `query:"threshold" json:"threshold" default:"0.5"`
}

type ReturnsDueRequest struct {
	DaysOut string `query:"days_out" json:"days_out" default:"7"`
}

type ForecastRequest struct {
	EquipmentType string `json:"equipment_type" validate:"required"`
	Periods       *int   `json:"periods" default:"30" validate:"required,gte=1,lte=3650"`
}
