// internal/models/vehicle.go
package models

import "gorm.io/gorm"

// Vehicle states as stored in the vehicles.state column.
const (
	VehicleAvailable   = "available"
	VehicleReserved    = "reserved"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

type Vehicle struct {
	gorm.Model
	PlateNumber  string `json:"plate_number" gorm:"unique"`
	Registration string `json:"registration"`
	Brand        string `json:"brand"`
	VehicleModel string `json:"model" gorm:"column:model"`
	Year         int    `json:"year"`
	Capacity     int    `json:"capacity"`
	Mileage      int    `json:"mileage"`
	State        string `json:"state" gorm:"default:available;index"` // see Vehicle* constants
}
