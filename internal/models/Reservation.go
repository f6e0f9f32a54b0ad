package models

import (
	"time"

	"gorm.io/gorm"
)

// ReservationState enumerates the reservation lifecycle.
// PENDING is initial; REJECTED, CANCELLED and COMPLETED are terminal.
type ReservationState string

const (
	ReservationPending   ReservationState = "PENDING"
	ReservationApproved  ReservationState = "APPROVED"
	ReservationRejected  ReservationState = "REJECTED"
	ReservationCancelled ReservationState = "CANCELLED"
	ReservationCompleted ReservationState = "COMPLETED"
)

// Reservation books a vehicle (and optionally a driver) for a time
// window on a single calendar date. Start/End are "HH:MM" local
// time-of-day values; lexicographic order matches chronological order,
// which the overlap queries rely on.
type Reservation struct {
	gorm.Model
	Reference string `json:"reference" gorm:"size:36;uniqueIndex"`

	VehicleID   uint    `json:"vehicle_id" gorm:"index:idx_res_vehicle_date"`
	Vehicle     Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
	DriverID    *uint   `json:"driver_id,omitempty" gorm:"index:idx_res_driver_date"`
	Driver      *Driver `gorm:"foreignKey:DriverID" json:"-"`
	RequesterID uint    `json:"requester_id" gorm:"index"`
	Requester   User    `gorm:"foreignKey:RequesterID" json:"-"`

	Date      time.Time `json:"date" gorm:"type:date;index:idx_res_vehicle_date;index:idx_res_driver_date"`
	StartTime string    `json:"start_time" gorm:"size:5"`
	EndTime   string    `json:"end_time" gorm:"size:5"`

	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	UnitName       string `json:"unit_name"`
	Reason         string `json:"reason"`
	PassengerCount int    `json:"passenger_count" gorm:"default:1"`

	State        ReservationState `json:"state" gorm:"size:16;default:PENDING;index"`
	ApprovedBy   *uint            `json:"approved_by,omitempty"`
	ApprovalDate *time.Time       `json:"approval_date,omitempty"`
	Notes        string           `json:"notes"`
}
