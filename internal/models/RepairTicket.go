package models

import (
	"time"

	"gorm.io/gorm"
)

// Repair ticket statuses.
const (
	RepairOpen       = "open"
	RepairInProgress = "in_progress"
	RepairClosed     = "closed"
)

type RepairTicket struct {
	gorm.Model
	VehicleID   uint       `json:"vehicle_id" gorm:"index"`
	Vehicle     Vehicle    `gorm:"foreignKey:VehicleID" json:"-"`
	OpenedBy    uint       `json:"opened_by"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"default:open;index"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Notes       string     `json:"notes"`

	Parts []RepairPart `gorm:"foreignKey:RepairTicketID" json:"parts,omitempty"`
}

// RepairPart records spare-part consumption against a ticket.
type RepairPart struct {
	gorm.Model
	RepairTicketID uint      `json:"repair_ticket_id" gorm:"index"`
	SparePartID    uint      `json:"spare_part_id"`
	SparePart      SparePart `gorm:"foreignKey:SparePartID" json:"-"`
	Quantity       int       `json:"quantity"`
}
