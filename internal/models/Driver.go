// internal/models/driver.go
package models

import (
	"time"

	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"unique"` // Foreign key to User
	User          User       `gorm:"foreignKey:UserID" json:"-"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"license_number"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	Enabled       bool       `json:"enabled" gorm:"default:true;index"`
	// Email, Password and Role live on the User model.
}
