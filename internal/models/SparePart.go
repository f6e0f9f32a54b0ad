package models

import "gorm.io/gorm"

// SparePart is a stock line in the workshop inventory.
type SparePart struct {
	gorm.Model
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" gorm:"unique"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"` // reorder threshold
	Location string `json:"location"`
}
