package models

import "gorm.io/gorm"

// AuditLog keeps a best-effort trail of state-changing actions.
type AuditLog struct {
	gorm.Model
	Action   string `json:"action" gorm:"index"`
	EntityID uint   `json:"entity_id" gorm:"index"`
	Before   string `json:"before"`
	After    string `json:"after"`
	ActorID  uint   `json:"actor_id"`
}
