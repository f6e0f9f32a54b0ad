// Package audit persists a best-effort trail of state-changing actions.
// A failed write is logged and otherwise ignored: auditing must never
// fail the operation it describes.
package audit

import (
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_fleet/internal/models"
)

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(action string, entityID uint, before, after string, actorID uint) {
	entry := models.AuditLog{
		Action:   action,
		EntityID: entityID,
		Before:   before,
		After:    after,
		ActorID:  actorID,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entityID,
			"actor":  actorID,
		}).Error("audit write failed")
	}
}
