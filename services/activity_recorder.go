package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
)

// EventSink receives what the screen components report outward.
type EventSink interface {
	Record(entry models.ActivityLog)
	Publish(msg live.Message)
}

// outbox collects sink calls made while a component holds its lock;
// flush runs them once the lock is released.
type outbox struct {
	entries  []models.ActivityLog
	messages []live.Message
}

func (o *outbox) flush(sink EventSink) {
	if sink == nil {
		return
	}
	for _, entry := range o.entries {
		sink.Record(entry)
	}
	for _, msg := range o.messages {
		sink.Publish(msg)
	}
}

// Broadcaster is the part of the live hub the recorder needs.
type Broadcaster interface {
	Broadcast(msg live.Message)
}

// ActivityRecorder writes the audit trail and forwards events to live clients.
type ActivityRecorder struct {
	DB  *gorm.DB
	Hub Broadcaster
	log *logrus.Logger
}

func NewActivityRecorder(db *gorm.DB, hub Broadcaster, log *logrus.Logger) *ActivityRecorder {
	return &ActivityRecorder{DB: db, Hub: hub, log: loggerOr(log)}
}

// Record -> simpan entry; kegagalan DB hanya di-log
func (ar *ActivityRecorder) Record(entry models.ActivityLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if ar.DB != nil {
		if err := ar.DB.Create(&entry).Error; err != nil {
			ar.log.WithError(err).WithField("action", entry.Action).Error("failed to write activity log")
		}
	}
	ar.Publish(live.Message{
		Event:     live.EventNotification,
		Component: entry.Component,
		Data:      entry,
	})
}

func (ar *ActivityRecorder) Publish(msg live.Message) {
	if ar.Hub != nil {
		ar.Hub.Broadcast(msg)
	}
}

// Recent -> newest entries first
func (ar *ActivityRecorder) Recent(limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := ar.DB.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func loggerOr(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
