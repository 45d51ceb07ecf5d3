package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
)

// ActivityPruner periodically removes activity log entries older than Retention.
type ActivityPruner struct {
	DB        *gorm.DB
	StopChan  chan struct{}
	Interval  time.Duration
	Retention time.Duration

	log *logrus.Logger
	now func() time.Time
}

func NewActivityPruner(db *gorm.DB, retention, interval time.Duration, log *logrus.Logger) *ActivityPruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ActivityPruner{
		DB:        db,
		StopChan:  make(chan struct{}),
		Interval:  interval,
		Retention: retention,
		log:       loggerOr(log),
		now:       time.Now,
	}
}

// Start -> prune once, then on every tick until Stop. Retention <= 0 keeps everything.
func (ap *ActivityPruner) Start() {
	if ap.Retention <= 0 {
		ap.log.Info("activity retention disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(ap.Interval)
		defer ticker.Stop()

		ap.Prune()
		for {
			select {
			case <-ticker.C:
				ap.Prune()
			case <-ap.StopChan:
				return
			}
		}
	}()
}

func (ap *ActivityPruner) Stop() {
	close(ap.StopChan)
}

// Prune -> delete entries created before now - Retention; returns rows removed
func (ap *ActivityPruner) Prune() int64 {
	cutoff := ap.now().Add(-ap.Retention)
	res := ap.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if res.Error != nil {
		ap.log.WithError(res.Error).Error("failed to prune activity log")
		return 0
	}
	if res.RowsAffected > 0 {
		ap.log.WithFields(logrus.Fields{
			"removed": res.RowsAffected,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("activity log pruned")
	}
	return res.RowsAffected
}
