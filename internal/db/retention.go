package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// runRetentionOnce performs a single pass of retention cleanup, deleting
// event rows older than the retention horizon from all three event
// tables. The recorder and aggregator never delete rows themselves;
// aging out old telemetry is purely an operational concern.
func runRetentionOnce(db *gorm.DB, retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	if err := db.Where("timestamp < ?", cutoff).Delete(&AuthMetric{}).Error; err != nil {
		return err
	}
	if err := db.Where("timestamp < ?", cutoff).Delete(&SessionEvent{}).Error; err != nil {
		return err
	}
	return db.Where("timestamp < ?", cutoff).Delete(&AuthError{}).Error
}

// StartRetentionWorker launches a background goroutine that runs the
// retention cleanup once at startup and then once per day. A retention
// of 0 days disables the worker entirely and events are kept forever.
func StartRetentionWorker(db *gorm.DB, retentionDays int, log logrus.FieldLogger) {
	if retentionDays <= 0 {
		return
	}

	go func() {
		if err := runRetentionOnce(db, retentionDays); err != nil {
			log.WithError(err).Error("retention cleanup failed (startup)")
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runRetentionOnce(db, retentionDays); err != nil {
				log.WithError(err).Error("retention cleanup failed")
			}
		}
	}()
}
