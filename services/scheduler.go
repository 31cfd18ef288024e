// services/scheduler.go
package services

import (
	"time"

	"ugc-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StartTokenPurgeScheduler sweeps expired, never-used upload tokens once an
// hour. Used tokens are kept for the audit trail.
func StartTokenPurgeScheduler(db *gorm.DB) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			res := db.Where("used_at IS NULL AND expires_at < ?", time.Now()).
				Delete(&models.UploadToken{})
			if res.Error != nil {
				logrus.WithError(res.Error).Error("[Scheduler] upload token purge failed")
				return
			}
			if res.RowsAffected > 0 {
				logrus.WithField("purged", res.RowsAffected).Info("🧹 expired upload tokens purged")
			}
		}),
	)
}
