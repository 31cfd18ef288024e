// workers/reward_retry_worker.go
package workers

import (
	"context"
	"time"

	"ugc-rewards-system/models"
	"ugc-rewards-system/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RewardRetryWorker re-drives reward issuance for rows the synchronous
// approve path left behind: rewards stuck in pending past a grace window
// (the process died between approval and the Shopify call finishing) and
// failed rewards under the attempt cap.
type RewardRetryWorker struct {
	db          *gorm.DB
	rewards     *services.RewardService
	interval    time.Duration
	graceWindow time.Duration
}

func NewRewardRetryWorker(db *gorm.DB, rewards *services.RewardService) *RewardRetryWorker {
	return &RewardRetryWorker{
		db:          db,
		rewards:     rewards,
		interval:    2 * time.Minute,
		graceWindow: 1 * time.Minute,
	}
}

func (w *RewardRetryWorker) Start(ctx context.Context) {
	logrus.Info("🔁 Starting Reward Retry Worker…")
	go w.run(ctx)
}

func (w *RewardRetryWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Reward Retry Worker stopping")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RewardRetryWorker) sweep() {
	cutoff := time.Now().Add(-w.graceWindow)

	var rewards []models.Reward
	err := w.db.
		Where("(status = ? AND updated_at < ?) OR (status = ? AND attempts < ?)",
			models.RewardStatusPending, cutoff,
			models.RewardStatusFailed, models.MaxRewardAttempts).
		Order("updated_at ASC").
		Limit(20).
		Find(&rewards).Error
	if err != nil {
		logrus.WithError(err).Error("reward retry sweep query failed")
		return
	}

	for _, reward := range rewards {
		reward := reward
		if err := w.rewards.Reissue(&reward); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"reward_id": reward.ID,
				"attempts":  reward.Attempts,
			}).Warn("reward retry failed")
			continue
		}
		logrus.WithField("reward_id", reward.ID).Info("🎁 reward retry succeeded")
	}
}
