// services/reward_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"ugc-rewards-system/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrRewardExists = errors.New("reward already exists for submission")

// RewardService is the issuance dispatcher. It creates the reward row for an
// approved submission and drives the Shopify call that mints the actual
// discount code or gift card. Issuance is deliberately not transactional
// with approval: a failed Shopify call leaves the submission approved and
// the reward row in a retryable state.
type RewardService struct {
	DB      *gorm.DB
	Shopify *ShopifyClient
}

func NewRewardService(db *gorm.DB, shopify *ShopifyClient) *RewardService {
	return &RewardService{DB: db, Shopify: shopify}
}

// CreateForSubmission inserts the pending reward row from the merchant's
// configuration. The unique index on submission_id turns a duplicate into
// ErrRewardExists.
func (s *RewardService) CreateForSubmission(merchant *models.Merchant, submission *models.Submission) (*models.Reward, error) {
	reward := models.Reward{
		SubmissionID: submission.ID,
		ShopDomain:   merchant.ShopDomain,
		Type:         merchant.RewardType,
		Value:        merchant.RewardValue,
		Currency:     merchant.RewardCurrency,
		Status:       models.RewardStatusPending,
	}
	if err := s.DB.Create(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRewardExists
		}
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return &reward, nil
}

// Issue calls Shopify and finalizes the reward row: sent with the external
// identifiers on success, failed with the error message otherwise.
func (s *RewardService) Issue(merchant *models.Merchant, customer *models.Customer, reward *models.Reward) error {
	result, err := s.Shopify.CreateReward(merchant.ShopDomain, merchant.AccessToken, RewardConfig{
		Type:          reward.Type,
		Value:         reward.Value,
		Currency:      reward.Currency,
		CustomerEmail: customer.Email,
		CustomerName:  customer.DisplayName(),
	})

	reward.Attempts++
	if err != nil {
		reward.Status = models.RewardStatusFailed
		reward.ErrorMessage = err.Error()
		if saveErr := s.DB.Save(reward).Error; saveErr != nil {
			logrus.WithError(saveErr).Error("failed to record reward failure")
		}
		return fmt.Errorf("reward issuance failed: %w", err)
	}

	now := time.Now()
	reward.Status = models.RewardStatusSent
	reward.ShopifyID = result.ShopifyID
	reward.Code = result.Code
	reward.ErrorMessage = ""
	reward.SentAt = &now
	if err := s.DB.Save(reward).Error; err != nil {
		return fmt.Errorf("failed to record issued reward: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"reward_id":  reward.ID,
		"shop":       merchant.ShopDomain,
		"type":       reward.Type,
		"shopify_id": reward.ShopifyID,
	}).Info("🎁 reward issued")
	return nil
}

// Reissue re-drives issuance for a stranded or failed reward. Used by the
// retry worker.
func (s *RewardService) Reissue(reward *models.Reward) error {
	var merchant models.Merchant
	if err := s.DB.First(&merchant, "shop_domain = ?", reward.ShopDomain).Error; err != nil {
		return fmt.Errorf("merchant lookup for reward %s failed: %w", reward.ID, err)
	}

	var submission models.Submission
	if err := s.DB.Preload("Customer").First(&submission, "id = ?", reward.SubmissionID).Error; err != nil {
		return fmt.Errorf("submission lookup for reward %s failed: %w", reward.ID, err)
	}
	if submission.Customer == nil {
		return fmt.Errorf("submission %s has no customer", submission.ID)
	}

	return s.Issue(&merchant, submission.Customer, reward)
}
