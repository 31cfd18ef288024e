package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardStatus tracks the issuance lifecycle of a reward
type RewardStatus string

const (
	RewardStatusPending RewardStatus = "pending"
	RewardStatusSent    RewardStatus = "sent"
	RewardStatusFailed  RewardStatus = "failed"
)

// MaxRewardAttempts caps how often the retry worker re-drives a failed
// issuance before giving up.
const MaxRewardAttempts = 3

// Reward is the discount code or gift card issued for an approved
// submission. One per submission (unique index). The row itself is the
// saga state: created pending, finalized sent or failed by the Shopify
// call, and re-driven by the retry worker while retryable.
type Reward struct {
	ID           string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SubmissionID string          `gorm:"uniqueIndex;not null" json:"submission_id"`
	ShopDomain   string          `gorm:"index;not null" json:"shop_domain"`
	Type         RewardType      `gorm:"not null" json:"type"`
	Value        decimal.Decimal `gorm:"type:numeric(12,2)" json:"value"`
	Currency     string          `json:"currency"`
	Status       RewardStatus    `gorm:"not null;default:'pending';index" json:"status"`
	ShopifyID    string          `json:"shopify_id,omitempty"`
	Code         string          `json:"code,omitempty"`
	ErrorMessage string          `gorm:"type:text" json:"error_message,omitempty"`
	Attempts     int             `gorm:"default:0" json:"attempts"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Retryable reports whether the retry worker should pick this reward up.
func (r *Reward) Retryable() bool {
	return r.Status == RewardStatusFailed && r.Attempts < MaxRewardAttempts
}
