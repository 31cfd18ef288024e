package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardType is the kind of reward a merchant hands out on approval
type RewardType string

const (
	RewardTypeDiscount RewardType = "discount"
	RewardTypeGiftCard RewardType = "gift_card"
)

// Merchant represents an installed shop. One row per shop domain, created on
// OAuth completion and upserted on re-auth. Never deleted.
type Merchant struct {
	ID             string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ShopDomain     string          `gorm:"uniqueIndex;not null" json:"shop_domain"`
	AccessToken    string          `gorm:"not null" json:"-"`
	Scope          string          `json:"scope"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	RewardType     RewardType      `gorm:"default:'discount'" json:"reward_type"`
	RewardValue    decimal.Decimal `gorm:"type:numeric(12,2);default:10" json:"reward_value"`
	RewardCurrency string          `gorm:"default:'PERCENTAGE'" json:"reward_currency"`
	EmailTemplate  string          `gorm:"type:text" json:"email_template,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
