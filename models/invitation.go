package models

import "time"

// Invitation records that a UGC invitation email went out to a customer.
// At most one per (customer, shop) — existence of the row is the
// "already invited" flag. Insert-only, immutable after creation.
type Invitation struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CustomerID string    `gorm:"uniqueIndex:idx_invitations_customer_shop;not null" json:"customer_id"`
	ShopDomain string    `gorm:"uniqueIndex:idx_invitations_customer_shop;not null" json:"shop_domain"`
	SentAt     time.Time `json:"sent_at"`
	CreatedAt  time.Time `json:"created_at"`
}
