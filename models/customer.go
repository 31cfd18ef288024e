package models

import "time"

// Customer mirrors a shop customer seen through order webhooks or the
// Typeform entry point. Identity is (shop_domain, shopify_customer_id);
// the unique index makes find-or-create idempotent under racing webhooks.
type Customer struct {
	ID                string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ShopDomain        string    `gorm:"uniqueIndex:idx_customers_shop_external;not null" json:"shop_domain"`
	ShopifyCustomerID string    `gorm:"uniqueIndex:idx_customers_shop_external;not null" json:"shopify_customer_id"`
	Email             string    `gorm:"index" json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	OrdersCount       int       `gorm:"default:0" json:"orders_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName is what goes into emails and reward notes.
func (c *Customer) DisplayName() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	return name
}
