// services/customer_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"ugc-rewards-system/models"

	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAlreadyInvited   = errors.New("invitation already recorded for customer")
)

// ShopifyCustomer is the customer fragment inside an order webhook payload.
type ShopifyCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CustomerService is the customer ledger plus the invitation tracker.
type CustomerService struct {
	DB *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{DB: db}
}

// FindOrCreateCustomer looks a customer up by (shop domain, external id) and
// inserts a fresh row with zero orders on miss. Safe to call repeatedly with
// the same identity: a racing duplicate insert is recovered by re-fetching.
func (s *CustomerService) FindOrCreateCustomer(sc ShopifyCustomer, shopDomain string) (*models.Customer, error) {
	externalID := fmt.Sprintf("%d", sc.ID)

	var customer models.Customer
	err := s.DB.Where("shop_domain = ? AND shopify_customer_id = ?", shopDomain, externalID).
		First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	customer = models.Customer{
		ShopDomain:        shopDomain,
		ShopifyCustomerID: externalID,
		Email:             sc.Email,
		FirstName:         sc.FirstName,
		LastName:          sc.LastName,
		OrdersCount:       0,
	}
	if err := s.DB.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the insert race to a concurrent webhook — use theirs
			if err := s.DB.Where("shop_domain = ? AND shopify_customer_id = ?", shopDomain, externalID).
				First(&customer).Error; err != nil {
				return nil, fmt.Errorf("customer re-fetch after conflict failed: %w", err)
			}
			return &customer, nil
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// IncrementOrderCount bumps the customer's paid-order counter with a single
// SQL-side increment, so concurrent order webhooks for the same customer
// cannot lose updates, and returns the post-increment record.
func (s *CustomerService) IncrementOrderCount(customerID string) (*models.Customer, error) {
	res := s.DB.Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("orders_count", gorm.Expr("orders_count + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCustomerNotFound
	}

	var customer models.Customer
	if err := s.DB.First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload customer: %w", err)
	}
	return &customer, nil
}

// HasInvitation reports whether an invitation was already recorded for the
// customer at this shop.
func (s *CustomerService) HasInvitation(customerID, shopDomain string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Invitation{}).
		Where("customer_id = ? AND shop_domain = ?", customerID, shopDomain).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("invitation lookup failed: %w", err)
	}
	return count > 0, nil
}

// RecordInvitation inserts the one-per-customer invitation row. The unique
// index turns a duplicate send race into ErrAlreadyInvited instead of a
// second invitation.
func (s *CustomerService) RecordInvitation(customerID, shopDomain string, sentAt time.Time) error {
	inv := models.Invitation{
		CustomerID: customerID,
		ShopDomain: shopDomain,
		SentAt:     sentAt,
	}
	if err := s.DB.Create(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyInvited
		}
		return fmt.Errorf("failed to record invitation: %w", err)
	}
	return nil
}
