// middleware/auth.go
package middleware

import (
	"errors"

	"ugc-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MerchantAuth validates the X-Shopify-Shop-Domain / X-Access-Token header
// pair against the stored merchant record and attaches the merchant to ctx
// locals for the admin handlers. Not a session — a shared-secret pair the
// dashboard holds after OAuth.
func MerchantAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shopDomain := c.Get("X-Shopify-Shop-Domain")
		accessToken := c.Get("X-Access-Token")

		if shopDomain == "" || accessToken == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Shopify-Shop-Domain or X-Access-Token headers",
			})
		}

		var merchant models.Merchant
		err := db.Where("shop_domain = ? AND access_token = ?", shopDomain, accessToken).
			First(&merchant).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("merchant auth lookup failed")
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid shop or access token",
			})
		}

		if !merchant.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "merchant account is inactive",
			})
		}

		c.Locals("merchant", &merchant)
		return c.Next()
	}
}

// MerchantFromCtx pulls the merchant attached by MerchantAuth.
func MerchantFromCtx(c *fiber.Ctx) *models.Merchant {
	m, _ := c.Locals("merchant").(*models.Merchant)
	return m
}
