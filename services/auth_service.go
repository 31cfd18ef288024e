// services/auth_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ugc-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var shopDomainRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*\.myshopify\.com$`)

// OAuthScopes are requested on install.
var OAuthScopes = []string{
	"read_customers",
	"write_customers",
	"read_orders",
	"write_discounts",
	"read_discounts",
}

const (
	oauthStateCookie = "shopify_oauth_state"
	oauthShopCookie  = "shopify_shop_domain"
	oauthCookieTTL   = 10 * time.Minute
)

// AuthService drives the Shopify OAuth install flow and persists the
// resulting merchant credential.
type AuthService struct {
	DB          *gorm.DB
	Shopify     *ShopifyClient
	RedirectURI string
	AppURL      string
}

func NewAuthService(db *gorm.DB, shopify *ShopifyClient, redirectURI, appURL string) *AuthService {
	return &AuthService{DB: db, Shopify: shopify, RedirectURI: redirectURI, AppURL: strings.TrimSuffix(appURL, "/")}
}

// Install starts the authorization-code flow: validates the shop domain,
// parks state + shop in short-lived cookies and redirects to Shopify.
func (s *AuthService) Install(c *fiber.Ctx) error {
	shop := c.Query("shop")
	if shop == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing shop parameter"})
	}

	shopDomain := shop
	if !strings.Contains(shopDomain, ".myshopify.com") {
		shopDomain += ".myshopify.com"
	}
	if !shopDomainRegex.MatchString(shopDomain) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid shop domain"})
	}

	stateBytes := make([]byte, 32)
	if _, err := rand.Read(stateBytes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate state"})
	}
	state := hex.EncodeToString(stateBytes)

	s.setOAuthCookie(c, oauthStateCookie, state)
	s.setOAuthCookie(c, oauthShopCookie, shopDomain)

	authorizeURL := fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shopDomain, url.Values{
		"client_id":    {s.Shopify.ClientID},
		"scope":        {strings.Join(OAuthScopes, ",")},
		"redirect_uri": {s.RedirectURI},
		"state":        {state},
	}.Encode())

	return c.Redirect(authorizeURL, fiber.StatusFound)
}

// Callback finishes the flow: checks state and shop against the cookies,
// exchanges the code and upserts the merchant record.
func (s *AuthService) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	shop := c.Query("shop")

	if code == "" || state == "" || shop == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required OAuth parameters"})
	}

	storedState := c.Cookies(oauthStateCookie)
	if storedState == "" || state != storedState {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid state parameter"})
	}

	shopDomain := shop
	if !strings.Contains(shopDomain, ".myshopify.com") {
		shopDomain += ".myshopify.com"
	}
	if stored := c.Cookies(oauthShopCookie); stored == "" || stored != shopDomain {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Shop domain mismatch"})
	}

	accessToken, scope, err := s.Shopify.ExchangeCode(shopDomain, code)
	if err != nil {
		logrus.WithError(err).WithField("shop", shopDomain).Error("OAuth code exchange failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete OAuth"})
	}

	merchant := models.Merchant{
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
		Scope:       scope,
		IsActive:    true,
	}
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "scope", "is_active", "updated_at"}),
	}).Create(&merchant).Error
	if err != nil {
		logrus.WithError(err).Error("merchant upsert failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save merchant data"})
	}

	s.clearOAuthCookie(c, oauthStateCookie)
	s.clearOAuthCookie(c, oauthShopCookie)

	logrus.WithField("shop", shopDomain).Info("✅ merchant installed")
	return c.Redirect(fmt.Sprintf("%s/dashboard?shop=%s", s.AppURL, shopDomain), fiber.StatusFound)
}

func (s *AuthService) setOAuthCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(oauthCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *AuthService) clearOAuthCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
