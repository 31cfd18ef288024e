// services/shopify_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ugc-rewards-system/models"

	"github.com/shopspring/decimal"
)

// DiscountValidityDays is how long an issued discount code stays usable.
const DiscountValidityDays = 30

// ShopifyClient talks to the Shopify Admin REST API on behalf of a shop.
// BaseURL overrides the https://<shop> scheme for tests.
type ShopifyClient struct {
	ClientID     string
	ClientSecret string
	APIVersion   string
	BaseURL      string
	Client       *http.Client
}

func NewShopifyClient(clientID, clientSecret string) *ShopifyClient {
	return &ShopifyClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		APIVersion:   "2024-01",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RewardConfig is what the dispatcher hands over to mint a reward on Shopify.
type RewardConfig struct {
	Type          models.RewardType
	Value         decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerName  string
}

// RewardResult carries the identifiers Shopify handed back.
type RewardResult struct {
	ShopifyID string
	Code      string
	URL       string
}

func (c *ShopifyClient) shopURL(shopDomain string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + shopDomain
}

// ExchangeCode swaps an OAuth authorization code for a shop access token.
func (c *ShopifyClient) ExchangeCode(shopDomain, code string) (accessToken, scope string, err error) {
	body, _ := json.Marshal(map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"code":          code,
	})

	resp, err := c.Client.Post(
		fmt.Sprintf("%s/admin/oauth/access_token", c.shopURL(shopDomain)),
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", "", fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token exchange failed: %s", resp.Status)
	}

	var tokenData struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenData); err != nil {
		return "", "", fmt.Errorf("token exchange response malformed: %w", err)
	}
	if tokenData.AccessToken == "" {
		return "", "", fmt.Errorf("no access token received")
	}
	return tokenData.AccessToken, tokenData.Scope, nil
}

// CreateReward mints either a discount code or a gift card depending on the
// merchant's reward configuration.
func (c *ShopifyClient) CreateReward(shopDomain, accessToken string, cfg RewardConfig) (*RewardResult, error) {
	switch cfg.Type {
	case models.RewardTypeDiscount:
		return c.createDiscountCode(shopDomain, accessToken, cfg)
	case models.RewardTypeGiftCard:
		return c.createGiftCard(shopDomain, accessToken, cfg)
	default:
		return nil, fmt.Errorf("invalid reward type %q", cfg.Type)
	}
}

// createDiscountCode creates a single-use, once-per-customer price rule with
// a 30-day window and attaches a discount code to it. A PERCENTAGE currency
// means a percentage rule, anything else a fixed amount in cents.
func (c *ShopifyClient) createDiscountCode(shopDomain, accessToken string, cfg RewardConfig) (*RewardResult, error) {
	percentage := cfg.Currency == "PERCENTAGE"
	valueType := "fixed_amount"
	value := "-" + cfg.Value.Mul(decimal.NewFromInt(100)).String()
	if percentage {
		valueType = "percentage"
		value = "-" + cfg.Value.String()
	}

	now := time.Now()
	priceRule := map[string]interface{}{
		"price_rule": map[string]interface{}{
			"title":              fmt.Sprintf("UGC Reward - %s", cfg.CustomerName),
			"target_type":        "line_item",
			"target_selection":   "all",
			"allocation_method":  "across",
			"value_type":         valueType,
			"value":              value,
			"customer_selection": "all",
			"usage_limit":        1,
			"once_per_customer":  true,
			"starts_at":          now.Format(time.RFC3339),
			"ends_at":            now.AddDate(0, 0, DiscountValidityDays).Format(time.RFC3339),
		},
	}

	var priceRuleResp struct {
		PriceRule struct {
			ID int64 `json:"id"`
		} `json:"price_rule"`
	}
	if err := c.post(shopDomain, accessToken, "price_rules", priceRule, &priceRuleResp); err != nil {
		return nil, fmt.Errorf("price rule creation failed: %w", err)
	}

	codeSuffix := fmt.Sprintf("%d", now.UnixMilli())
	codeSuffix = codeSuffix[len(codeSuffix)-6:]
	unit := cfg.Currency
	if percentage {
		unit = "PCT"
	}
	discountCode := map[string]interface{}{
		"discount_code": map[string]interface{}{
			"code": fmt.Sprintf("UGC-%s%s-%s", cfg.Value.String(), unit, codeSuffix),
		},
	}

	var codeResp struct {
		DiscountCode struct {
			Code string `json:"code"`
		} `json:"discount_code"`
	}
	path := fmt.Sprintf("price_rules/%d/discount_codes", priceRuleResp.PriceRule.ID)
	if err := c.post(shopDomain, accessToken, path, discountCode, &codeResp); err != nil {
		return nil, fmt.Errorf("discount code creation failed: %w", err)
	}

	return &RewardResult{
		ShopifyID: fmt.Sprintf("%d", priceRuleResp.PriceRule.ID),
		Code:      codeResp.DiscountCode.Code,
	}, nil
}

func (c *ShopifyClient) createGiftCard(shopDomain, accessToken string, cfg RewardConfig) (*RewardResult, error) {
	giftCard := map[string]interface{}{
		"gift_card": map[string]interface{}{
			"initial_value": cfg.Value.Mul(decimal.NewFromInt(100)).IntPart(),
			"currency":      cfg.Currency,
			"note":          fmt.Sprintf("UGC Reward for %s (%s)", cfg.CustomerName, cfg.CustomerEmail),
		},
	}

	var resp struct {
		GiftCard struct {
			ID   int64  `json:"id"`
			Code string `json:"code"`
			URL  string `json:"url"`
		} `json:"gift_card"`
	}
	if err := c.post(shopDomain, accessToken, "gift_cards", giftCard, &resp); err != nil {
		return nil, fmt.Errorf("gift card creation failed: %w", err)
	}

	return &RewardResult{
		ShopifyID: fmt.Sprintf("%d", resp.GiftCard.ID),
		Code:      resp.GiftCard.Code,
		URL:       resp.GiftCard.URL,
	}, nil
}

// post sends an authenticated Admin API request and decodes the response.
func (c *ShopifyClient) post(shopDomain, accessToken, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/admin/api/%s/%s.json", c.shopURL(shopDomain), c.APIVersion, path)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shopify API %s returned %s: %s", path, resp.Status, string(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
