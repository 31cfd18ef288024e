package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ugc-rewards-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShopifyClient(baseURL string) *ShopifyClient {
	c := NewShopifyClient("client-id", "client-secret")
	c.BaseURL = baseURL
	return c
}

func TestExchangeCode(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/oauth/access_token", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "shpat_abc123",
			"scope":        "read_orders,write_discounts",
		})
	}))
	defer srv.Close()

	token, scope, err := testShopifyClient(srv.URL).ExchangeCode("demo-shop.myshopify.com", "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc123", token)
	assert.Equal(t, "read_orders,write_discounts", scope)
	assert.Equal(t, "client-id", gotBody["client_id"])
	assert.Equal(t, "client-secret", gotBody["client_secret"])
	assert.Equal(t, "auth-code", gotBody["code"])
}

func TestExchangeCode_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, _, err := testShopifyClient(srv.URL).ExchangeCode("demo-shop.myshopify.com", "auth-code")
	assert.ErrorContains(t, err, "no access token")
}

func TestCreateReward_PercentageDiscount(t *testing.T) {
	var priceRule map[string]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_abc123", r.Header.Get("X-Shopify-Access-Token"))
		switch r.URL.Path {
		case "/admin/api/2024-01/price_rules.json":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&priceRule))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"price_rule": map[string]interface{}{"id": 9001},
			})
		case "/admin/api/2024-01/price_rules/9001/discount_codes.json":
			var dc map[string]map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&dc))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"discount_code": map[string]string{"code": dc["discount_code"]["code"]},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	result, err := testShopifyClient(srv.URL).CreateReward("demo-shop.myshopify.com", "shpat_abc123", RewardConfig{
		Type:          models.RewardTypeDiscount,
		Value:         decimal.NewFromInt(15),
		Currency:      "PERCENTAGE",
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana Torres",
	})
	require.NoError(t, err)

	rule := priceRule["price_rule"]
	assert.Equal(t, "percentage", rule["value_type"])
	assert.Equal(t, "-15", rule["value"])
	assert.Equal(t, float64(1), rule["usage_limit"])
	assert.Equal(t, true, rule["once_per_customer"])
	assert.Equal(t, "UGC Reward - Ana Torres", rule["title"])

	assert.Equal(t, "9001", result.ShopifyID)
	assert.Contains(t, result.Code, "UGC-15PCT-")
}

func TestCreateReward_FixedAmountDiscount(t *testing.T) {
	var priceRule map[string]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/api/2024-01/price_rules.json":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&priceRule))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"price_rule": map[string]interface{}{"id": 42},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"discount_code": map[string]string{"code": "UGC-10USD-123456"},
			})
		}
	}))
	defer srv.Close()

	_, err := testShopifyClient(srv.URL).CreateReward("demo-shop.myshopify.com", "tok", RewardConfig{
		Type:     models.RewardTypeDiscount,
		Value:    decimal.NewFromInt(10),
		Currency: "USD",
	})
	require.NoError(t, err)

	rule := priceRule["price_rule"]
	assert.Equal(t, "fixed_amount", rule["value_type"])
	assert.Equal(t, "-1000", rule["value"]) // cents
}

func TestCreateReward_GiftCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/api/2024-01/gift_cards.json", r.URL.Path)
		var payload map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(2500), payload["gift_card"]["initial_value"])
		assert.Equal(t, "EUR", payload["gift_card"]["currency"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"gift_card": map[string]interface{}{"id": 777, "code": "GIFTCODE", "url": "https://gift"},
		})
	}))
	defer srv.Close()

	result, err := testShopifyClient(srv.URL).CreateReward("demo-shop.myshopify.com", "tok", RewardConfig{
		Type:          models.RewardTypeGiftCard,
		Value:         decimal.NewFromInt(25),
		Currency:      "EUR",
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", result.ShopifyID)
	assert.Equal(t, "GIFTCODE", result.Code)
	assert.Equal(t, "https://gift", result.URL)
}

func TestCreateReward_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"access denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testShopifyClient(srv.URL).CreateReward("demo-shop.myshopify.com", "tok", RewardConfig{
		Type:     models.RewardTypeGiftCard,
		Value:    decimal.NewFromInt(25),
		Currency: "EUR",
	})
	assert.ErrorContains(t, err, "403")
}

func TestCreateReward_InvalidType(t *testing.T) {
	_, err := testShopifyClient("http://unused").CreateReward("demo-shop.myshopify.com", "tok", RewardConfig{
		Type: models.RewardType("points"),
	})
	assert.ErrorContains(t, err, "invalid reward type")
}
