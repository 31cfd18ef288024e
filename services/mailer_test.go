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

func TestRewardText(t *testing.T) {
	m := &models.Merchant{
		RewardType:     models.RewardTypeDiscount,
		RewardValue:    decimal.NewFromInt(15),
		RewardCurrency: "PERCENTAGE",
	}
	assert.Equal(t, "A 15% discount", RewardText(m))

	m.RewardCurrency = "USD"
	assert.Equal(t, "A 15 USD discount", RewardText(m))

	m.RewardType = models.RewardTypeGiftCard
	m.RewardValue = decimal.NewFromInt(25)
	m.RewardCurrency = "EUR"
	assert.Equal(t, "A 25 EUR gift card", RewardText(m))

	m.RewardType = models.RewardType("")
	assert.Equal(t, "A special reward", RewardText(m))
}

func TestSendInvitation_RendersTemplate(t *testing.T) {
	var payload struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := NewMailer("re_key", "rewards@demo.app", "https://app.demo")
	mailer.BaseURL = srv.URL

	merchant := &models.Merchant{
		ShopDomain:     "demo-shop.myshopify.com",
		RewardType:     models.RewardTypeDiscount,
		RewardValue:    decimal.NewFromInt(10),
		RewardCurrency: "PERCENTAGE",
		EmailTemplate:  "Hello {{customer_name}}, go to {{ugc_form_url}} for {{reward_text}} from {{shop_domain}}",
	}
	customer := &models.Customer{Email: "ana@example.com", FirstName: "Ana"}

	require.NoError(t, mailer.SendInvitation(merchant, customer, "tok123"))

	assert.Equal(t, []string{"ana@example.com"}, payload.To)
	assert.Equal(t, "rewards@demo.app", payload.From)
	assert.Equal(t,
		"Hello Ana, go to https://app.demo/ugc-form?token=tok123 for A 10% discount from demo-shop.myshopify.com",
		payload.HTML)
}

func TestSendInvitation_NoAPIKeyLogsOnly(t *testing.T) {
	mailer := NewMailer("", "rewards@demo.app", "https://app.demo")

	merchant := &models.Merchant{ShopDomain: "demo-shop.myshopify.com"}
	customer := &models.Customer{Email: "ana@example.com"}

	// no server involved, must not error
	assert.NoError(t, mailer.SendInvitation(merchant, customer, "tok123"))
	assert.NoError(t, mailer.SendUploadLink(customer, "demo-shop.myshopify.com", "ugc_tok"))
}

func TestSendUploadLink_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	mailer := NewMailer("re_key", "rewards@demo.app", "https://app.demo")
	mailer.BaseURL = srv.URL

	err := mailer.SendUploadLink(&models.Customer{Email: "ana@example.com"}, "demo-shop.myshopify.com", "ugc_tok")
	assert.ErrorContains(t, err, "429")
}
