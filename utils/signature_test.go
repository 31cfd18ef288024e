package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id":123,"financial_status":"paid"}`)

	assert.True(t, VerifyWebhookSignature(body, sign(body, "hush"), "hush"))
	assert.False(t, VerifyWebhookSignature(body, sign(body, "wrong"), "hush"))
	assert.False(t, VerifyWebhookSignature([]byte(`{"id":124}`), sign(body, "hush"), "hush"))
	assert.False(t, VerifyWebhookSignature(body, "", "hush"))
	assert.False(t, VerifyWebhookSignature(body, "garbage", "hush"))
}
