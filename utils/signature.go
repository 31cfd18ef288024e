// utils/signature.go
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature checks a Shopify-style webhook signature:
// base64(HMAC-SHA256(secret, raw body)) compared in constant time.
// Typeform signs the same way modulo a "sha256=" prefix, which callers
// strip before handing the header value in.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
