package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_MintVerifyRoundtrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", InvitationTokenTTL)
	issuedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	token := codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt)

	customerID, shopDomain, gotIssuedAt, err := codec.Verify(token, issuedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "customer-1", customerID)
	assert.Equal(t, "demo-shop.myshopify.com", shopDomain)
	assert.True(t, gotIssuedAt.Equal(issuedAt))
}

func TestTokenCodec_Deterministic(t *testing.T) {
	codec := NewTokenCodec("test-secret", InvitationTokenTTL)
	issuedAt := time.Unix(1700000000, 0)

	a := codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt)
	b := codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt)
	assert.Equal(t, a, b)

	// changing any single input changes the token
	assert.NotEqual(t, a, codec.Mint("customer-2", "demo-shop.myshopify.com", issuedAt))
	assert.NotEqual(t, a, codec.Mint("customer-1", "other-shop.myshopify.com", issuedAt))
	assert.NotEqual(t, a, codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt.Add(time.Second)))
}

func TestTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret", InvitationTokenTTL)
	other := NewTokenCodec("other-secret", InvitationTokenTTL)
	issuedAt := time.Unix(1700000000, 0)
	now := issuedAt.Add(time.Hour)

	token := codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt)

	// minted under a different secret
	_, _, _, err := codec.Verify(other.Mint("customer-1", "demo-shop.myshopify.com", issuedAt), now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// flipped payload keeps the old MAC
	forged := other.Mint("customer-2", "demo-shop.myshopify.com", issuedAt)
	_, _, _, err = codec.Verify(forged, now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, _, err = codec.Verify("not-a-token", now)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, _, _, err = codec.Verify("", now)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, _, _, err = codec.Verify(token+"x", now)
	assert.Error(t, err)
}

func TestTokenCodec_Expiry(t *testing.T) {
	codec := NewTokenCodec("test-secret", InvitationTokenTTL)
	issuedAt := time.Unix(1700000000, 0)
	token := codec.Mint("customer-1", "demo-shop.myshopify.com", issuedAt)

	_, _, _, err := codec.Verify(token, issuedAt.Add(InvitationTokenTTL-time.Minute))
	assert.NoError(t, err)

	_, _, _, err = codec.Verify(token, issuedAt.Add(InvitationTokenTTL+time.Minute))
	assert.ErrorIs(t, err, ErrTokenExpired)
}
