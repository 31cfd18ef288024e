package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func answer(fieldType, ref, answerType, text, email string) TypeformAnswer {
	a := TypeformAnswer{Type: answerType, Text: text, Email: email}
	a.Field.Type = fieldType
	a.Field.Ref = ref
	return a
}

func TestExtractTypeformAnswers(t *testing.T) {
	email, name, shop := extractTypeformAnswers([]TypeformAnswer{
		answer("email", "email", "email", "", "ana@example.com"),
		answer("short_text", "name", "text", "Ana", ""),
		answer("short_text", "shop_domain", "text", "demo-shop.myshopify.com", ""),
	})
	assert.Equal(t, "ana@example.com", email)
	assert.Equal(t, "Ana", name)
	assert.Equal(t, "demo-shop.myshopify.com", shop)
}

func TestExtractTypeformAnswers_Defaults(t *testing.T) {
	email, name, shop := extractTypeformAnswers(nil)
	assert.Empty(t, email)
	assert.Empty(t, name)
	assert.Equal(t, "demo-shop.myshopify.com", shop)
}

func TestExtractTypeformAnswers_IgnoresUnrelatedFields(t *testing.T) {
	email, name, shop := extractTypeformAnswers([]TypeformAnswer{
		answer("short_text", "favorite_product", "text", "Sneakers", ""),
		answer("email", "email", "email", "", "ana@example.com"),
	})
	assert.Equal(t, "ana@example.com", email)
	assert.Empty(t, name)
	assert.Equal(t, "demo-shop.myshopify.com", shop)
}
