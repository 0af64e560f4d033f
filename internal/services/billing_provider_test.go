package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider() *PaymentProvider {
	return &PaymentProvider{
		MerchantLogin: "shop",
		Password1:     "pass1",
		Password2:     "pass2",
		BaseURL:       "https://pay.example.com/Merchant/Index.aspx",
		Currency:      "KZT",
	}
}

func TestGeneratePaymentURL(t *testing.T) {
	p := testProvider()

	raw := p.GeneratePaymentURL("42", 10.0, "Pro plan", "buyer@example.com")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, p.BaseURL+"?"))

	q := parsed.Query()
	assert.Equal(t, "shop", q.Get("MrchLogin"))
	assert.Equal(t, "10.00", q.Get("OutSum"))
	assert.Equal(t, "42", q.Get("InvId"))
	assert.Equal(t, "Pro plan", q.Get("Desc"))
	assert.Equal(t, "buyer@example.com", q.Get("Email"))
	assert.Equal(t, "KZT", q.Get("IncCurrLabel"))
	// md5("shop:10.00:42:pass1"), uppercase hex.
	assert.Equal(t, "0FEC0E53B6594D10EE3807DB0C7921AD", q.Get("SignatureValue"))
}

func TestVerifyResultSignature(t *testing.T) {
	p := testProvider()

	// md5("10.00:42:pass2"), uppercase hex.
	sig := "48D33F1F460BF86F2F6FB208AE7B47D3"
	assert.True(t, p.VerifyResultSignature(10.0, "42", sig))
	assert.True(t, p.VerifyResultSignature(10.0, "42", strings.ToLower(sig)))

	assert.False(t, p.VerifyResultSignature(10.01, "42", sig))
	assert.False(t, p.VerifyResultSignature(10.0, "43", sig))
	assert.False(t, p.VerifyResultSignature(10.0, "42", "deadbeef"))
}
