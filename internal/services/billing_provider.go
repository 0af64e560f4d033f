package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"saaskit_backend/internal/config"
)

// PaymentProvider builds signed payment URLs and verifies result
// callbacks for a robokassa-style merchant API.
type PaymentProvider struct {
	MerchantLogin string
	Password1     string
	Password2     string
	BaseURL       string
	Currency      string
}

func NewPaymentProvider(cfg *config.Config) *PaymentProvider {
	return &PaymentProvider{
		MerchantLogin: cfg.Billing.MerchantLogin,
		Password1:     cfg.Billing.Password1,
		Password2:     cfg.Billing.Password2,
		BaseURL:       cfg.Billing.BaseURL,
		Currency:      cfg.Billing.Currency,
	}
}

// GeneratePaymentURL creates the hosted-checkout link for an order.
func (p *PaymentProvider) GeneratePaymentURL(orderID string, amount float64, description, email string) string {
	signature := p.generateSignature(orderID, amount)
	params := url.Values{}

	params.Set("MrchLogin", p.MerchantLogin)
	params.Set("OutSum", fmt.Sprintf("%.2f", amount))
	params.Set("InvId", orderID)
	params.Set("Desc", description)
	params.Set("SignatureValue", signature)
	params.Set("Email", email)
	params.Set("IncCurrLabel", p.Currency)

	return fmt.Sprintf("%s?%s", p.BaseURL, params.Encode())
}

// generateSignature builds the md5 request signature (password #1).
func (p *PaymentProvider) generateSignature(orderID string, amount float64) string {
	plain := fmt.Sprintf("%s:%.2f:%s:%s", p.MerchantLogin, amount, orderID, p.Password1)
	hash := md5.Sum([]byte(plain))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// VerifyResultSignature checks the callback signature (password #2).
func (p *PaymentProvider) VerifyResultSignature(amount float64, orderID, receivedSig string) bool {
	plain := fmt.Sprintf("%.2f:%s:%s", amount, orderID, p.Password2)
	hash := md5.Sum([]byte(plain))
	expectedSig := strings.ToUpper(hex.EncodeToString(hash[:]))
	return strings.EqualFold(expectedSig, receivedSig)
}
