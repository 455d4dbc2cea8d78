package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks the HMAC-SHA256 signatures the gateway attaches to checkout
// callbacks (signed with the key secret) and webhooks (signed with the webhook secret).
type Verifier struct {
	keySecret     string
	webhookSecret string
}

func NewVerifier(keySecret, webhookSecret string) *Verifier {
	return &Verifier{keySecret: keySecret, webhookSecret: webhookSecret}
}

func (v *Verifier) VerifyPayment(orderID, paymentID, signature string) error {
	return verify(v.keySecret, strings.TrimSpace(orderID)+"|"+strings.TrimSpace(paymentID), signature)
}

func (v *Verifier) VerifySubscription(paymentID, subscriptionID, signature string) error {
	return verify(v.keySecret, strings.TrimSpace(paymentID)+"|"+strings.TrimSpace(subscriptionID), signature)
}

func (v *Verifier) VerifyWebhook(body []byte, signature string) error {
	return verify(v.webhookSecret, string(body), signature)
}

// Sign produces the hex signature the gateway would send for payload.
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret, payload, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrSignatureMissing
	}
	if secret == "" {
		return ErrSignatureMismatch
	}
	expected := Sign(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}
