package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSignature returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)),
// the signature the gateway hands to the checkout client on success.
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares the client-reported signature against the
// expected one in constant time.
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
