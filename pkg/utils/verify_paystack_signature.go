package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// VerifyPaystackSignature recomputes the HMAC-SHA512 of the raw request body
// with the shared webhook secret and compares it against the value Paystack
// sent in the X-Paystack-Signature header.
func VerifyPaystackSignature(secret, signature string, body []byte) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
