// Package crypt signs and verifies payment gateway callbacks with
// HMAC-SHA256.
//
//	ok := crypt.Verify(secret, orderID+"|"+paymentID, signature)
package crypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA256 of message under secret.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares signature against Sign(secret, message) in constant time.
// Surrounding whitespace and upper-case hex are tolerated.
func Verify(secret, message, signature string) bool {
	want := Sign(secret, message)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
