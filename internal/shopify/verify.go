package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HeaderHMAC carries base64(HMAC-SHA256(secret, raw body)).
const HeaderHMAC = "X-Shopify-Hmac-Sha256"

// Sign returns the signature Shopify would send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret. The body must
// be the exact bytes received on the wire. The comparison is exact and
// case-sensitive; an empty signature never matches.
func Verify(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}
