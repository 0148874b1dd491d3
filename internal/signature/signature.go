// Package signature implements the keyed-hash authentication used by the
// upstream platform: base64(HMAC-SHA256(secret, body)) carried in a request
// header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Compute returns the base64-encoded HMAC-SHA256 digest of body under secret,
// the encoding the sender puts in its signature header.
func Compute(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether presented is the digest of body under secret. The
// comparison is constant-time; a fast-exit string compare would leak how many
// leading bytes of an attacker-supplied digest match. body must be the exact
// bytes received on the wire: verifying a re-serialized payload silently
// breaks authentication whenever whitespace, key order, or numeric formatting
// differ.
func Verify(secret string, body []byte, presented string) bool {
	if secret == "" || presented == "" {
		return false
	}
	expected := Compute(secret, body)
	return hmac.Equal([]byte(expected), []byte(presented))
}
