// fingerprint.go

package gourdiansession

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// CredentialFingerprint returns base64(HMAC-SHA256(username + "|" + credential, key)).
// The value is deterministic for a given key and input and cannot be
// reversed into the credential.
func CredentialFingerprint(key []byte, username, credential string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(username))
	mac.Write([]byte{'|'})
	mac.Write([]byte(credential))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// FingerprintEqual compares two fingerprints in constant time.
// Empty values never match.
func FingerprintEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
