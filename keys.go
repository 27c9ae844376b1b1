// keys.go

package gourdiansession

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// sessionKeys holds the algorithm-specific keys derived from the configured
// secret. Each algorithm gets its own derivation; neither form is valid for
// the other algorithm.
type sessionKeys struct {
	hmac   []byte // HS256 signing and fingerprint key
	cipher []byte // AES-256 key, always 32 bytes
}

// deriveKeys derives both keys from the raw secret.
func deriveKeys(secret string) sessionKeys {
	return sessionKeys{
		hmac:   deriveHMACKey(secret),
		cipher: deriveCipherKey(secret),
	}
}

// deriveHMACKey returns the secret base64-encoded (standard alphabet) with
// the '=' padding stripped. The result is used as raw key bytes for
// HMAC-SHA256.
func deriveHMACKey(secret string) []byte {
	encoded := base64.StdEncoding.EncodeToString([]byte(secret))
	return []byte(strings.TrimRight(encoded, "="))
}

// deriveCipherKey returns SHA-256(secret), the 32-byte key for AES-256.
func deriveCipherKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
