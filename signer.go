// signer.go

package gourdiansession

import (
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// signingMethod is the only algorithm tokens are signed and verified with.
var signingMethod = jwt.SigningMethodHS256

// sign returns base64url(HMAC-SHA256(signingString, key)) without padding.
func sign(signingString string, key []byte) (string, error) {
	sig, err := signingMethod.Sign(signingString, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

// verify recomputes the HMAC of signingString and compares it with sig in
// constant time.
func verify(signingString string, sig []byte, key []byte) error {
	if err := signingMethod.Verify(signingString, sig, key); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}
