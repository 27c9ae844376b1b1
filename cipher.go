// cipher.go

package gourdiansession

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// payloadCipher encrypts credential artifacts with AES-256-CBC under a key
// derived by deriveCipherKey. Output is base64url(IV || ciphertext) without
// padding; the IV is one AES block of fresh random bytes.
type payloadCipher struct {
	block cipher.Block
	rand  io.Reader
}

// newPayloadCipher creates a cipher for a 32-byte key.
func newPayloadCipher(key []byte) (*payloadCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("AES-256 key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &payloadCipher{block: block, rand: rand.Reader}, nil
}

// Encrypt encrypts plaintext with a key derived from secret using SHA-256.
// The plaintext must be printable ASCII, which stored bcrypt hashes are.
func Encrypt(plaintext, secret string) (string, error) {
	c, err := newPayloadCipher(deriveCipherKey(secret))
	if err != nil {
		return "", err
	}
	return c.encrypt(plaintext)
}

// Decrypt reverses Encrypt. A wrong secret, truncated input, bad padding or
// a result that is not printable ASCII returns ErrDecryptionFailed.
func Decrypt(blob, secret string) (string, error) {
	c, err := newPayloadCipher(deriveCipherKey(secret))
	if err != nil {
		return "", err
	}
	return c.decrypt(blob)
}

func (c *payloadCipher) encrypt(plaintext string) (string, error) {
	if !isPrintableASCII([]byte(plaintext)) {
		return "", fmt.Errorf("plaintext must be printable ASCII")
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (c *payloadCipher) decrypt(blob string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	// At least the IV and one block of ciphertext.
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext length %d", ErrDecryptionFailed, len(data))
	}

	iv, ciphertext := data[:aes.BlockSize], data[aes.BlockSize:]
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, ciphertext)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	// CBC carries no MAC. A wrong key yields valid padding about once in
	// 256 tries, but almost never an all-printable result.
	if !isPrintableASCII(unpadded) {
		return "", fmt.Errorf("%w: plaintext is not printable ASCII", ErrDecryptionFailed)
	}
	return string(unpadded), nil
}

func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
