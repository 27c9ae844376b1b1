// errors.go

package gourdiansession

import (
	"errors"
	"fmt"
)

// Token validation errors. The Gate never surfaces these to its callers;
// they are returned by SessionMaker.Verify for logging and tests.
var (
	ErrMalformedToken       = errors.New("malformed token")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm or type")
	ErrCredentialMismatch   = errors.New("token credential does not match store")
	ErrExpired              = errors.New("token has expired")
	ErrDecryptionFailed     = errors.New("credential decryption failed")
)

// Login and configuration errors.
var (
	ErrIncomplete         = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Login result codes.
const (
	CodeIncomplete = "incomplete"
	CodeInvalid    = "invalid"
)

// LoginError is returned by Issue when a login attempt is rejected.
// Code is one of CodeIncomplete or CodeInvalid.
type LoginError struct {
	Code string
	err  error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login %s: %v", e.Code, e.err)
}

func (e *LoginError) Unwrap() error {
	return e.err
}

func incompleteLogin() *LoginError {
	return &LoginError{Code: CodeIncomplete, err: ErrIncomplete}
}

func invalidLogin(cause error) *LoginError {
	if cause == nil {
		cause = ErrInvalidCredentials
	} else {
		cause = fmt.Errorf("%w: %w", ErrInvalidCredentials, cause)
	}
	return &LoginError{Code: CodeInvalid, err: cause}
}
