// maker.go

package gourdiansession

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// GourdianSessionMaker issues and verifies session tokens.
//
// Methods:
//   - Issue: Checks credentials against the store and returns a signed token
//   - Verify: Runs the full validation pipeline and returns the payload
type GourdianSessionMaker interface {
	Issue(ctx context.Context, username, password string) (*IssueResponse, error)
	Verify(ctx context.Context, token string) (*Payload, error)
}

// IssueResponse contains the issued token and its metadata.
//
// Fields:
//   - Token: Signed token
//   - Username: Username the token was issued to
//   - IssuedAt: Issuance time
//   - ExpiresAt: Expiration time, truncated to seconds
//   - MaxAge: Intended lifetime for the transport (ExpirationHours * 3600s)
type IssueResponse struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	MaxAge    time.Duration
}

// SessionMaker implements GourdianSessionMaker. It is immutable after
// construction and safe for concurrent use.
type SessionMaker struct {
	config GourdianSessionConfig
	keys   sessionKeys
	cipher *payloadCipher
	now    func() time.Time
}

// NewGourdianSessionMaker validates config, derives the signing and cipher
// keys and returns a ready maker. A missing secret or store is reported here
// rather than on each request.
func NewGourdianSessionMaker(config GourdianSessionConfig, opts ...Option) (GourdianSessionMaker, error) {
	return newSessionMaker(config, applyOptions(opts))
}

func newSessionMaker(config GourdianSessionConfig, o options) (*SessionMaker, error) {
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	keys := deriveKeys(config.Secret)
	c, err := newPayloadCipher(keys.cipher)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payload cipher: %w", err)
	}

	return &SessionMaker{
		config: config,
		keys:   keys,
		cipher: c,
		now:    o.now,
	}, nil
}

// Issue checks username and password against the credential store and
// returns a signed token. Rejected logins return a *LoginError.
func (maker *SessionMaker) Issue(ctx context.Context, username, password string) (*IssueResponse, error) {
	if username == "" || password == "" {
		return nil, incompleteLogin()
	}

	stored, err := maker.storedCredential(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return nil, invalidLogin(err)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		return nil, invalidLogin(nil)
	}

	auth, err := maker.artifact(username, stored)
	if err != nil {
		return nil, err
	}

	now := maker.now()
	maxAge := time.Duration(maker.config.ExpirationHours) * time.Hour
	expiresAt := now.Add(maxAge).Truncate(time.Second)

	token, err := encodeToken(defaultHeader, Payload{
		User:      username,
		Auth:      auth,
		ExpiresAt: expiresAt.Unix(),
	}, maker.keys.hmac)
	if err != nil {
		return nil, err
	}

	return &IssueResponse{
		Token:     token,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		MaxAge:    maxAge,
	}, nil
}

// Verify validates token and returns its payload.
//
// The signature is checked over the raw header and payload segments before
// either is decoded. Then the header must be HS256/JWT, the payload must be
// well formed, the embedded credential must match the store and exp must be
// in the future. Each failure wraps one of ErrMalformedToken,
// ErrInvalidSignature, ErrUnsupportedAlgorithm, ErrDecryptionFailed,
// ErrCredentialMismatch or ErrExpired.
func (maker *SessionMaker) Verify(ctx context.Context, token string) (*Payload, error) {
	raw, err := splitToken(token)
	if err != nil {
		return nil, err
	}

	if err := verify(raw.signingString, raw.signature, maker.keys.hmac); err != nil {
		return nil, err
	}

	if _, err := decodeHeader(raw.header); err != nil {
		return nil, err
	}

	payload, err := decodePayload(raw.payload)
	if err != nil {
		return nil, err
	}

	if err := maker.checkCredential(ctx, payload); err != nil {
		return nil, err
	}

	if payload.ExpiresAt <= maker.now().Unix() {
		return nil, fmt.Errorf("%w: expired at %s", ErrExpired, time.Unix(payload.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}

	return payload, nil
}

// storedCredential returns the store's password hash for a known user.
func (maker *SessionMaker) storedCredential(ctx context.Context, username string) (string, error) {
	ok, err := maker.config.Store.ValidateUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("credential store lookup failed: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	stored, err := maker.config.Store.PasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return "", err
		}
		return "", fmt.Errorf("credential store lookup failed: %w", err)
	}
	return stored, nil
}

// artifact builds the payload "auth" value for the configured variant.
func (maker *SessionMaker) artifact(username, stored string) (string, error) {
	switch maker.config.Variant {
	case Encrypted:
		blob, err := maker.cipher.encrypt(stored)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt credential: %w", err)
		}
		return blob, nil
	default:
		return CredentialFingerprint(maker.keys.hmac, username, stored), nil
	}
}

// checkCredential re-validates the payload artifact against the store.
func (maker *SessionMaker) checkCredential(ctx context.Context, payload *Payload) error {
	var decrypted string
	if maker.config.Variant == Encrypted {
		var err error
		if decrypted, err = maker.cipher.decrypt(payload.Auth); err != nil {
			return err
		}
	}

	stored, err := maker.storedCredential(ctx, payload.User)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return fmt.Errorf("%w: %w", ErrCredentialMismatch, err)
		}
		return err
	}

	switch maker.config.Variant {
	case Encrypted:
		if decrypted == "" || subtle.ConstantTimeCompare([]byte(decrypted), []byte(stored)) != 1 {
			return fmt.Errorf("%w: decrypted credential for %s", ErrCredentialMismatch, payload.User)
		}
	default:
		if !FingerprintEqual(CredentialFingerprint(maker.keys.hmac, payload.User, stored), payload.Auth) {
			return fmt.Errorf("%w: fingerprint for %s", ErrCredentialMismatch, payload.User)
		}
	}
	return nil
}
