// gourdiansession.go

package gourdiansession

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
)

// CredentialStore is the account lookup collaborator.
//
// Methods:
//   - ValidateUser: Reports whether username is a known account
//   - PasswordHash: Returns the stored bcrypt hash of the account password,
//     or an error wrapping ErrUnknownUser
type CredentialStore interface {
	ValidateUser(ctx context.Context, username string) (bool, error)
	PasswordHash(ctx context.Context, username string) (string, error)
}

// TokenTransport carries a token between requests. It is implemented by the
// hosting application (cookie, header, keychain...) and only ever touched by
// the Gate.
//
// Methods:
//   - ReadToken: Returns the stored token and whether one is present
//   - WriteToken: Stores token for at most maxAge
//   - ClearToken: Discards the stored token
type TokenTransport interface {
	ReadToken(ctx context.Context) (string, bool, error)
	WriteToken(ctx context.Context, token string, maxAge time.Duration) error
	ClearToken(ctx context.Context) error
}

// Option customizes a SessionMaker or Gate.
type Option func(*options)

type options struct {
	now     func() time.Time
	logger  hclog.Logger
	metrics *Metrics
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		logger: hclog.NewNullLogger(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used by the Gate.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables Prometheus counters for the Gate.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}
