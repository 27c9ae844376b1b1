// gate.go

package gourdiansession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Authentication is the only validation result the Gate exposes. Failed
// validations carry no reason.
type Authentication struct {
	Authenticated bool
	Username      string
}

// LoginResult is the outcome of Gate.Login: either Token is set or Error is
// one of CodeIncomplete and CodeInvalid.
type LoginResult struct {
	Token  string
	MaxAge time.Duration
	Error  string
}

// Gate orchestrates login, logout and access checks over a TokenTransport.
//
// The Gate holds no session state. Logout only discards the transport copy
// of the token; a copy held elsewhere stays valid until its exp.
type Gate struct {
	maker   GourdianSessionMaker
	logger  hclog.Logger
	metrics *Metrics
}

// NewGate wraps an existing maker.
func NewGate(maker GourdianSessionMaker, opts ...Option) *Gate {
	o := applyOptions(opts)
	return &Gate{
		maker:   maker,
		logger:  o.logger.Named("session"),
		metrics: o.metrics,
	}
}

// NewGourdianSessionGate builds a maker from config and wraps it in a Gate.
func NewGourdianSessionGate(config GourdianSessionConfig, opts ...Option) (*Gate, error) {
	maker, err := NewGourdianSessionMaker(config, opts...)
	if err != nil {
		return nil, err
	}
	return NewGate(maker, opts...), nil
}

// Validate reports whether token authenticates a user.
func (g *Gate) Validate(ctx context.Context, token string) Authentication {
	payload, err := g.maker.Verify(ctx, token)
	outcome := validationOutcome(err)
	g.metrics.observeValidation(outcome)

	if err != nil {
		g.logger.Debug("token rejected", "outcome", outcome, "error", err)
		return Authentication{}
	}
	return Authentication{Authenticated: true, Username: payload.User}
}

// Login checks the credentials and, on success, writes the new token to the
// transport with its max-age. Store or transport failures are returned as
// errors; rejected credentials are reported through LoginResult.Error.
func (g *Gate) Login(ctx context.Context, transport TokenTransport, username, password string) (LoginResult, error) {
	resp, err := g.maker.Issue(ctx, username, password)
	if err != nil {
		var loginErr *LoginError
		if errors.As(err, &loginErr) {
			g.metrics.observeLogin(loginErr.Code)
			g.logger.Debug("login rejected", "username", username, "code", loginErr.Code)
			return LoginResult{Error: loginErr.Code}, nil
		}
		g.metrics.observeLogin(OutcomeError)
		g.logger.Error("login failed", "username", username, "error", err)
		return LoginResult{}, err
	}

	if err := transport.WriteToken(ctx, resp.Token, resp.MaxAge); err != nil {
		g.metrics.observeLogin(OutcomeError)
		g.logger.Error("failed to store token", "username", username, "error", err)
		return LoginResult{}, fmt.Errorf("failed to store token: %w", err)
	}

	g.metrics.observeLogin(OutcomeIssued)
	g.logger.Debug("login succeeded", "username", username, "expires_at", resp.ExpiresAt)
	return LoginResult{Token: resp.Token, MaxAge: resp.MaxAge}, nil
}

// IsLoggedIn validates the token held by the transport. A missing token or
// a transport error is not authenticated.
func (g *Gate) IsLoggedIn(ctx context.Context, transport TokenTransport) Authentication {
	token, ok, err := transport.ReadToken(ctx)
	if err != nil {
		g.metrics.observeValidation(OutcomeError)
		g.logger.Warn("failed to read token", "error", err)
		return Authentication{}
	}
	if !ok || token == "" {
		g.metrics.observeValidation(OutcomeMissing)
		return Authentication{}
	}
	return g.Validate(ctx, token)
}

// Logout asks the transport to discard its token.
func (g *Gate) Logout(ctx context.Context, transport TokenTransport) error {
	if err := transport.ClearToken(ctx); err != nil {
		g.metrics.observeLogout(OutcomeError)
		g.logger.Error("failed to clear token", "error", err)
		return fmt.Errorf("failed to clear token: %w", err)
	}

	g.metrics.observeLogout(OutcomeLoggedOut)
	g.logger.Debug("logout succeeded")
	return nil
}
