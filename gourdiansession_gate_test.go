// gourdiansession_gate_test.go

package gourdiansession

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T, variant Variant, clock *testClock, opts ...Option) (*Gate, *MemoryTokenTransport) {
	t.Helper()

	config := DefaultGourdianSessionConfig(testSecret, newTestStore(t))
	config.Variant = variant
	gate, err := NewGourdianSessionGate(config, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return gate, NewMemoryTokenTransport(clock.Now)
}

func TestGateEndToEnd(t *testing.T) {
	ctx := context.Background()

	for _, variant := range variants {
		t.Run(string(variant), func(t *testing.T) {
			clock := newTestClock()
			gate, transport := newTestGate(t, variant, clock)

			assert.Equal(t, Authentication{}, gate.IsLoggedIn(ctx, transport))

			result, err := gate.Login(ctx, transport, testUsername, testPassword)
			require.NoError(t, err)
			require.Empty(t, result.Error)
			assert.Equal(t, 72000*time.Second, result.MaxAge)

			payload := decodeTestPayload(t, result.Token)
			assert.Equal(t, float64(clock.Now().Unix()+72000), payload["exp"])

			stored, ok, err := transport.ReadToken(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, result.Token, stored)

			want := Authentication{Authenticated: true, Username: testUsername}
			assert.Equal(t, want, gate.IsLoggedIn(ctx, transport))
			assert.Equal(t, want, gate.Validate(ctx, result.Token))

			clock.Advance(21 * time.Hour)
			assert.Equal(t, Authentication{}, gate.Validate(ctx, result.Token))
			assert.Equal(t, Authentication{}, gate.IsLoggedIn(ctx, transport))
		})
	}
}

func TestGateLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Incomplete", func(t *testing.T) {
		gate, transport := newTestGate(t, Fingerprint, newTestClock())
		result, err := gate.Login(ctx, transport, "", testPassword)
		require.NoError(t, err)
		assert.Equal(t, LoginResult{Error: CodeIncomplete}, result)

		_, ok, _ := transport.ReadToken(ctx)
		assert.False(t, ok)
	})

	t.Run("Invalid", func(t *testing.T) {
		gate, transport := newTestGate(t, Fingerprint, newTestClock())
		result, err := gate.Login(ctx, transport, testUsername, "wrong")
		require.NoError(t, err)
		assert.Equal(t, LoginResult{Error: CodeInvalid}, result)

		_, ok, _ := transport.ReadToken(ctx)
		assert.False(t, ok)
	})

	t.Run("Store Failure", func(t *testing.T) {
		clock := newTestClock()
		gate, err := NewGourdianSessionGate(DefaultGourdianSessionConfig(testSecret, failingStore{}), WithClock(clock.Now))
		require.NoError(t, err)

		_, err = gate.Login(ctx, NewMemoryTokenTransport(clock.Now), testUsername, testPassword)
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("Transport Failure", func(t *testing.T) {
		gate, _ := newTestGate(t, Fingerprint, newTestClock())
		_, err := gate.Login(ctx, failingTransport{}, testUsername, testPassword)
		assert.ErrorIs(t, err, errTransportDown)
	})
}

func TestGateLogout(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gate, transport := newTestGate(t, Fingerprint, clock)

	result, err := gate.Login(ctx, transport, testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, gate.IsLoggedIn(ctx, transport).Authenticated)

	require.NoError(t, gate.Logout(ctx, transport))
	assert.False(t, gate.IsLoggedIn(ctx, transport).Authenticated)

	// Logout is advisory: a copy of the token kept elsewhere still validates.
	assert.True(t, gate.Validate(ctx, result.Token).Authenticated)

	assert.ErrorIs(t, gate.Logout(ctx, failingTransport{}), errTransportDown)

	t.Run("Logs Each Logout", func(t *testing.T) {
		var logs bytes.Buffer
		logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Debug})
		gate, transport := newTestGate(t, Fingerprint, clock, WithLogger(logger))

		require.NoError(t, gate.Logout(ctx, transport))
		assert.Contains(t, logs.String(), "logout succeeded")

		require.Error(t, gate.Logout(ctx, failingTransport{}))
		assert.Contains(t, logs.String(), "failed to clear token")
	})
}

func TestGateCollapsesFailures(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()

	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Debug})
	gate, transport := newTestGate(t, Fingerprint, clock, WithLogger(logger))

	result, err := gate.Login(ctx, transport, testUsername, testPassword)
	require.NoError(t, err)

	rejected := []string{
		"",
		"garbage",
		result.Token + "x",
		forgeToken(t, testSecret, `{"alg":"none","typ":"JWT"}`, `{"user":"admin","auth":"x","exp":1}`),
		forgeToken(t, "another-secret", `{"alg":"HS256","typ":"JWT"}`, `{"user":"admin","auth":"x","exp":1}`),
	}
	for _, token := range rejected {
		assert.Equal(t, Authentication{}, gate.Validate(ctx, token))
	}

	assert.Equal(t, Authentication{}, gate.IsLoggedIn(ctx, failingTransport{}))

	assert.Contains(t, logs.String(), "token rejected")
	assert.NotContains(t, logs.String(), result.Token)
	assert.NotContains(t, logs.String(), testPassword)
}

func TestGateMetrics(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "test")
	require.NoError(t, err)
	gate, transport := newTestGate(t, Fingerprint, clock, WithMetrics(metrics))

	_, err = gate.Login(ctx, transport, "", "")
	require.NoError(t, err)
	_, err = gate.Login(ctx, transport, testUsername, "wrong")
	require.NoError(t, err)
	result, err := gate.Login(ctx, transport, testUsername, testPassword)
	require.NoError(t, err)

	gate.Validate(ctx, result.Token)
	gate.Validate(ctx, "a.b")
	clock.Advance(21 * time.Hour)
	gate.Validate(ctx, result.Token)
	gate.IsLoggedIn(ctx, NewMemoryTokenTransport(clock.Now))
	require.NoError(t, gate.Logout(ctx, transport))
	require.Error(t, gate.Logout(ctx, failingTransport{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.logins.WithLabelValues(OutcomeIncomplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.logins.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.logins.WithLabelValues(OutcomeIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validations.WithLabelValues(OutcomeAuthenticated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validations.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validations.WithLabelValues(OutcomeExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.validations.WithLabelValues(OutcomeMissing)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.logouts.WithLabelValues(OutcomeLoggedOut)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.logouts.WithLabelValues(OutcomeError)))

	t.Run("Duplicate Registration", func(t *testing.T) {
		_, err := NewMetrics(reg, "test")
		assert.Error(t, err)
	})

	t.Run("Nil Metrics Are A No-op", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.observeLogin(OutcomeIssued)
			m.observeValidation(OutcomeExpired)
			m.observeLogout(OutcomeLoggedOut)
		})
	})
}
