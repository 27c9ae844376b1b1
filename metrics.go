// metrics.go

package gourdiansession

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded by Metrics.
const (
	OutcomeAuthenticated        = "authenticated"
	OutcomeIssued               = "issued"
	OutcomeIncomplete           = CodeIncomplete
	OutcomeInvalid              = CodeInvalid
	OutcomeMissing              = "missing"
	OutcomeMalformed            = "malformed"
	OutcomeInvalidSignature     = "invalid_signature"
	OutcomeUnsupportedAlgorithm = "unsupported_algorithm"
	OutcomeCredentialMismatch   = "credential_mismatch"
	OutcomeExpired              = "expired"
	OutcomeDecryptionFailed     = "decryption_failed"
	OutcomeLoggedOut            = "logged_out"
	OutcomeError                = "error"
)

// Metrics counts login, logout and validation outcomes. Labels are for operators
// only; the Gate never reports them to clients.
type Metrics struct {
	logins      *prometheus.CounterVec
	logouts     *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Logouts by outcome.",
		}, []string{"outcome"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "validations_total",
			Help:      "Token validations by outcome.",
		}, []string{"outcome"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.logins, m.logouts, m.validations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register session metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeLogout(outcome string) {
	if m == nil {
		return
	}
	m.logouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeValidation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// validationOutcome maps a Verify error to its outcome label.
func validationOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAuthenticated
	case errors.Is(err, ErrMalformedToken):
		return OutcomeMalformed
	case errors.Is(err, ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return OutcomeUnsupportedAlgorithm
	case errors.Is(err, ErrDecryptionFailed):
		return OutcomeDecryptionFailed
	case errors.Is(err, ErrCredentialMismatch):
		return OutcomeCredentialMismatch
	case errors.Is(err, ErrExpired):
		return OutcomeExpired
	default:
		return OutcomeError
	}
}
