// config.go

package gourdiansession

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Variant selects what the "auth" field of a token payload carries.
type Variant string

const (
	Fingerprint Variant = "fingerprint" // Fingerprint embeds an HMAC fingerprint of the stored credential
	Encrypted   Variant = "encrypted"   // Encrypted embeds the stored credential encrypted with AES-256-CBC
)

// DefaultExpirationHours is the token lifetime used when none is configured.
const DefaultExpirationHours = 20

// Environment variables read by LoadConfigFromEnv.
const (
	EnvSecret          = "GOURDIAN_SESSION_SECRET"
	EnvExpirationHours = "GOURDIAN_SESSION_EXPIRATION_HOURS"
	EnvVariant         = "GOURDIAN_SESSION_VARIANT"
)

// GourdianSessionConfig holds everything the session maker needs.
//
// The raw Secret is never used as a key directly: the HMAC key and the
// block cipher key are derived from it independently (see keys.go).
//
// # Example
//
//	config := GourdianSessionConfig{
//	    Secret:          "hunter2",
//	    ExpirationHours: 20,
//	    Store:           store,
//	    Variant:         Fingerprint,
//	}
type GourdianSessionConfig struct {
	Secret          string          // Server secret, required
	ExpirationHours int             // Token lifetime in hours, must be positive
	Store           CredentialStore // Account lookup collaborator, required
	Variant         Variant         // Fingerprint (default) or Encrypted
}

// DefaultGourdianSessionConfig returns a fingerprint-variant configuration
// with the default 20 hour lifetime.
func DefaultGourdianSessionConfig(secret string, store CredentialStore) GourdianSessionConfig {
	return GourdianSessionConfig{
		Secret:          secret,
		ExpirationHours: DefaultExpirationHours,
		Store:           store,
		Variant:         Fingerprint,
	}
}

// LoadConfigFromEnv builds a configuration from the process environment.
// A .env file found in the working directory or one of its parents is
// loaded first; variables already set in the environment take precedence.
func LoadConfigFromEnv(store CredentialStore) (GourdianSessionConfig, error) {
	loadDotEnv()

	config := GourdianSessionConfig{
		Secret:          env.GetString(EnvSecret, ""),
		ExpirationHours: env.GetInt(EnvExpirationHours, DefaultExpirationHours),
		Store:           store,
		Variant:         Variant(env.GetString(EnvVariant, string(Fingerprint))),
	}

	if err := validateConfig(&config); err != nil {
		return GourdianSessionConfig{}, err
	}
	return config, nil
}

// validateConfig validates the configuration.
func validateConfig(config *GourdianSessionConfig) error {
	if config.Secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfig)
	}
	if config.ExpirationHours <= 0 {
		return fmt.Errorf("%w: expiration hours must be positive, got %d", ErrInvalidConfig, config.ExpirationHours)
	}
	if config.Store == nil {
		return fmt.Errorf("%w: credential store is required", ErrInvalidConfig)
	}

	switch config.Variant {
	case Fingerprint, Encrypted:
	case "":
		config.Variant = Fingerprint
	default:
		return fmt.Errorf("%w: unsupported variant: %s", ErrInvalidConfig, config.Variant)
	}

	return nil
}

// loadDotEnv walks up from the working directory and loads the first .env
// file it finds.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
