// docs.go

// Package gourdiansession provides stateless, signed session tokens for
// username/password logins.
//
// A token is a three segment string in JWT compact form, signed with
// HMAC-SHA256 under a key derived from a single server secret. The server
// keeps no session state: every check re-derives what it needs from the
// token, the secret and the credential store.
//
// # Overview
//
// The package provides:
// - A Session Gate with Login, IsLoggedIn, Validate and Logout operations
// - A SessionMaker that issues and verifies tokens
// - Two token variants selected by configuration
// - In-memory and Redis implementations of the CredentialStore and
//   TokenTransport collaborators
// - Prometheus counters for login, logout and validation outcomes
//
// ## Token Variants
// - Fingerprint: the "auth" field carries an HMAC fingerprint of the
//   username and the stored bcrypt hash
// - Encrypted: the "auth" field carries the stored bcrypt hash encrypted
//   with AES-256-CBC under a key derived from the secret
//
// In both variants a password change invalidates every outstanding token
// for the account, and removing the account does the same.
//
// ## Key Derivation
// The raw secret is never used as a key:
// - HMAC key: standard base64 of the secret with padding removed
// - Cipher key: SHA-256 of the secret
//
// # Usage Example
//
//	store := gourdiansession.NewMemoryCredentialStore(0)
//	if err := store.AddUser("admin", "pass"); err != nil {
//	    log.Fatal(err)
//	}
//
//	gate, err := gourdiansession.NewGourdianSessionGate(
//	    gourdiansession.DefaultGourdianSessionConfig("hunter2", store),
//	    gourdiansession.WithLogger(hclog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	transport := gourdiansession.NewMemoryTokenTransport(nil)
//	result, err := gate.Login(ctx, transport, "admin", "pass")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Error != "" {
//	    log.Printf("login rejected: %s", result.Error)
//	}
//
//	auth := gate.IsLoggedIn(ctx, transport)
//	fmt.Println(auth.Authenticated, auth.Username)
//
// # Validation
//
// A token is accepted only when all of the following hold, checked in
// this order:
// - It splits into three non-empty segments
// - The signature matches the first two segments byte for byte
// - The header is exactly {"alg":"HS256","typ":"JWT"}
// - The payload holds user, auth and exp and nothing else
// - The auth field matches the account's current stored credential
// - The exp field is strictly in the future
//
// The Gate reports every failure the same way, as an unauthenticated
// result. The reason is logged at debug level and counted in the
// validations_total metric.
//
// # Security Considerations
//
// - Logout only clears the client copy; a copied token stays valid until
//   it expires, the password changes or the account is removed
// - Tokens are signed, not encrypted, apart from the auth field of the
//   Encrypted variant
// - Rotating the secret invalidates every token
//
// # Dependencies
//
// - github.com/golang-jwt/jwt/v5 - HS256 signing and segment decoding
// - golang.org/x/crypto/bcrypt - Password hashing
// - github.com/redis/go-redis/v9 - Redis store and transport
// - github.com/hashicorp/go-hclog - Logging
// - github.com/prometheus/client_golang - Metrics
package gourdiansession
