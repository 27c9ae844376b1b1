package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/gourdian25/gourdiansession"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// StoreOptions selects the credential store used by a command.
type StoreOptions struct {
	Accounts    []string
	RedisAddr   string
	RedisPrefix string
	Variant     string
}

// RunHash prints the bcrypt hash of password, for use with --account.
func RunHash(io IOTuple, password string) error {
	hash, err := gourdiansession.HashPassword(password, 0)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(io.Writer, hash)
	return err
}

// RunAddUser stores an account in Redis.
func RunAddUser(ctx context.Context, io IOTuple, opts StoreOptions, username, password string) error {
	if opts.RedisAddr == "" {
		return fmt.Errorf("--redis-addr is required")
	}

	store, closeStore, err := openRedisStore(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.AddUser(ctx, username, password); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	_, err = fmt.Fprintf(io.Writer, "user %s stored\n", username)
	return err
}

// RunIssue logs username in and prints the token with its expiry.
func RunIssue(ctx context.Context, io IOTuple, logger hclog.Logger, opts StoreOptions, username, password string) error {
	maker, closeStore, err := openMaker(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	resp, err := maker.Issue(ctx, username, password)
	if err != nil {
		var loginErr *gourdiansession.LoginError
		if errors.As(err, &loginErr) {
			logger.Debug("login rejected", "username", username, "code", loginErr.Code)
			return fmt.Errorf("login failed: %s", loginErr.Code)
		}
		return err
	}

	logger.Info("token issued", "username", resp.Username, "expires_at", resp.ExpiresAt)
	_, err = fmt.Fprintln(io.Writer, resp.Token)
	return err
}

// RunVerify prints whether token authenticates a user. With explain set,
// the rejection reason is printed as well.
func RunVerify(ctx context.Context, io IOTuple, logger hclog.Logger, opts StoreOptions, token string, explain bool) error {
	maker, closeStore, err := openMaker(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	payload, err := maker.Verify(ctx, token)
	if err != nil {
		logger.Debug("token rejected", "error", err)
		if explain {
			_, err = fmt.Fprintf(io.Writer, "not authenticated: %v\n", err)
			return err
		}
		_, err = fmt.Fprintln(io.Writer, "not authenticated")
		return err
	}

	_, err = fmt.Fprintf(io.Writer, "authenticated as %s\n", payload.User)
	return err
}

func openMaker(opts StoreOptions) (gourdiansession.GourdianSessionMaker, func(), error) {
	var (
		store     gourdiansession.CredentialStore
		closeFunc = func() {}
	)

	if opts.RedisAddr != "" {
		redisStore, closeRedis, err := openRedisStore(opts)
		if err != nil {
			return nil, nil, err
		}
		store, closeFunc = redisStore, closeRedis
	} else {
		memoryStore, err := memoryStoreFromAccounts(opts.Accounts)
		if err != nil {
			return nil, nil, err
		}
		store = memoryStore
	}

	config, err := gourdiansession.LoadConfigFromEnv(store)
	if err != nil {
		closeFunc()
		return nil, nil, err
	}
	if opts.Variant != "" {
		config.Variant = gourdiansession.Variant(opts.Variant)
	}

	maker, err := gourdiansession.NewGourdianSessionMaker(config)
	if err != nil {
		closeFunc()
		return nil, nil, err
	}
	return maker, closeFunc, nil
}

func openRedisStore(opts StoreOptions) (*gourdiansession.RedisCredentialStore, func(), error) {
	client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
	store, err := gourdiansession.NewRedisCredentialStore(client, opts.RedisPrefix, 0)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

// memoryStoreFromAccounts parses user:secret pairs. A secret that is
// already a bcrypt hash is stored as is so tokens survive across runs.
func memoryStoreFromAccounts(accounts []string) (*gourdiansession.MemoryCredentialStore, error) {
	store := gourdiansession.NewMemoryCredentialStore(0)
	for _, account := range accounts {
		username, secret, ok := strings.Cut(account, ":")
		if !ok || username == "" || secret == "" {
			return nil, fmt.Errorf("invalid account %q, expected user:password", account)
		}

		if strings.HasPrefix(secret, "$2") {
			if err := store.SetPasswordHash(username, secret); err != nil {
				return nil, fmt.Errorf("account %s: %w", username, err)
			}
			continue
		}
		if err := store.AddUser(username, secret); err != nil {
			return nil, fmt.Errorf("account %s: %w", username, err)
		}
	}
	return store, nil
}
