// Package main provides the gourdiansession command-line tool for issuing
// and checking session tokens.
package main

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := newCommand(DefaultIO())

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		hclog.L().Error("application error", "error", err)
		os.Exit(1)
	}
}

func newCommand(io IOTuple) *cli.Command {
	storeFlags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "account",
			Aliases: []string{"a"},
			Usage:   "Account as user:password or user:<bcrypt hash> (repeatable, memory store)",
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis address of the credential store; overrides --account",
		},
		&cli.StringFlag{
			Name:  "redis-prefix",
			Value: "gourdiansession:",
			Usage: "Key prefix in Redis",
		},
		&cli.StringFlag{
			Name:  "variant",
			Usage: "Token variant: 'fingerprint' or 'encrypted' (default from environment)",
		},
	}

	return &cli.Command{
		Name:    "gourdiansession",
		Usage:   "Issue and verify stateless session tokens",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level (trace, debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "hash",
				Usage: "Print the bcrypt hash of a password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password to hash",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return RunHash(io, cmd.String("password"))
				},
			},
			{
				Name:  "add-user",
				Usage: "Store an account in the Redis credential store",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password",
					},
				}, storeFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return RunAddUser(ctx, io, storeOptionsFrom(cmd), cmd.String("user"), cmd.String("password"))
				},
			},
			{
				Name:  "issue",
				Usage: "Log in and print a signed token",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "Username",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password",
					},
				}, storeFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return RunIssue(ctx, io, newLogger(cmd), storeOptionsFrom(cmd), cmd.String("user"), cmd.String("password"))
				},
			},
			{
				Name:  "verify",
				Usage: "Check whether a token authenticates a user",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Token to verify",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print why a token was rejected",
					},
				}, storeFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return RunVerify(ctx, io, newLogger(cmd), storeOptionsFrom(cmd), cmd.String("token"), cmd.Bool("explain"))
				},
			},
		},
	}
}

func storeOptionsFrom(cmd *cli.Command) StoreOptions {
	return StoreOptions{
		Accounts:    cmd.StringSlice("account"),
		RedisAddr:   cmd.String("redis-addr"),
		RedisPrefix: cmd.String("redis-prefix"),
		Variant:     cmd.String("variant"),
	}
}

func newLogger(cmd *cli.Command) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "gourdiansession",
		Level:  hclog.LevelFromString(cmd.String("log-level")),
		Output: os.Stderr,
	})
}
