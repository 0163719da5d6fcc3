package main

import (
	"github.com/communa/backend/config"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "communa",
		Short:        "Authentication service of the Communa marketplace",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address and port to serve HTTP on")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, `redis url, or "`+memoryURL+`" for a single process store`)
	flags.StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN, "PostgreSQL DSN; empty keeps users in memory")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HMAC secret for tokens")
	flags.DurationVar(&cfg.AccessTokenTTL, "access-token-ttl", cfg.AccessTokenTTL, "access token lifetime")
	flags.DurationVar(&cfg.RefreshTokenTTL, "refresh-token-ttl", cfg.RefreshTokenTTL, "refresh token lifetime")
	flags.DurationVar(&cfg.ResetTokenTTL, "reset-token-ttl", cfg.ResetTokenTTL, "password reset token lifetime")
	flags.DurationVar(&cfg.NonceTTL, "nonce-ttl", cfg.NonceTTL, "login nonce and pairing session lifetime")
	flags.StringVar(&cfg.Chain, "chain", cfg.Chain, "wallet signature scheme (ethereum, ed25519)")
	flags.BoolVar(&cfg.EventsEnabled, "events", cfg.EventsEnabled, "publish domain events to redis streams")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringSliceVar(&cfg.TrustedProxies, "trusted-proxies", cfg.TrustedProxies, "IPs or CIDRs allowed to set X-Forwarded-For; empty trusts none")

	root.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg))
	return root
}
