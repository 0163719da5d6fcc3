// Package config handles runtime configuration: defaults, then environment,
// then command-line flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSecretLength is the shortest accepted HS256 secret
const MinSecretLength = 32

// Config holds runtime settings for the auth service.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - RedisURL: nonce store and event stream backend.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps users in memory.
//   - JWTSecret: HMAC secret shared by all instances.
//   - Chain: signature scheme for wallet login, "ethereum" or "ed25519".
//   - TrustedProxies: IPs or CIDRs whose X-Forwarded-For is believed. Empty
//     means the client IP is always the socket peer.
type Config struct {
	HTTPAddr        string
	RedisURL        string
	DatabaseDSN     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	NonceTTL        time.Duration
	Chain           string
	EventsEnabled   bool
	LogLevel        string
	ShutdownTimeout time.Duration
	TrustedProxies  []string
}

// LoadDefaults populates Config with development defaults.
// JWTSecret has no default.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":9000"
	c.RedisURL = "redis://localhost:6379/0"
	c.DatabaseDSN = ""
	c.JWTSecret = ""
	c.AccessTokenTTL = 3 * time.Hour
	c.RefreshTokenTTL = 24 * time.Hour
	c.ResetTokenTTL = time.Hour
	c.NonceTTL = 60 * time.Second
	c.Chain = "ethereum"
	c.EventsEnabled = true
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
	c.TrustedProxies = nil
}

// LoadEnv overlays values from the environment
func (c *Config) LoadEnv() error {
	return c.loadEnv(os.LookupEnv)
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"COMMUNA_HTTP_ADDR":    &c.HTTPAddr,
		"REDIS_URL":            &c.RedisURL,
		"COMMUNA_REDIS_URL":    &c.RedisURL,
		"COMMUNA_DATABASE_DSN": &c.DatabaseDSN,
		"COMMUNA_JWT_SECRET":   &c.JWTSecret,
		"COMMUNA_CHAIN":        &c.Chain,
		"COMMUNA_LOG_LEVEL":    &c.LogLevel,
	}
	// COMMUNA_REDIS_URL wins over REDIS_URL
	for _, name := range []string{
		"COMMUNA_HTTP_ADDR", "REDIS_URL", "COMMUNA_REDIS_URL", "COMMUNA_DATABASE_DSN",
		"COMMUNA_JWT_SECRET", "COMMUNA_CHAIN", "COMMUNA_LOG_LEVEL",
	} {
		if v, ok := lookup(name); ok {
			*strs[name] = v
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"COMMUNA_ACCESS_TOKEN_TTL", &c.AccessTokenTTL},
		{"COMMUNA_REFRESH_TOKEN_TTL", &c.RefreshTokenTTL},
		{"COMMUNA_RESET_TOKEN_TTL", &c.ResetTokenTTL},
		{"COMMUNA_NONCE_TTL", &c.NonceTTL},
		{"COMMUNA_SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("COMMUNA_EVENTS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COMMUNA_EVENTS_ENABLED: %w", err)
		}
		c.EventsEnabled = enabled
	}

	if v, ok := lookup("COMMUNA_TRUSTED_PROXIES"); ok {
		c.TrustedProxies = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports settings the service cannot start with
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if c.RedisURL == "" {
		errs = append(errs, errors.New("redis url is required"))
	}
	for name, d := range map[string]time.Duration{
		"access token ttl":  c.AccessTokenTTL,
		"refresh token ttl": c.RefreshTokenTTL,
		"reset token ttl":   c.ResetTokenTTL,
		"nonce ttl":         c.NonceTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			errs = append(errs, fmt.Errorf("trusted proxy %q is not an IP or CIDR", proxy))
		}
	}
	return errors.Join(errs...)
}
