package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AudienceAccess  = "communa:access"
	AudienceRefresh = "communa:refresh"
	AudienceReset   = "communa:reset"
)

// Default lifetimes
const (
	DefaultAccessTTL  = 3 * time.Hour
	DefaultRefreshTTL = 24 * time.Hour
	DefaultResetTTL   = time.Hour
)

// Config holds the signing secret and token lifetimes
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// JWTTokenizer implements the Tokenizer interface with HS256 JWTs
type JWTTokenizer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer; zero lifetimes fall back to the defaults
func NewJWTTokenizer(cfg Config) *JWTTokenizer {
	t := &JWTTokenizer{
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
		now:        time.Now,
	}
	if t.accessTTL == 0 {
		t.accessTTL = DefaultAccessTTL
	}
	if t.refreshTTL == 0 {
		t.refreshTTL = DefaultRefreshTTL
	}
	if t.resetTTL == 0 {
		t.resetTTL = DefaultResetTTL
	}
	return t
}

// WithClock replaces the time source used for issuing and validating
func (j *JWTTokenizer) WithClock(now func() time.Time) *JWTTokenizer {
	j.now = now
	return j
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

func (j *JWTTokenizer) registered(audience string, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := j.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}, now
}

func (j *JWTTokenizer) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (j *JWTTokenizer) parse(tokenStr string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", core.ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", core.ErrTokenMalformed, err)
	}
	if !token.Valid {
		return core.ErrTokenMalformed
	}
	return nil
}

// AccessToken encodes {id, address, emailOrPhone}
func (j *JWTTokenizer) AccessToken(user *core.User) (string, error) {
	rc, _ := j.registered(AudienceAccess, j.accessTTL)
	rc.Subject = user.ID
	return j.sign(AccessClaims{
		RegisteredClaims: rc,
		ID:               user.ID,
		Address:          user.Address,
		EmailOrPhone:     user.EmailOrPhone(),
	})
}

// DecodeAccessToken verifies signature, audience and expiry
func (j *JWTTokenizer) DecodeAccessToken(tokenStr string) (*core.AccessClaims, error) {
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims, AudienceAccess); err != nil {
		return nil, err
	}
	return &core.AccessClaims{
		ID:           claims.ID,
		Address:      claims.Address,
		EmailOrPhone: claims.EmailOrPhone,
		IssuedAt:     numericTime(claims.IssuedAt),
		ExpiresAt:    numericTime(claims.ExpiresAt),
	}, nil
}

// RefreshToken encodes {id}
func (j *JWTTokenizer) RefreshToken(user *core.User) (string, error) {
	rc, _ := j.registered(AudienceRefresh, j.refreshTTL)
	rc.Subject = user.ID
	return j.sign(RefreshClaims{RegisteredClaims: rc, ID: user.ID})
}

// DecodeRefreshToken verifies signature, audience and expiry
func (j *JWTTokenizer) DecodeRefreshToken(tokenStr string) (*core.RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims, AudienceRefresh); err != nil {
		return nil, err
	}
	return &core.RefreshClaims{
		ID:        claims.ID,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

// ResetToken encodes {id} and returns its issued-at, truncated to seconds like the claim
func (j *JWTTokenizer) ResetToken(user *core.User) (string, time.Time, error) {
	rc, now := j.registered(AudienceReset, j.resetTTL)
	rc.Subject = user.ID
	token, err := j.sign(ResetClaims{RegisteredClaims: rc, ID: user.ID})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Truncate(jwt.TimePrecision), nil
}

// DecodeResetToken verifies signature, audience and expiry
func (j *JWTTokenizer) DecodeResetToken(tokenStr string) (*core.ResetClaims, error) {
	claims := &ResetClaims{}
	if err := j.parse(tokenStr, claims, AudienceReset); err != nil {
		return nil, err
	}
	return &core.ResetClaims{
		ID:        claims.ID,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
