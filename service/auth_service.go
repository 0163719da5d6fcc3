package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/ports"
)

// DefaultNonceTTL bounds both the login challenge and the pairing session
const DefaultNonceTTL = 60 * time.Second

// MinPasswordLength is enforced on password reset
const MinPasswordLength = 8

// AuthDeps are the collaborators of AuthService
type AuthDeps struct {
	Signer    ports.Signer
	Store     ports.NonceStore
	Tokenizer ports.Tokenizer
	Users     ports.UserRepository
	Hasher    ports.PasswordHasher
	Events    ports.EventPublisher
	Mailer    ports.Mailer
	Logger    logging.Logger
}

// AuthService handles authentication business logic
type AuthService struct {
	signer    ports.Signer
	store     ports.NonceStore
	tokenizer ports.Tokenizer
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	events    ports.EventPublisher
	mailer    ports.Mailer
	log       logging.Logger

	nonceTTL time.Duration
}

// NewAuthService creates a new authentication service. A zero nonceTTL uses DefaultNonceTTL.
func NewAuthService(deps AuthDeps, nonceTTL time.Duration) *AuthService {
	if nonceTTL <= 0 {
		nonceTTL = DefaultNonceTTL
	}
	return &AuthService{
		signer:    deps.Signer,
		store:     deps.Store,
		tokenizer: deps.Tokenizer,
		users:     deps.Users,
		hasher:    deps.Hasher,
		events:    deps.Events,
		mailer:    deps.Mailer,
		log:       deps.Logger.With("component", "auth"),
		nonceTTL:  nonceTTL,
	}
}

func loginKey(address string) string {
	return "login:" + address
}

// GetNonce issues a login challenge for address
func (s *AuthService) GetNonce(ctx context.Context, address string) (string, error) {
	address, err := s.signer.NormalizeAddress(address)
	if err != nil {
		return "", core.ErrAddressInvalid
	}

	nonce, err := s.signer.GenerateNonce()
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, loginKey(address), nonce, s.nonceTTL); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	s.log.Debug(ctx, "login nonce issued", "address", address)
	return nonce, nil
}

// LoginWeb3 checks the signature over the outstanding nonce and returns a token pair.
// The nonce is left in place until it expires.
func (s *AuthService) LoginWeb3(ctx context.Context, signature, address string) (*core.TokenPair, error) {
	address, err := s.signer.NormalizeAddress(address)
	if err != nil {
		return nil, core.ErrAddressInvalid
	}

	nonce, err := s.store.Get(ctx, loginKey(address))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrNonceUnavailable
		}
		return nil, fmt.Errorf("failed to load nonce: %w", err)
	}

	ok, err := s.signer.Verify(nonce, signature, address)
	if err != nil {
		s.log.Warn(ctx, "malformed login attempt", "address", address, "error", err)
		return nil, core.ErrSignatureInvalid
	}
	if !ok {
		s.log.Warn(ctx, "signature mismatch", "address", address)
		return nil, core.ErrSignatureInvalid
	}

	user, err := s.findOrCreateByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "wallet login", "user_id", user.ID, "address", address)
	return s.GenerateTokens(user)
}

func (s *AuthService) findOrCreateByAddress(ctx context.Context, address string) (*core.User, error) {
	user, err := s.users.FindByAddress(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user, err = s.users.Save(ctx, core.NewWalletUser(address))
	if err != nil {
		// A concurrent first login for the same address won the insert
		if errors.Is(err, core.ErrAlreadyExists) {
			existing, findErr := s.users.FindByAddress(ctx, address)
			if findErr != nil {
				return nil, fmt.Errorf("failed to reload user: %w", findErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "address", address)
	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		// The account exists either way
		s.log.Warn(ctx, "failed to publish registration", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// GenerateTokens mints a fresh access/refresh pair for user
func (s *AuthService) GenerateTokens(user *core.User) (*core.TokenPair, error) {
	access, err := s.tokenizer.AccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refresh, err := s.tokenizer.RefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &core.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// UserFromToken resolves a bearer token to a user. An undecodable token or one that
// matches nobody yields (nil, nil).
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*core.User, error) {
	user, err := s.resolve(ctx, token)
	if errors.Is(err, core.ErrTokenExpired) || errors.Is(err, core.ErrTokenMalformed) {
		s.log.Debug(ctx, "bearer token rejected", "error", err)
		return nil, nil
	}
	return user, err
}

// RequireUserFromToken is UserFromToken for routes where authentication is mandatory.
// An expired token is reported apart so clients know to refresh.
func (s *AuthService) RequireUserFromToken(ctx context.Context, token string) (*core.User, error) {
	user, err := s.resolve(ctx, token)
	switch {
	case errors.Is(err, core.ErrTokenExpired):
		return nil, core.ErrAccessTokenExpired
	case errors.Is(err, core.ErrTokenMalformed):
		return nil, core.ErrUnauthenticated
	case err != nil:
		return nil, err
	case user == nil:
		return nil, core.ErrUnauthenticated
	}
	return user, nil
}

// resolve returns decode failures as core.ErrTokenExpired or core.ErrTokenMalformed
func (s *AuthService) resolve(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, core.ErrTokenMalformed
	}

	claims, err := s.tokenizer.DecodeAccessToken(token)
	if err != nil {
		return nil, err
	}

	lookups := []struct {
		value string
		find  func(context.Context, string) (*core.User, error)
	}{
		{claims.EmailOrPhone, s.users.FindByEmailOrPhone},
		{claims.Address, s.users.FindByAddress},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		user, err := l.find(ctx, l.value)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve token user: %w", err)
		}
	}
	return nil, nil
}

// UserFromRefreshToken loads the user a refresh token was minted for
func (s *AuthService) UserFromRefreshToken(ctx context.Context, token string) (*core.User, error) {
	claims, err := s.tokenizer.DecodeRefreshToken(token)
	if err != nil || claims.ID == "" {
		return nil, core.ErrRefreshTokenInvalid
	}

	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Refresh trades a refresh token for a new pair. The old refresh token stays valid
// until it expires.
func (s *AuthService) Refresh(ctx context.Context, token string) (*core.TokenPair, error) {
	user, err := s.UserFromRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.GenerateTokens(user)
}

// LoginPassword authenticates an email or phone account
func (s *AuthService) LoginPassword(ctx context.Context, emailOrPhone, password string) (*core.TokenPair, error) {
	user, err := s.users.FindByEmailOrPhone(ctx, emailOrPhone)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.log.Warn(ctx, "password mismatch", "user_id", user.ID)
		return nil, core.ErrInvalidCredentials
	}
	return s.GenerateTokens(user)
}

// ForgotPassword mints a single use reset token and hands it to the mailer
func (s *AuthService) ForgotPassword(ctx context.Context, emailOrPhone string) error {
	user, err := s.users.FindByEmailOrPhone(ctx, emailOrPhone)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, issuedAt, err := s.tokenizer.ResetToken(user)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	user.PasswordResetIssuedAt = &issuedAt
	if user, err = s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user, token); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword sets a new password. Only the most recently issued reset token is
// accepted, and only once.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return core.ErrPasswordPolicy
	}

	claims, err := s.tokenizer.DecodeResetToken(token)
	if err != nil || claims.ID == "" {
		return core.ErrResetTokenInvalid
	}

	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	issued := user.PasswordResetIssuedAt
	if issued == nil || issued.Unix() != claims.IssuedAt.Unix() {
		return core.ErrResetTokenInvalid
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	user.PasswordResetIssuedAt = nil
	if _, err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
