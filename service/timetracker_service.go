package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/ports"
)

// TimeTrackerService pairs a desktop time tracker with a logged in browser session.
// A session moves INIT -> LOGIN -> CONNECTED and is bound to the ip that created it.
type TimeTrackerService struct {
	signer ports.Signer
	store  ports.NonceStore
	tokens TokenIssuer
	log    logging.Logger

	ttl time.Duration
	now func() time.Time
}

// TokenIssuer mints the pair handed to a connected device
type TokenIssuer interface {
	GenerateTokens(user *core.User) (*core.TokenPair, error)
}

// NewTimeTrackerService creates the pairing service. A zero ttl uses DefaultNonceTTL.
func NewTimeTrackerService(signer ports.Signer, store ports.NonceStore, tokens TokenIssuer, logger logging.Logger, ttl time.Duration) *TimeTrackerService {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &TimeTrackerService{
		signer: signer,
		store:  store,
		tokens: tokens,
		log:    logger.With("component", "timetracker"),
		ttl:    ttl,
		now:    time.Now,
	}
}

func pairingKey(nonce string) string {
	return "timetracker:nonce:" + nonce
}

// Generate opens a new pairing session for the device at ip
func (s *TimeTrackerService) Generate(ctx context.Context, ip string) (*core.PairingSession, error) {
	nonce, err := s.signer.GenerateNonce()
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, pairingKey(nonce)); err == nil {
		return nil, core.ErrPairingNonceTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pairing nonce: %w", err)
	}

	session := &core.PairingSession{
		Nonce:   nonce,
		IP:      ip,
		StartAt: s.now().UTC(),
		State:   core.PairingInit{},
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "pairing started", "nonce", nonce, "ip", ip)
	return session, nil
}

// Login records that the device opened the browser login page
func (s *TimeTrackerService) Login(ctx context.Context, nonce, ip string) error {
	session, err := s.open(ctx, nonce, ip)
	if err != nil {
		return err
	}

	session.State = core.PairingLogin{}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.log.Info(ctx, "pairing login", "nonce", nonce)
	return nil
}

// Connect issues tokens for user and parks them on the session for the device to collect
func (s *TimeTrackerService) Connect(ctx context.Context, nonce string, user *core.User, ip string) error {
	if user == nil {
		return core.ErrUnauthenticated
	}

	session, err := s.open(ctx, nonce, ip)
	if err != nil {
		return err
	}

	tokens, err := s.tokens.GenerateTokens(user)
	if err != nil {
		return err
	}

	session.State = core.PairingConnected{Tokens: *tokens}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.log.Info(ctx, "pairing connected", "nonce", nonce, "user_id", user.ID)
	return nil
}

// Get returns the session for polling. It never changes state.
func (s *TimeTrackerService) Get(ctx context.Context, nonce, ip string) (*core.PairingSession, error) {
	return s.load(ctx, nonce, ip)
}

// open loads a session that may still transition
func (s *TimeTrackerService) open(ctx context.Context, nonce, ip string) (*core.PairingSession, error) {
	session, err := s.load(ctx, nonce, ip)
	if err != nil {
		return nil, err
	}
	if session.Connected() {
		return nil, core.ErrPairingAlreadyConnected
	}
	return session, nil
}

func (s *TimeTrackerService) load(ctx context.Context, nonce, ip string) (*core.PairingSession, error) {
	raw, err := s.store.Get(ctx, pairingKey(nonce))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrPairingNonceUnavailable
		}
		return nil, fmt.Errorf("failed to load pairing session: %w", err)
	}

	var session core.PairingSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("corrupt pairing session %s: %w", nonce, err)
	}

	if session.IP != ip {
		s.log.Warn(ctx, "pairing ip mismatch", "nonce", nonce, "ip", ip)
		return nil, core.ErrIPMismatch
	}
	return &session, nil
}

// save writes the session and restarts its expiry window
func (s *TimeTrackerService) save(ctx context.Context, session *core.PairingSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode pairing session: %w", err)
	}
	if err := s.store.Set(ctx, pairingKey(session.Nonce), string(raw), s.ttl); err != nil {
		return fmt.Errorf("failed to store pairing session: %w", err)
	}
	return nil
}
