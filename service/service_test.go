package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/communa/backend/adapters/hasher"
	"github.com/communa/backend/adapters/signer"
	"github.com/communa/backend/adapters/store"
	"github.com/communa/backend/adapters/tokenizer"
	"github.com/communa/backend/adapters/users"
	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/logging"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingEvents struct {
	mu         sync.Mutex
	registered []*core.User
	resets     map[string]string
	err        error
}

func (r *recordingEvents) PublishUserRegistered(_ context.Context, user *core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, user)
	return r.err
}

func (r *recordingEvents) SendPasswordReset(_ context.Context, user *core.User, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resets == nil {
		r.resets = make(map[string]string)
	}
	r.resets[user.ID] = token
	return r.err
}

func (r *recordingEvents) registeredCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registered)
}

type harness struct {
	clock  *fakeClock
	users  *users.MemoryRepository
	events *recordingEvents
	hasher *hasher.BcryptHasher
	auth   *AuthService
	tt     *TimeTrackerService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	nonces := store.NewMemoryStoreWithClock(clock.now)
	tk := tokenizer.NewJWTTokenizer(tokenizer.Config{Secret: []byte("0123456789abcdef0123456789abcdef")}).WithClock(clock.now)
	repo := users.NewMemoryRepository()
	events := &recordingEvents{}
	h := hasher.NewBcryptHasher(bcrypt.MinCost)

	auth := NewAuthService(AuthDeps{
		Signer:    signer.NewEthereumSigner(),
		Store:     nonces,
		Tokenizer: tk,
		Users:     repo,
		Hasher:    h,
		Events:    events,
		Mailer:    events,
		Logger:    logging.Nop(),
	}, 0)

	tt := NewTimeTrackerService(signer.NewEthereumSigner(), nonces, auth, logging.Nop(), 0)
	tt.now = clock.now

	return &harness{clock: clock, users: repo, events: events, hasher: h, auth: auth, tt: tt}
}

type wallet struct {
	t       *testing.T
	key     []byte
	address string
}

func newWallet(t *testing.T) *wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &wallet{t: t, key: crypto.FromECDSA(key), address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func (w *wallet) sign(message string) string {
	w.t.Helper()
	key, err := crypto.ToECDSA(w.key)
	require.NoError(w.t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(w.t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

// failingStore fails every call with err
type failingStore struct{ err error }

func (f failingStore) Set(context.Context, string, string, time.Duration) error { return f.err }
func (f failingStore) Get(context.Context, string) (string, error)              { return "", f.err }

var errStoreDown = errors.New("store down")
