package users

import (
	"context"
	"sync"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory UserRepository, used when no database is configured
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]core.User
	now   func() time.Time
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]core.User),
		now:   time.Now,
	}
}

var _ ports.UserRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) FindByAddress(_ context.Context, address string) (*core.User, error) {
	return r.find(func(u core.User) bool { return address != "" && u.Address == address })
}

func (r *MemoryRepository) FindByEmailOrPhone(_ context.Context, value string) (*core.User, error) {
	return r.find(func(u core.User) bool {
		return value != "" && (u.Email == value || u.Phone == value)
	})
}

// Save enforces the same uniqueness rules as the users table
func (r *MemoryRepository) Save(_ context.Context, user *core.User) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.users {
		if id == user.ID {
			continue
		}
		if clash(user.Address, other.Address) || clash(user.Email, other.Email) || clash(user.Phone, other.Phone) {
			return nil, core.ErrAlreadyExists
		}
	}

	now := r.now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if len(user.Roles) == 0 {
		user.Roles = []core.Role{core.RoleUser}
	}

	r.users[user.ID] = *clone(*user)
	return user, nil
}

func (r *MemoryRepository) find(match func(core.User) bool) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, core.ErrNotFound
}

func clash(a, b string) bool {
	return a != "" && a == b
}

func clone(u core.User) *core.User {
	u.Roles = append([]core.Role(nil), u.Roles...)
	if u.PasswordResetIssuedAt != nil {
		t := *u.PasswordResetIssuedAt
		u.PasswordResetIssuedAt = &t
	}
	return &u
}
