package ports

import (
	"context"

	"github.com/communa/backend/core"
)

// UserRepository persists accounts. Lookups return core.ErrNotFound when nothing matches.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*core.User, error)
	FindByAddress(ctx context.Context, address string) (*core.User, error)
	FindByEmailOrPhone(ctx context.Context, value string) (*core.User, error)

	// Save inserts the user, assigning an id when empty, or updates it.
	// A clash on a unique identity returns core.ErrAlreadyExists.
	Save(ctx context.Context, user *core.User) (*core.User, error)
}

// PasswordHasher hashes and checks account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
