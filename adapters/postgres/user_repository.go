package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, address, email, phone, password_hash, password_reset_issued_at, roles, created_at, updated_at`

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UserRepository stores accounts in the users table
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a new Postgres user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id string) (*core.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE address = $1`, address)
}

func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, value string) (*core.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1 LIMIT 1`, value)
}

// Save inserts new users and updates existing ones in a single transaction
func (r *UserRepository) Save(ctx context.Context, user *core.User) (*core.User, error) {
	now := r.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if len(user.Roles) == 0 {
		user.Roles = []core.Role{core.RoleUser}
	}

	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return nil, fmt.Errorf("encode roles: %w", err)
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
		if err := insertUser(ctx, r.db, user, roles); err != nil {
			user.ID = ""
			return nil, err
		}
		return user, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	// Rollback is a no-op once Commit succeeded
	defer func() { _ = tx.Rollback() }()

	if err := updateOrInsertUser(ctx, tx, user, roles); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// updateOrInsertUser writes a user whose ID was assigned by the caller; a row
// that does not exist yet is inserted under that ID
func updateOrInsertUser(ctx context.Context, tx *sql.Tx, user *core.User, roles []byte) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET address = $2, email = $3, phone = $4, password_hash = $5,
		 password_reset_issued_at = $6, roles = $7, updated_at = $8
		 WHERE id = $1`,
		user.ID, nullString(user.Address), nullString(user.Email), nullString(user.Phone),
		nullString(user.PasswordHash), nullTime(user.PasswordResetIssuedAt), roles, user.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}
	return insertUser(ctx, tx, user, roles)
}

func insertUser(ctx context.Context, db execer, user *core.User, roles []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, nullString(user.Address), nullString(user.Email), nullString(user.Phone),
		nullString(user.PasswordHash), nullTime(user.PasswordResetIssuedAt), roles,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*core.User, error) {
	var (
		user                          core.User
		address, email, phone, passwd sql.NullString
		resetAt                       sql.NullTime
		roles                         []byte
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &address, &email, &phone, &passwd, &resetAt, &roles, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Address = address.String
	user.Email = email.String
	user.Phone = phone.String
	user.PasswordHash = passwd.String
	if resetAt.Valid {
		t := resetAt.Time
		user.PasswordResetIssuedAt = &t
	}
	if err := json.Unmarshal(roles, &user.Roles); err != nil {
		return nil, fmt.Errorf("decode roles of user %s: %w", user.ID, err)
	}
	return &user, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", core.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
