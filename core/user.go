package core

import "time"

// Role grants access to parts of the marketplace
type Role string

const (
	// RoleUser is given to every account on creation
	RoleUser Role = "ROLE_USER"
	// RoleAdmin is assigned out of band
	RoleAdmin Role = "ROLE_ADMIN"
)

// User is a marketplace account. Address, Email and Phone are each unique when set;
// an empty string means the identity is absent.
type User struct {
	ID                    string     `json:"id"`
	Address               string     `json:"address,omitempty"`
	Email                 string     `json:"email,omitempty"`
	Phone                 string     `json:"phone,omitempty"`
	PasswordHash          string     `json:"-"`
	PasswordResetIssuedAt *time.Time `json:"-"`
	Roles                 []Role     `json:"roles"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// NewWalletUser builds the account created on first wallet login
func NewWalletUser(address string) *User {
	return &User{
		Address: address,
		Roles:   []Role{RoleUser},
	}
}

// EmailOrPhone returns the email when present, the phone otherwise
func (u *User) EmailOrPhone() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}

// HasRole reports whether the user holds role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
