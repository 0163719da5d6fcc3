package core

import "time"

// TokenPair is what a successful login or rotation hands back to the client
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessClaims are the identity claims carried by an access token
type AccessClaims struct {
	ID           string    // User id
	Address      string    // Wallet address, may be empty for email users
	EmailOrPhone string    // Email if set, otherwise phone
	IssuedAt     time.Time // When the token was minted
	ExpiresAt    time.Time // When the token stops being accepted
}

// RefreshClaims are the claims carried by a refresh token
type RefreshClaims struct {
	ID        string // User id
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ResetClaims are the claims carried by a password reset token.
// IssuedAt has second precision and is matched against the user record.
type ResetClaims struct {
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
