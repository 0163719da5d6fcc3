package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the user identity
type AccessClaims struct {
	jwt.RegisteredClaims
	ID           string `json:"id"`
	Address      string `json:"address"`
	EmailOrPhone string `json:"emailOrPhone"`
}

// RefreshClaims only identify the user
type RefreshClaims struct {
	jwt.RegisteredClaims
	ID string `json:"id"`
}

// ResetClaims identify the user whose password may be reset
type ResetClaims struct {
	jwt.RegisteredClaims
	ID string `json:"id"`
}
