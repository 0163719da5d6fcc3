package ports

import (
	"time"

	"github.com/communa/backend/core"
)

// Tokenizer converts between users and signed bearer tokens.
// Decode failures are core.ErrTokenExpired or core.ErrTokenMalformed.
type Tokenizer interface {
	AccessToken(user *core.User) (string, error)
	DecodeAccessToken(token string) (*core.AccessClaims, error)

	RefreshToken(user *core.User) (string, error)
	DecodeRefreshToken(token string) (*core.RefreshClaims, error)

	// ResetToken also returns the issued-at instant embedded in the token
	ResetToken(user *core.User) (string, time.Time, error)
	DecodeResetToken(token string) (*core.ResetClaims, error)
}
