package core

import "errors"

// Kinds. Every *Error unwraps to exactly one of these.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrPairing        = errors.New("pairing failed")
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")

	ErrMalformedSignature = errors.New("malformed signature")
	ErrMalformedAddress   = errors.New("malformed address")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	ErrNonceUnavailable    = newError(ErrAuthentication, "Nonce is not available or expired")
	ErrSignatureInvalid    = newError(ErrAuthentication, "Signature is not valid")
	ErrRefreshTokenInvalid = newError(ErrAuthentication, "Refresh token is not valid")
	ErrUserNotFound        = newError(ErrAuthentication, "User does not exist")
	ErrUnauthenticated     = newError(ErrAuthentication, "Authentication is required")
	ErrAccessTokenExpired  = newError(ErrAuthentication, "Access token has expired")
	ErrAddressInvalid      = newError(ErrAuthentication, "Address is not valid")
	ErrInvalidCredentials  = newError(ErrAuthentication, "Invalid credentials")
	ErrResetTokenInvalid   = newError(ErrAuthentication, "Password reset token is not valid")
	ErrPasswordPolicy      = newError(ErrAuthentication, "Password must be at least 8 characters long")

	ErrPairingNonceUnavailable = newError(ErrPairing, "The given nonce is not available for log in")
	ErrIPMismatch              = newError(ErrPairing, "IP address mismatch")
	ErrPairingNonceTaken       = newError(ErrPairing, "The generated nonce is already in use")
	ErrPairingAlreadyConnected = newError(ErrPairing, "The given nonce is already connected")
)

// Error is a failure whose message is safe to show to the client
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so errors.Is(err, ErrAuthentication) works
func (e *Error) Unwrap() error { return e.kind }

// Kind returns ErrAuthentication or ErrPairing
func (e *Error) Kind() error { return e.kind }
