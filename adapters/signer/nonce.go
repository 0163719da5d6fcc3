package signer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NonceBytes is the entropy behind every nonce; the hex form is twice as long.
const NonceBytes = 32

func generateNonce() (string, error) {
	b := make([]byte, NonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
