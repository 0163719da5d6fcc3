package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/communa/backend/core"
	"github.com/communa/backend/ports"
)

// Ed25519Signer verifies wallets whose address is the hex encoded public key
type Ed25519Signer struct{}

// NewEd25519Signer creates a signer for ed25519 keyed wallets
func NewEd25519Signer() ports.Signer {
	return Ed25519Signer{}
}

// GenerateNonce returns a fresh hex nonce
func (Ed25519Signer) GenerateNonce() (string, error) {
	return generateNonce()
}

// NormalizeAddress returns the public key as lowercase hex without a 0x prefix
func (Ed25519Signer) NormalizeAddress(address string) (string, error) {
	pub, err := decodePublicKey(address)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pub), nil
}

func decodePublicKey(address string) (ed25519.PublicKey, error) {
	pub, err := hex.DecodeString(strings.TrimPrefix(address, "0x"))
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: want %d byte hex public key", core.ErrMalformedAddress, ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(pub), nil
}

// Verify checks an ed25519 signature of nonce under the key encoded in address
func (Ed25519Signer) Verify(nonce, signature, address string) (bool, error) {
	pub, err := decodePublicKey(address)
	if err != nil {
		return false, err
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: want %d byte hex signature", core.ErrMalformedSignature, ed25519.SignatureSize)
	}

	return ed25519.Verify(pub, []byte(nonce), sig), nil
}
