package signer

import (
	"fmt"

	"github.com/communa/backend/core"
	"github.com/communa/backend/internal/eth"
	"github.com/communa/backend/ports"
)

// EthereumSigner checks personal_sign signatures made by browser wallets
type EthereumSigner struct{}

// NewEthereumSigner creates a signer for Ethereum wallets
func NewEthereumSigner() ports.Signer {
	return EthereumSigner{}
}

// GenerateNonce returns a fresh hex nonce
func (EthereumSigner) GenerateNonce() (string, error) {
	return generateNonce()
}

// NormalizeAddress returns the EIP-55 checksummed form
func (EthereumSigner) NormalizeAddress(address string) (string, error) {
	addr, err := eth.ParseAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedAddress, err)
	}
	return addr.Hex(), nil
}

// Verify checks that signature is a personal_sign of exactly nonce by address
func (EthereumSigner) Verify(nonce, signature, address string) (bool, error) {
	expected, err := eth.ParseAddress(address)
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrMalformedAddress, err)
	}

	ok, err := eth.VerifyPersonal([]byte(nonce), signature, expected)
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrMalformedSignature, err)
	}
	return ok, nil
}
