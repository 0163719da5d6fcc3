// Package signer implements nonce generation and wallet signature checks.
package signer

import (
	"fmt"

	"github.com/communa/backend/ports"
)

// Chains understood by New
const (
	ChainEthereum = "ethereum"
	ChainEd25519  = "ed25519"
)

// New returns the signer for the configured chain
func New(chain string) (ports.Signer, error) {
	switch chain {
	case ChainEthereum, "":
		return NewEthereumSigner(), nil
	case ChainEd25519:
		return NewEd25519Signer(), nil
	default:
		return nil, fmt.Errorf("unsupported chain %q", chain)
	}
}
