// Package eth wraps the go-ethereum primitives needed to check personal_sign signatures.
package eth

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is r || s || v
const SignatureLength = crypto.SignatureLength

var (
	ErrSignatureEncoding = errors.New("signature is not 0x prefixed hex")
	ErrSignatureLength   = errors.New("signature must be 65 bytes")
	ErrRecoveryID        = errors.New("signature recovery id out of range")
	ErrAddress           = errors.New("invalid ethereum address")
)

// ParseAddress accepts a 0x prefixed 20 byte hex address in any letter case.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrAddress
	}
	return common.HexToAddress(s), nil
}

// DecodeSignature decodes a wallet signature and normalises V to 0 or 1.
// Wallets emit V as 27/28, go-ethereum expects 0/1.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureEncoding, err)
	}
	if len(sig) != SignatureLength {
		return nil, ErrSignatureLength
	}

	switch v := sig[crypto.RecoveryIDOffset]; v {
	case 0, 1:
	case 27, 28:
		sig[crypto.RecoveryIDOffset] = v - 27
	default:
		return nil, ErrRecoveryID
	}
	return sig, nil
}

// RecoverPersonal returns the address that produced sig over message with
// personal_sign (EIP-191 version 0x45).
func RecoverPersonal(message []byte, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyPersonal reports whether sig over message was made by the key behind expected.
// A signature that decodes but recovers to another key is (false, nil).
func VerifyPersonal(message []byte, signature string, expected common.Address) (bool, error) {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return false, err
	}

	recovered, err := RecoverPersonal(message, sig)
	if err != nil {
		return false, nil
	}
	return recovered == expected, nil
}
