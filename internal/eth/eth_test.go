package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signPersonal mimics what a browser wallet returns: V as 27/28.
func signPersonal(t *testing.T, message string) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestVerifyPersonal(t *testing.T) {
	sig, addr := signPersonal(t, "hello nonce")
	expected, err := ParseAddress(addr)
	require.NoError(t, err)

	ok, err := VerifyPersonal([]byte("hello nonce"), sig, expected)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPersonal([]byte("another nonce"), sig, expected)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeSignature(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"no prefix", "abcd", ErrSignatureEncoding},
		{"short", "0xabcd", ErrSignatureLength},
		{"bad v", hexutil.Encode(append(make([]byte, 64), 5)), ErrRecoveryID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSignature(tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	sig, err := DecodeSignature(hexutil.Encode(append(make([]byte, 64), 28)))
	require.NoError(t, err)
	assert.Equal(t, byte(1), sig[64])
}

func TestParseAddress(t *testing.T) {
	_, err := ParseAddress("0xABC")
	assert.ErrorIs(t, err, ErrAddress)

	lower, err := ParseAddress("0x52908400098527886e0f7030069857d2e4169ee7")
	require.NoError(t, err)
	upper, err := ParseAddress("0x52908400098527886E0F7030069857D2E4169EE7")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}
