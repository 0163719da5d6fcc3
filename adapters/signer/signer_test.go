package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/communa/backend/core"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexNonce = regexp.MustCompile(`^[0-9a-f]{64}$`)

func personalSign(t *testing.T, message string) (sig, address string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	raw, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	raw[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(raw), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestGenerateNonce_FixedLengthHexAndUnique(t *testing.T) {
	s := NewEthereumSigner()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		n, err := s.GenerateNonce()
		require.NoError(t, err)
		assert.Regexp(t, hexNonce, n)
		_, dup := seen[n]
		assert.False(t, dup)
		seen[n] = struct{}{}
	}
}

func TestEthereumSigner_Verify(t *testing.T) {
	s := NewEthereumSigner()
	nonce, err := s.GenerateNonce()
	require.NoError(t, err)

	sig, addr := personalSign(t, nonce)

	ok, err := s.Verify(nonce, sig, addr)
	require.NoError(t, err)
	assert.True(t, ok)

	otherSig, _ := personalSign(t, "something else")
	ok, err = s.Verify(nonce, otherSig, addr)
	require.NoError(t, err)
	assert.False(t, ok)

	wrongMsgSig, sameAddrCheck := personalSign(t, "not the nonce")
	ok, err = s.Verify(nonce, wrongMsgSig, sameAddrCheck)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEthereumSigner_MalformedInput(t *testing.T) {
	s := NewEthereumSigner()
	sig, addr := personalSign(t, "n")

	ok, err := s.Verify("n", sig, "0xABC")
	assert.False(t, ok)
	assert.ErrorIs(t, err, core.ErrMalformedAddress)

	ok, err = s.Verify("n", "unrelated-signature", addr)
	assert.False(t, ok)
	assert.ErrorIs(t, err, core.ErrMalformedSignature)
}

func TestEthereumSigner_Concurrent(t *testing.T) {
	s := NewEthereumSigner()
	sig, addr := personalSign(t, "shared")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Verify("shared", sig, addr)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestEd25519Signer_Verify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	s := NewEd25519Signer()

	nonce, err := s.GenerateNonce()
	require.NoError(t, err)
	sig := hex.EncodeToString(ed25519.Sign(priv, []byte(nonce)))
	addr := hex.EncodeToString(pub)

	ok, err := s.Verify(nonce, sig, addr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify("other", sig, addr)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Verify(nonce, "zz", addr)
	assert.ErrorIs(t, err, core.ErrMalformedSignature)

	_, err = s.Verify(nonce, sig, "0x1234")
	assert.ErrorIs(t, err, core.ErrMalformedAddress)
}

func TestEthereumSigner_NormalizeAddress(t *testing.T) {
	s := NewEthereumSigner()
	_, address := personalSign(t, "x")

	lower, err := s.NormalizeAddress(strings.ToLower(address))
	require.NoError(t, err)
	upper, err := s.NormalizeAddress("0x" + strings.ToUpper(address[2:]))
	require.NoError(t, err)

	assert.Equal(t, address, lower)
	assert.Equal(t, address, upper)

	_, err = s.NormalizeAddress("0xabc")
	assert.ErrorIs(t, err, core.ErrMalformedAddress)
}

func TestEd25519Signer_NormalizeAddress(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	s := NewEd25519Signer()
	want := hex.EncodeToString(pub)

	got, err := s.NormalizeAddress("0x" + strings.ToUpper(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.NormalizeAddress("beef")
	assert.ErrorIs(t, err, core.ErrMalformedAddress)
}

func TestNew(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.IsType(t, EthereumSigner{}, s)

	s, err = New(ChainEd25519)
	require.NoError(t, err)
	assert.IsType(t, Ed25519Signer{}, s)

	_, err = New("solana")
	assert.Error(t, err)
}
