package ports

// Signer issues login nonces and checks wallet signatures over them.
// Verify returns (false, nil) for a well formed signature that does not match, and an
// error only when verification could not be attempted.
type Signer interface {
	GenerateNonce() (string, error)
	Verify(nonce, signature, address string) (bool, error)

	// NormalizeAddress returns the canonical spelling of address, so that every
	// spelling of one wallet maps to the same nonce key and account.
	NormalizeAddress(address string) (string, error)
}
