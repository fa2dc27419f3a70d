package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKey is a 32-byte Solana account address.
type PublicKey [32]byte

// Well-known program addresses.
var (
	SystemProgramID  = MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID   = MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	SysvarRentPubkey = MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

// PublicKeyFromBase58 parses a base58-encoded public key.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	var pk PublicKey
	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode base58: %w", err)
	}
	if len(decoded) != len(pk) {
		return pk, fmt.Errorf("invalid public key length: %d", len(decoded))
	}
	copy(pk[:], decoded)
	return pk, nil
}

// MustPublicKeyFromBase58 parses a base58-encoded public key and panics on error.
// Intended for well-known constant addresses.
func MustPublicKeyFromBase58(s string) PublicKey {
	pk, err := PublicKeyFromBase58(s)
	if err != nil {
		panic(fmt.Sprintf("invalid public key %q: %v", s, err))
	}
	return pk
}

// PublicKeyFromBytes copies b into a PublicKey. Panics if b is not 32 bytes.
func PublicKeyFromBytes(b []byte) PublicKey {
	var pk PublicKey
	if len(b) != len(pk) {
		panic(fmt.Sprintf("invalid public key length: %d", len(b)))
	}
	copy(pk[:], b)
	return pk
}

// String returns the base58 representation.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns the raw 32 bytes.
func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

// IsZero reports whether the key is all zeroes.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// Equals reports whether two keys are the same address.
func (pk PublicKey) Equals(other PublicKey) bool {
	return bytes.Equal(pk[:], other[:])
}

// IsOnCurve reports whether the key is a valid ed25519 curve point.
// Program-derived addresses are off-curve.
func (pk PublicKey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}

// Signature is a 64-byte ed25519 transaction signature.
type Signature [64]byte

// SignatureFromBase58 parses a base58-encoded signature.
func SignatureFromBase58(s string) (Signature, error) {
	var sig Signature
	decoded, err := base58.Decode(s)
	if err != nil {
		return sig, fmt.Errorf("decode base58: %w", err)
	}
	if len(decoded) != len(sig) {
		return sig, fmt.Errorf("invalid signature length: %d", len(decoded))
	}
	copy(sig[:], decoded)
	return sig, nil
}

// String returns the base58 representation.
func (sig Signature) String() string {
	return base58.Encode(sig[:])
}

// IsZero reports whether the signature is all zeroes.
func (sig Signature) IsZero() bool {
	return sig == Signature{}
}

// Verify checks the signature over message against the given key.
func (sig Signature) Verify(pk PublicKey, message []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), message, sig[:])
}

// Hash is a 32-byte blockhash.
type Hash [32]byte

// HashFromBase58 parses a base58-encoded blockhash.
func HashFromBase58(s string) (Hash, error) {
	var h Hash
	decoded, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("decode base58: %w", err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("invalid hash length: %d", len(decoded))
	}
	copy(h[:], decoded)
	return h, nil
}

// String returns the base58 representation.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// NewRandomPublicKey returns a random on-curve public key. Testing helper.
func NewRandomPublicKey() PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return PublicKeyFromBytes(pub)
}
