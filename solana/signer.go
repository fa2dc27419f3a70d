package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Signer produces transaction signatures for one public key.
// Implementations may hold the key in memory or delegate to external
// hardware; the transaction assembler only depends on this capability.
type Signer interface {
	// PublicKey returns the address the signatures verify against.
	PublicKey() PublicKey

	// Sign signs the serialized transaction message.
	Sign(message []byte) (Signature, error)
}

// Wallet is an in-memory ed25519 Signer.
type Wallet struct {
	priv ed25519.PrivateKey
}

// NewWallet generates a fresh keypair.
func NewWallet() (*Wallet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Wallet{priv: priv}, nil
}

// WalletFromBase58 restores a wallet from a base58-encoded 64-byte private key.
func WalletFromBase58(s string) (*Wallet, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(decoded))
	}
	return &Wallet{priv: ed25519.PrivateKey(decoded)}, nil
}

// PublicKey implements Signer.
func (w *Wallet) PublicKey() PublicKey {
	return PublicKeyFromBytes(w.priv.Public().(ed25519.PublicKey))
}

// Sign implements Signer.
func (w *Wallet) Sign(message []byte) (Signature, error) {
	var sig Signature
	raw := ed25519.Sign(w.priv, message)
	copy(sig[:], raw)
	return sig, nil
}

// Base58 returns the base58-encoded private key.
func (w *Wallet) Base58() string {
	return base58.Encode(w.priv)
}
