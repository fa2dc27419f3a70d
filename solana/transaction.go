package solana

import (
	"encoding/base64"
	"fmt"
)

// Transaction is a signed message. The signature at index i corresponds to
// the account key at index i; the first signature is the transaction id.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles and signs a transaction in one step.
func NewTransaction(payer PublicKey, instructions []Instruction, recentBlockhash Hash, signers ...Signer) (*Transaction, error) {
	msg, err := NewMessage(payer, instructions, recentBlockhash)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{Message: msg}
	if err := tx.Sign(signers...); err != nil {
		return nil, err
	}
	return tx, nil
}

// Sign produces a signature from each required signer key. Every key in the
// message signer set must be covered by one of the supplied signers.
func (tx *Transaction) Sign(signers ...Signer) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	byKey := make(map[PublicKey]Signer, len(signers))
	for _, s := range signers {
		byKey[s.PublicKey()] = s
	}

	signerKeys := tx.Message.SignerKeys()
	tx.Signatures = make([]Signature, len(signerKeys))
	for i, key := range signerKeys {
		s, ok := byKey[key]
		if !ok {
			return fmt.Errorf("missing signer for %s", key)
		}
		sig, err := s.Sign(message)
		if err != nil {
			return fmt.Errorf("sign with %s: %w", key, err)
		}
		tx.Signatures[i] = sig
	}

	return nil
}

// VerifySignatures checks every signature against its signer key.
func (tx *Transaction) VerifySignatures() error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	signerKeys := tx.Message.SignerKeys()
	if len(signerKeys) != len(tx.Signatures) {
		return fmt.Errorf("got %d signers but %d signatures", len(signerKeys), len(tx.Signatures))
	}

	for i, sig := range tx.Signatures {
		if !sig.Verify(signerKeys[i], message) {
			return fmt.Errorf("invalid signature by %s", signerKeys[i])
		}
	}

	return nil
}

// Signature returns the transaction id (the first signature).
func (tx *Transaction) Signature() Signature {
	if len(tx.Signatures) == 0 {
		return Signature{}
	}
	return tx.Signatures[0]
}

// MarshalBinary serializes signatures followed by the message.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	out := appendCompactU16(nil, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		out = append(out, sig[:]...)
	}
	out = append(out, message...)

	return out, nil
}

// ToBase64 returns the wire encoding expected by sendTransaction.
func (tx *Transaction) ToBase64() (string, error) {
	out, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}
