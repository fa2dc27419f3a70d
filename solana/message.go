package solana

import (
	"fmt"
)

// MessageHeader counts the signature requirements of a message.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction references accounts and program by index into the
// message account-key table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

// Message is a legacy (pre-versioned) transaction message.
type Message struct {
	Header          MessageHeader
	AccountKeys     []PublicKey
	RecentBlockhash Hash
	Instructions    []CompiledInstruction
}

// compiledKey tracks the merged signer/writable flags of one account while
// the key table is being built.
type compiledKey struct {
	key      PublicKey
	signer   bool
	writable bool
}

// NewMessage compiles instructions into a message with payer as fee payer.
// Account keys are ordered payer first, then writable signers, read-only
// signers, writable non-signers, read-only non-signers. Duplicate accounts
// are merged with OR-ed flags.
func NewMessage(payer PublicKey, instructions []Instruction, recentBlockhash Hash) (Message, error) {
	if len(instructions) == 0 {
		return Message{}, fmt.Errorf("no instructions")
	}

	order := make([]PublicKey, 0)
	flags := make(map[PublicKey]*compiledKey)

	observe := func(key PublicKey, signer, writable bool) {
		ck, ok := flags[key]
		if !ok {
			ck = &compiledKey{key: key}
			flags[key] = ck
			order = append(order, key)
		}
		ck.signer = ck.signer || signer
		ck.writable = ck.writable || writable
	}

	// The fee payer is always the first writable signer.
	observe(payer, true, true)
	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			observe(meta.PublicKey, meta.IsSigner, meta.IsWritable)
		}
		observe(ix.ProgramID, false, false)
	}

	classify := func(signer, writable bool) []PublicKey {
		var keys []PublicKey
		for _, key := range order {
			ck := flags[key]
			if ck.signer == signer && ck.writable == writable && key != payer {
				keys = append(keys, key)
			}
		}
		return keys
	}

	readonlySigners := classify(true, false)
	readonlyUnsigned := classify(false, false)

	keys := []PublicKey{payer}
	keys = append(keys, classify(true, true)...)
	keys = append(keys, readonlySigners...)
	signers := len(keys)
	keys = append(keys, classify(false, true)...)
	keys = append(keys, readonlyUnsigned...)

	indexOf := make(map[PublicKey]uint8, len(keys))
	for i, key := range keys {
		if i > 255 {
			return Message{}, fmt.Errorf("too many account keys: %d", len(keys))
		}
		indexOf[key] = uint8(i)
	}

	msg := Message{
		Header: MessageHeader{
			NumRequiredSignatures:       uint8(signers),
			NumReadonlySignedAccounts:   uint8(len(readonlySigners)),
			NumReadonlyUnsignedAccounts: uint8(len(readonlyUnsigned)),
		},
		AccountKeys:     keys,
		RecentBlockhash: recentBlockhash,
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIDIndex: indexOf[ix.ProgramID],
			Data:           ix.Data,
		}
		for _, meta := range ix.Accounts {
			compiled.AccountIndexes = append(compiled.AccountIndexes, indexOf[meta.PublicKey])
		}
		msg.Instructions = append(msg.Instructions, compiled)
	}

	return msg, nil
}

// SignerKeys returns the account keys that must sign, in signing order.
func (m Message) SignerKeys() []PublicKey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}

// IsSigner reports whether key must sign the message.
func (m Message) IsSigner(key PublicKey) bool {
	for _, sk := range m.SignerKeys() {
		if sk == key {
			return true
		}
	}
	return false
}

// MarshalBinary serializes the message in the legacy wire format.
func (m Message) MarshalBinary() ([]byte, error) {
	out := []byte{
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	}

	out = appendCompactU16(out, len(m.AccountKeys))
	for _, key := range m.AccountKeys {
		out = append(out, key[:]...)
	}

	out = append(out, m.RecentBlockhash[:]...)

	out = appendCompactU16(out, len(m.Instructions))
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)
		out = appendCompactU16(out, len(ix.AccountIndexes))
		out = append(out, ix.AccountIndexes...)
		out = appendCompactU16(out, len(ix.Data))
		out = append(out, ix.Data...)
	}

	return out, nil
}

// appendCompactU16 appends n in the compact-u16 (shortvec) encoding.
func appendCompactU16(buf []byte, n int) []byte {
	rem := n
	for {
		b := byte(rem & 0x7f)
		rem >>= 7
		if rem == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}
