package solana

// AccountMeta describes how an instruction uses one account.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// Meta builds a read-only non-signer AccountMeta.
func Meta(pk PublicKey) AccountMeta {
	return AccountMeta{PublicKey: pk}
}

// Signer marks the account as a required signer.
func (m AccountMeta) Signer() AccountMeta {
	m.IsSigner = true
	return m
}

// Writable marks the account as writable.
func (m AccountMeta) Writable() AccountMeta {
	m.IsWritable = true
	return m
}

// Instruction is one directive of a transaction: a program to invoke, the
// accounts it touches and an opaque payload.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}
