package anchor

import "crypto/sha256"

// AccountData is implemented by typed program accounts. The discriminator
// is the fixed 8-byte tag prefixed to the account's encoded bytes;
// UnmarshalAccountData receives the bytes following it.
type AccountData interface {
	AccountDiscriminator() [8]byte
	UnmarshalAccountData(data []byte) error
}

// Event is implemented by typed program events emitted through transaction
// logs. UnmarshalEvent receives the bytes following the discriminator.
type Event interface {
	EventDiscriminator() [8]byte
	UnmarshalEvent(data []byte) error
}

// AccountPtr constrains a pointer to an account type.
type AccountPtr[T any] interface {
	*T
	AccountData
}

// EventPtr constrains a pointer to an event type.
type EventPtr[T any] interface {
	*T
	Event
}

// AccountDiscriminator derives the standard account discriminator for a
// type name: sha256("account:" + name)[:8].
func AccountDiscriminator(name string) [8]byte {
	return discriminator("account:" + name)
}

// EventDiscriminator derives the standard event discriminator for a type
// name: sha256("event:" + name)[:8].
func EventDiscriminator(name string) [8]byte {
	return discriminator("event:" + name)
}

// InstructionDiscriminator derives the standard instruction discriminator
// for a method name: sha256("global:" + name)[:8]. Instruction data starts
// with it, followed by the serialized arguments.
func InstructionDiscriminator(name string) [8]byte {
	return discriminator("global:" + name)
}

func discriminator(preimage string) [8]byte {
	var disc [8]byte
	sum := sha256.Sum256([]byte(preimage))
	copy(disc[:], sum[:8])
	return disc
}
