package rpc

// Commitment is the durability level requested when reading state or
// confirming a submission.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// rank orders commitments by durability for confirmation comparison.
func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether c satisfies the durability of want.
func (c Commitment) AtLeast(want Commitment) bool {
	return c.rank() >= want.rank()
}

// AccountInfo is the decoded getAccountInfo value. Data holds the raw
// account bytes (base64 already stripped).
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte
	Executable bool
	RentEpoch  uint64
}

// KeyedAccount pairs an address with its account state, as returned by
// getProgramAccounts.
type KeyedAccount struct {
	Pubkey  string
	Account AccountInfo
}

// Filter narrows a getProgramAccounts scan. Exactly one field is set.
type Filter struct {
	Memcmp   *MemcmpFilter
	DataSize *uint64
}

// MemcmpFilter matches raw account bytes at an offset. Bytes are sent
// base58-encoded on the wire.
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

// MemcmpAt builds a byte-range filter.
func MemcmpAt(offset uint64, b []byte) Filter {
	return Filter{Memcmp: &MemcmpFilter{Offset: offset, Bytes: b}}
}

// DataSize builds an exact-size filter.
func DataSize(n uint64) Filter {
	return Filter{DataSize: &n}
}

// LatestBlockhash is the getLatestBlockhash value.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendTransactionConfig tunes sendTransaction submission.
type SendTransactionConfig struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
	MaxRetries          *uint
}

// SignatureStatus is one entry of getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64
	Err                interface{}
	ConfirmationStatus Commitment
}

// LogsFilter scopes a logs subscription.
type LogsFilter struct {
	// Mentions restricts notifications to transactions mentioning any of
	// these addresses.
	Mentions []string
	// Commitment applied to the subscription; defaults server-side when empty.
	Commitment Commitment
}

// LogNotification is one message of a logs subscription: the raw log lines
// of a processed transaction.
type LogNotification struct {
	Signature string
	Slot      uint64
	Logs      []string
	Err       interface{}
}
