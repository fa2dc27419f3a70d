package rpc

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned by GetAccountInfo when the address holds
// no account at the requested commitment.
var ErrAccountNotFound = errors.New("rpc: account not found")

// Client defines the Solana RPC HTTP interface the program client depends on.
type Client interface {
	// GetAccountInfo retrieves the raw account state at an address.
	// Returns ErrAccountNotFound if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string, commitment Commitment) (*AccountInfo, error)

	// GetProgramAccounts retrieves all accounts owned by a program,
	// narrowed by the given filters.
	GetProgramAccounts(ctx context.Context, programID string, filters []Filter, commitment Commitment) ([]KeyedAccount, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction
	// assembly.
	GetLatestBlockhash(ctx context.Context, commitment Commitment) (*LatestBlockhash, error)

	// SendTransaction submits a base64-encoded signed transaction and
	// returns its signature on acknowledgement.
	SendTransaction(ctx context.Context, txBase64 string, config *SendTransactionConfig) (string, error)

	// GetSignatureStatuses retrieves processing status for the given
	// signatures. Entries are nil for unknown signatures.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}

// LogStreamer defines the WebSocket subscription interface.
type LogStreamer interface {
	// SubscribeLogs opens a log-notification stream matching the filter.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (*LogSubscription, error)

	// Close closes the connection and terminates all subscriptions.
	Close() error
}
