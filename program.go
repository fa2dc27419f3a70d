// Package anchor is a client for programs built with the Anchor framework:
// it decodes typed program accounts, assembles and submits signed
// transactions, and subscribes to typed events emitted through transaction
// logs.
//
// Every operation here is context-driven; the blocking surface in the
// blocking subpackage drives these same implementations on a private
// runtime.
package anchor

import (
	"bytes"
	"context"
	"sync"

	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/solana"
)

// Config carries the immutable configuration of a Program.
type Config struct {
	// Cluster locates the RPC endpoints.
	Cluster Cluster
	// Payer signs and pays for every transaction built from the program.
	Payer solana.Signer
	// Commitment applied to reads, sends and subscriptions. Defaults to
	// finalized.
	Commitment rpc.Commitment
}

// Program is the client handle for one deployed program. Configuration is
// immutable after construction; the subscription client is dialed lazily
// and shared by all subscriptions.
type Program struct {
	programID  solana.PublicKey
	cfg        Config
	client     rpc.Client
	dialStream func(ctx context.Context) (rpc.LogStreamer, error)

	subMu     sync.Mutex
	subClient rpc.LogStreamer
}

// ProgramOption overrides a collaborator, mainly for testing.
type ProgramOption func(*Program)

// WithRPCClient replaces the HTTP RPC collaborator.
func WithRPCClient(c rpc.Client) ProgramOption {
	return func(p *Program) { p.client = c }
}

// WithLogStreamer presets the shared subscription client, skipping the
// lazy dial.
func WithLogStreamer(s rpc.LogStreamer) ProgramOption {
	return func(p *Program) { p.subClient = s }
}

// NewProgram creates a Program for the given program identity.
func NewProgram(programID solana.PublicKey, cfg Config, opts ...ProgramOption) *Program {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentFinalized
	}

	p := &Program{
		programID: programID,
		cfg:       cfg,
	}
	p.dialStream = func(ctx context.Context) (rpc.LogStreamer, error) {
		return rpc.NewWSClient(ctx, cfg.Cluster.WSURL(), nil)
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = rpc.NewHTTPClient(cfg.Cluster.URL())
	}
	return p
}

// ID returns the program identity.
func (p *Program) ID() solana.PublicKey { return p.programID }

// Payer returns the configured payer.
func (p *Program) Payer() solana.Signer { return p.cfg.Payer }

// Commitment returns the configured commitment level.
func (p *Program) Commitment() rpc.Commitment { return p.cfg.Commitment }

// Cluster returns the configured cluster.
func (p *Program) Cluster() Cluster { return p.cfg.Cluster }

// RPC returns the HTTP RPC collaborator.
func (p *Program) RPC() rpc.Client { return p.client }

// subStreamer returns the shared subscription client, dialing it on first
// use. At most one caller dials; later subscribers reuse the connection.
func (p *Program) subStreamer(ctx context.Context) (rpc.LogStreamer, error) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if p.subClient != nil {
		return p.subClient, nil
	}
	s, err := p.dialStream(ctx)
	if err != nil {
		return nil, transportErr("dial subscription client", err)
	}
	p.subClient = s
	return s, nil
}

// Close tears down the shared subscription client, if one was dialed.
// Subscriptions should be unsubscribed first.
func (p *Program) Close() error {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	if p.subClient == nil {
		return nil
	}
	err := p.subClient.Close()
	p.subClient = nil
	return err
}

// Account fetches and decodes the account at address. Returns a
// TransportError if the fetch fails or the account does not exist, and a
// DecodeError if the bytes do not carry T's discriminator or layout.
func Account[T any, PT AccountPtr[T]](ctx context.Context, p *Program, address solana.PublicKey) (*T, error) {
	info, err := p.client.GetAccountInfo(ctx, address.String(), p.cfg.Commitment)
	if err != nil {
		return nil, transportErr("get account info", err)
	}
	return decodeAccount[T, PT](info.Data)
}

// ProgramAccount pairs an address with its decoded account.
type ProgramAccount[T any] struct {
	Address solana.PublicKey
	Account *T
}

// Accounts fetches all accounts of type T owned by the program that match
// filters, eagerly decoding every entry. Equivalent to fully draining
// AccountsLazy; the first per-entry failure aborts with that error.
func Accounts[T any, PT AccountPtr[T]](ctx context.Context, p *Program, filters []rpc.Filter) ([]ProgramAccount[T], error) {
	it, err := AccountsLazy[T, PT](ctx, p, filters)
	if err != nil {
		return nil, err
	}

	results := make([]ProgramAccount[T], 0, it.remaining())
	for it.Next() {
		address, account, err := it.Item()
		if err != nil {
			return nil, err
		}
		results = append(results, ProgramAccount[T]{Address: address, Account: account})
	}
	return results, nil
}

// AccountsLazy issues one bulk fetch for all accounts of type T owned by
// the program that match filters, and returns an iterator that decodes
// entries as they are consumed. A memcmp filter on T's discriminator is
// prepended to the caller filters.
func AccountsLazy[T any, PT AccountPtr[T]](ctx context.Context, p *Program, filters []rpc.Filter) (*ProgramAccountsIterator[T, PT], error) {
	disc := PT(new(T)).AccountDiscriminator()
	all := make([]rpc.Filter, 0, len(filters)+1)
	all = append(all, rpc.MemcmpAt(0, disc[:]))
	all = append(all, filters...)

	entries, err := p.client.GetProgramAccounts(ctx, p.programID.String(), all, p.cfg.Commitment)
	if err != nil {
		return nil, transportErr("get program accounts", err)
	}

	return &ProgramAccountsIterator[T, PT]{entries: entries, pos: -1}, nil
}

// decodeAccount validates the discriminator prefix and unmarshals the rest.
func decodeAccount[T any, PT AccountPtr[T]](data []byte) (*T, error) {
	account := new(T)
	disc := PT(account).AccountDiscriminator()

	if len(data) < len(disc) {
		return nil, decodeErr("account data shorter than discriminator", nil)
	}
	if !bytes.Equal(data[:len(disc)], disc[:]) {
		return nil, decodeErr("discriminator mismatch", nil)
	}
	if err := PT(account).UnmarshalAccountData(data[len(disc):]); err != nil {
		return nil, decodeErr("unmarshal account", err)
	}
	return account, nil
}
