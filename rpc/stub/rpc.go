// Package stub provides in-memory implementations of the rpc interfaces
// for testing.
package stub

import (
	"context"
	"errors"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/cryptopapi997/anchor/rpc"
)

// ErrUnavailable is returned when a stub was configured to fail.
var ErrUnavailable = errors.New("stub: unavailable")

// Client implements rpc.Client over in-memory maps.
type Client struct {
	mu sync.Mutex

	Accounts        map[string]rpc.AccountInfo    // pubkey -> account
	ProgramAccounts map[string][]rpc.KeyedAccount // programID -> accounts
	Blockhash       rpc.LatestBlockhash
	Statuses        map[string]*rpc.SignatureStatus // signature -> status

	// NextSignature is returned by SendTransaction.
	NextSignature string
	// SentTransactions captures every submitted transaction (base64).
	SentTransactions []string
	// SentConfigs captures the config of every submission.
	SentConfigs []*rpc.SendTransactionConfig
	// LastFilters captures the filters of the last GetProgramAccounts call.
	LastFilters []rpc.Filter

	// Err, when set, fails every call.
	Err error
}

// NewClient creates an empty stub client with a wire-valid blockhash and
// submission signature preset.
func NewClient() *Client {
	return &Client{
		Accounts:        make(map[string]rpc.AccountInfo),
		ProgramAccounts: make(map[string][]rpc.KeyedAccount),
		Statuses:        make(map[string]*rpc.SignatureStatus),
		Blockhash:       rpc.LatestBlockhash{Blockhash: base58.Encode(make([]byte, 32)), LastValidBlockHeight: 100},
		NextSignature:   base58.Encode(make([]byte, 64)),
	}
}

// AddAccount registers account data for an address.
func (c *Client) AddAccount(pubkey string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = rpc.AccountInfo{Data: data}
}

// AddProgramAccount registers one account under a program's scan result.
func (c *Client) AddProgramAccount(programID, pubkey string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ProgramAccounts[programID] = append(c.ProgramAccounts[programID], rpc.KeyedAccount{
		Pubkey:  pubkey,
		Account: rpc.AccountInfo{Data: data},
	})
}

// GetAccountInfo implements rpc.Client.
func (c *Client) GetAccountInfo(_ context.Context, pubkey string, _ rpc.Commitment) (*rpc.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, rpc.ErrAccountNotFound
	}
	return &info, nil
}

// GetProgramAccounts implements rpc.Client.
func (c *Client) GetProgramAccounts(_ context.Context, programID string, filters []rpc.Filter, _ rpc.Commitment) ([]rpc.KeyedAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.LastFilters = filters
	return c.ProgramAccounts[programID], nil
}

// GetLatestBlockhash implements rpc.Client.
func (c *Client) GetLatestBlockhash(_ context.Context, _ rpc.Commitment) (*rpc.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	bh := c.Blockhash
	return &bh, nil
}

// SendTransaction implements rpc.Client.
func (c *Client) SendTransaction(_ context.Context, txBase64 string, config *rpc.SendTransactionConfig) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	c.SentTransactions = append(c.SentTransactions, txBase64)
	c.SentConfigs = append(c.SentConfigs, config)
	return c.NextSignature, nil
}

// GetSignatureStatuses implements rpc.Client.
func (c *Client) GetSignatureStatuses(_ context.Context, signatures []string) ([]*rpc.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	statuses := make([]*rpc.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		statuses[i] = c.Statuses[sig]
	}
	return statuses, nil
}

// LogStreamer implements rpc.LogStreamer with manually injected
// notifications.
type LogStreamer struct {
	mu     sync.Mutex
	subs   []*streamSub
	closed bool

	// DialErr, when set, fails SubscribeLogs.
	DialErr error
}

type streamSub struct {
	filter rpc.LogsFilter
	ch     chan rpc.LogNotification
	done   chan struct{}
}

// NewLogStreamer creates an empty stub streamer.
func NewLogStreamer() *LogStreamer {
	return &LogStreamer{}
}

// SubscribeLogs implements rpc.LogStreamer.
func (s *LogStreamer) SubscribeLogs(_ context.Context, filter rpc.LogsFilter) (*rpc.LogSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DialErr != nil {
		return nil, s.DialErr
	}
	if s.closed {
		return nil, errors.New("stub: streamer closed")
	}

	sub := &streamSub{
		filter: filter,
		ch:     make(chan rpc.LogNotification, 64),
		done:   make(chan struct{}),
	}
	s.subs = append(s.subs, sub)

	return rpc.NewLogSubscription(sub.ch, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		select {
		case <-sub.done:
		default:
			close(sub.done)
		}
		return nil
	}), nil
}

// Notify injects a notification into every live subscription. Ended
// subscriptions are skipped; the done check runs under the same lock that
// guards FailStream and Close, so a send never races a channel close.
// Delivery is best-effort: a full buffer drops the notification rather
// than blocking with the lock held.
func (s *LogStreamer) Notify(n rpc.LogNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case <-sub.done:
			continue
		default:
		}
		select {
		case sub.ch <- n:
		default:
		}
	}
}

// FailStream simulates stream death: all notification channels close
// without an unsubscribe.
func (s *LogStreamer) FailStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case <-sub.done:
		default:
			close(sub.done)
			close(sub.ch)
		}
	}
}

// SubscriptionCount returns the number of subscriptions ever opened.
func (s *LogStreamer) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close implements rpc.LogStreamer.
func (s *LogStreamer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, sub := range s.subs {
		select {
		case <-sub.done:
		default:
			close(sub.done)
			close(sub.ch)
		}
	}
	return nil
}
