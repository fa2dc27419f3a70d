package blocking

import (
	"context"

	"github.com/cryptopapi997/anchor"
	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/solana"
)

// Program is the blocking facade over anchor.Program. It owns a private
// runtime for its entire lifetime; dropping a Program without Close leaks
// it, and Close aborts any subscription task that was not unsubscribed.
type Program struct {
	inner *anchor.Program
	rt    *runtime
}

// NewProgram creates a blocking Program. Runtime construction is
// synchronous and does not touch the network.
func NewProgram(programID solana.PublicKey, cfg anchor.Config, opts ...anchor.ProgramOption) *Program {
	return &Program{
		inner: anchor.NewProgram(programID, cfg, opts...),
		rt:    newRuntime(),
	}
}

// Inner returns the wrapped async Program.
func (p *Program) Inner() *anchor.Program { return p.inner }

// ID returns the program identity.
func (p *Program) ID() solana.PublicKey { return p.inner.ID() }

// Payer returns the configured payer.
func (p *Program) Payer() solana.Signer { return p.inner.Payer() }

// Commitment returns the configured commitment level.
func (p *Program) Commitment() rpc.Commitment { return p.inner.Commitment() }

// Close shuts down the runtime and the shared subscription client. Any
// still-running subscription task is aborted; unsubscribe first for a
// clean shutdown.
func (p *Program) Close() error {
	p.rt.close()
	return p.inner.Close()
}

// Account fetches and decodes the account at address.
func Account[T any, PT anchor.AccountPtr[T]](p *Program, address solana.PublicKey) (*T, error) {
	return run(p.rt, func(ctx context.Context) (*T, error) {
		return anchor.Account[T, PT](ctx, p.inner, address)
	})
}

// Accounts fetches and decodes all matching accounts of type T.
func Accounts[T any, PT anchor.AccountPtr[T]](p *Program, filters []rpc.Filter) ([]anchor.ProgramAccount[T], error) {
	return run(p.rt, func(ctx context.Context) ([]anchor.ProgramAccount[T], error) {
		return anchor.Accounts[T, PT](ctx, p.inner, filters)
	})
}

// AccountsLazy issues the bulk fetch and returns the lazy decoding
// iterator. Iteration itself performs no I/O.
func AccountsLazy[T any, PT anchor.AccountPtr[T]](p *Program, filters []rpc.Filter) (*anchor.ProgramAccountsIterator[T, PT], error) {
	return run(p.rt, func(ctx context.Context) (*anchor.ProgramAccountsIterator[T, PT], error) {
		return anchor.AccountsLazy[T, PT](ctx, p.inner, filters)
	})
}

// OnEvent subscribes to events of type T. The background task runs on the
// program's private runtime; the returned unsubscriber blocks until the
// task has exited.
func OnEvent[T any, PT anchor.EventPtr[T]](p *Program, handler func(anchor.EventContext, *T)) (*EventUnsubscriber, error) {
	inner, err := run(p.rt, func(ctx context.Context) (*anchor.EventUnsubscriber, error) {
		return anchor.OnEvent[T, PT](ctx, p.inner, handler)
	})
	if err != nil {
		return nil, err
	}
	return &EventUnsubscriber{inner: inner, rt: p.rt}, nil
}

// EventUnsubscriber is the blocking form of anchor.EventUnsubscriber.
type EventUnsubscriber struct {
	inner *anchor.EventUnsubscriber
	rt    *runtime
}

// Unsubscribe stops the subscription and blocks until no further callback
// can run.
func (u *EventUnsubscriber) Unsubscribe() error {
	_, err := run(u.rt, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, u.inner.Unsubscribe(ctx)
	})
	return err
}

// Done exposes the background task's completion signal.
func (u *EventUnsubscriber) Done() <-chan struct{} { return u.inner.Done() }

// Err reports why delivery stopped; see anchor.EventUnsubscriber.Err.
func (u *EventUnsubscriber) Err() error { return u.inner.Err() }

// Request starts a blocking RequestBuilder against the program
// configuration snapshot.
func (p *Program) Request() *RequestBuilder {
	return &RequestBuilder{inner: p.inner.Request(), rt: p.rt}
}

// RequestBuilder is the blocking form of anchor.RequestBuilder.
type RequestBuilder struct {
	inner *anchor.RequestBuilder
	rt    *runtime
}

// Instruction appends a pre-instruction.
func (r *RequestBuilder) Instruction(ix solana.Instruction) *RequestBuilder {
	r.inner.Instruction(ix)
	return r
}

// Accounts appends account metas for the program-scoped instruction.
func (r *RequestBuilder) Accounts(metas ...solana.AccountMeta) *RequestBuilder {
	r.inner.Accounts(metas...)
	return r
}

// Args sets the instruction data of the program-scoped instruction.
func (r *RequestBuilder) Args(data []byte) *RequestBuilder {
	r.inner.Args(data)
	return r
}

// Signer appends a signer beyond the payer.
func (r *RequestBuilder) Signer(s solana.Signer) *RequestBuilder {
	r.inner.Signer(s)
	return r
}

// SignedTransaction assembles and signs the transaction.
func (r *RequestBuilder) SignedTransaction() (*solana.Transaction, error) {
	return run(r.rt, r.inner.SignedTransaction)
}

// Send signs and submits the transaction with default configuration.
func (r *RequestBuilder) Send() (solana.Signature, error) {
	return run(r.rt, r.inner.Send)
}

// SendWithSpinnerAndConfig signs, submits and waits for confirmation.
func (r *RequestBuilder) SendWithSpinnerAndConfig(config rpc.SendTransactionConfig) (solana.Signature, error) {
	return run(r.rt, func(ctx context.Context) (solana.Signature, error) {
		return r.inner.SendWithSpinnerAndConfig(ctx, config)
	})
}
