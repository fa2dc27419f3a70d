package anchor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/solana"
)

// confirmPollInterval is the delay between signature-status polls while
// waiting for a submission to reach the requested commitment.
const confirmPollInterval = 500 * time.Millisecond

// RequestBuilder accumulates one transaction against a snapshot of the
// owning Program's configuration. Builder methods mutate and return the
// builder for chaining; they perform no I/O or validation. Duplicate
// account metas and signers are passed through as supplied.
//
// SignedTransaction may be called repeatedly; a builder should not be
// reused after Send or SendWithSpinnerAndConfig submitted it.
type RequestBuilder struct {
	programID  solana.PublicKey
	payer      solana.Signer
	commitment rpc.Commitment
	client     rpc.Client

	instructions []solana.Instruction
	accounts     []solana.AccountMeta
	args         []byte
	signers      []solana.Signer
}

// Request starts a RequestBuilder snapshotting the program's identity,
// commitment and payer.
func (p *Program) Request() *RequestBuilder {
	return &RequestBuilder{
		programID:  p.programID,
		payer:      p.cfg.Payer,
		commitment: p.cfg.Commitment,
		client:     p.client,
	}
}

// Instruction appends a pre-instruction executed before the
// program-scoped one.
func (r *RequestBuilder) Instruction(ix solana.Instruction) *RequestBuilder {
	r.instructions = append(r.instructions, ix)
	return r
}

// Accounts appends account metas for the program-scoped instruction.
func (r *RequestBuilder) Accounts(metas ...solana.AccountMeta) *RequestBuilder {
	r.accounts = append(r.accounts, metas...)
	return r
}

// Args sets the instruction data of the program-scoped instruction.
func (r *RequestBuilder) Args(data []byte) *RequestBuilder {
	r.args = data
	return r
}

// Signer appends a signer beyond the payer. Order is preserved; no
// uniqueness is enforced.
func (r *RequestBuilder) Signer(s solana.Signer) *RequestBuilder {
	r.signers = append(r.signers, s)
	return r
}

// Instructions returns the accumulated instruction list: the
// pre-instructions followed by the program-scoped instruction when
// accounts or args were supplied.
func (r *RequestBuilder) Instructions() []solana.Instruction {
	ixs := make([]solana.Instruction, len(r.instructions))
	copy(ixs, r.instructions)

	if len(r.accounts) > 0 || r.args != nil {
		ixs = append(ixs, solana.Instruction{
			ProgramID: r.programID,
			Accounts:  r.accounts,
			Data:      r.args,
		})
	}
	return ixs
}

// SignedTransaction fetches a recent blockhash, assembles the message with
// the payer as fee payer and signs it with the payer plus every additional
// signer. The builder is not consumed.
func (r *RequestBuilder) SignedTransaction(ctx context.Context) (*solana.Transaction, error) {
	latest, err := r.client.GetLatestBlockhash(ctx, r.commitment)
	if err != nil {
		return nil, transportErr("get latest blockhash", err)
	}
	blockhash, err := solana.HashFromBase58(latest.Blockhash)
	if err != nil {
		return nil, transportErr("get latest blockhash", err)
	}

	signers := make([]solana.Signer, 0, len(r.signers)+1)
	signers = append(signers, r.payer)
	signers = append(signers, r.signers...)

	msg, err := solana.NewMessage(r.payer.PublicKey(), r.Instructions(), blockhash)
	if err != nil {
		return nil, fmt.Errorf("assemble message: %w", err)
	}
	tx := &solana.Transaction{Message: msg}
	if err := tx.Sign(signers...); err != nil {
		return nil, &SigningError{Err: err}
	}
	return tx, nil
}

// Send signs and submits the transaction with default send configuration.
// It returns the transaction signature on submission acknowledgement, not
// confirmation.
func (r *RequestBuilder) Send(ctx context.Context) (solana.Signature, error) {
	return r.submit(ctx, nil)
}

// SendWithSpinnerAndConfig signs and submits the transaction with the
// given send configuration, then waits until it reaches the builder's
// commitment level or ctx expires. Progress is reported through log lines.
func (r *RequestBuilder) SendWithSpinnerAndConfig(ctx context.Context, config rpc.SendTransactionConfig) (solana.Signature, error) {
	sig, err := r.submit(ctx, &config)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := r.confirm(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func (r *RequestBuilder) submit(ctx context.Context, config *rpc.SendTransactionConfig) (solana.Signature, error) {
	tx, err := r.SignedTransaction(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	encoded, err := tx.ToBase64()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("encode transaction: %w", err)
	}

	raw, err := r.client.SendTransaction(ctx, encoded, config)
	if err != nil {
		return solana.Signature{}, transportErr("send transaction", err)
	}
	sig, err := solana.SignatureFromBase58(raw)
	if err != nil {
		return solana.Signature{}, transportErr("send transaction", err)
	}
	return sig, nil
}

// confirm polls signature statuses until the builder's commitment is
// reached, the cluster reports a transaction error, or ctx expires.
func (r *RequestBuilder) confirm(ctx context.Context, sig solana.Signature) error {
	sigStr := sig.String()
	log.Printf("[send] confirming %s at %s", sigStr, r.commitment)

	for {
		statuses, err := r.client.GetSignatureStatuses(ctx, []string{sigStr})
		if err != nil {
			return transportErr("get signature statuses", err)
		}

		if len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.Err != nil {
				return transportErr("confirm transaction", fmt.Errorf("transaction failed: %v", status.Err))
			}
			if status.ConfirmationStatus.AtLeast(r.commitment) {
				log.Printf("[send] confirmed %s", sigStr)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return transportErr("confirm transaction", ctx.Err())
		case <-time.After(confirmPollInterval):
		}
	}
}
