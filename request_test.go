package anchor

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/solana"
)

func TestRequestBuilder_Instructions(t *testing.T) {
	p, _, _ := newTestProgram(t)

	pre := solana.Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts:  []solana.AccountMeta{solana.Meta(solana.NewRandomPublicKey()).Signer().Writable()},
		Data:      []byte{2, 0, 0, 0},
	}
	target := solana.NewRandomPublicKey()

	ixs := p.Request().
		Instruction(pre).
		Accounts(solana.Meta(target).Writable()).
		Args([]byte{1, 2, 3}).
		Instructions()

	require.Len(t, ixs, 2)
	assert.Equal(t, pre, ixs[0])
	assert.Equal(t, p.ID(), ixs[1].ProgramID)
	assert.Equal(t, []byte{1, 2, 3}, ixs[1].Data)
	require.Len(t, ixs[1].Accounts, 1)
	assert.Equal(t, target, ixs[1].Accounts[0].PublicKey)
}

func TestRequestBuilder_NoProgramInstructionWithoutAccountsOrArgs(t *testing.T) {
	p, _, _ := newTestProgram(t)

	pre := solana.Instruction{ProgramID: solana.SystemProgramID}
	ixs := p.Request().Instruction(pre).Instructions()

	require.Len(t, ixs, 1)
	assert.Equal(t, pre, ixs[0])
}

func TestRequestBuilder_SignedTransaction(t *testing.T) {
	p, _, _ := newTestProgram(t)
	ctx := context.Background()

	extra, err := solana.NewWallet()
	require.NoError(t, err)

	tx, err := p.Request().
		Accounts(
			solana.Meta(extra.PublicKey()).Signer().Writable(),
			solana.Meta(solana.NewRandomPublicKey()).Writable(),
		).
		Args([]byte{7}).
		Signer(extra).
		SignedTransaction(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.VerifySignatures())

	signerKeys := tx.Message.SignerKeys()
	require.Len(t, signerKeys, 2)
	assert.Equal(t, p.Payer().PublicKey(), signerKeys[0], "payer is the fee payer")
	assert.Equal(t, extra.PublicKey(), signerKeys[1])
	assert.Len(t, tx.Signatures, 2)
}

func TestRequestBuilder_SignedTransaction_Repeatable(t *testing.T) {
	p, _, _ := newTestProgram(t)
	ctx := context.Background()

	builder := p.Request().Args([]byte{1})

	tx1, err := builder.SignedTransaction(ctx)
	require.NoError(t, err)
	tx2, err := builder.SignedTransaction(ctx)
	require.NoError(t, err)

	assert.Equal(t, tx1.Signature(), tx2.Signature())
}

func TestRequestBuilder_MissingSigner(t *testing.T) {
	p, _, _ := newTestProgram(t)

	// A signer meta with no matching Signer supplied.
	_, err := p.Request().
		Accounts(solana.Meta(solana.NewRandomPublicKey()).Signer()).
		SignedTransaction(context.Background())
	require.Error(t, err)

	var serr *SigningError
	assert.ErrorAs(t, err, &serr)
}

func TestRequestBuilder_Send(t *testing.T) {
	p, client, _ := newTestProgram(t)
	ctx := context.Background()

	sig, err := p.Request().Args([]byte{9}).Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.NextSignature, sig.String())

	require.Len(t, client.SentTransactions, 1)
	require.Len(t, client.SentConfigs, 1)
	assert.Nil(t, client.SentConfigs[0])

	// The submitted payload is the base64 wire encoding of the signed
	// transaction.
	raw, err := base64.StdEncoding.DecodeString(client.SentTransactions[0])
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestRequestBuilder_SendBlockhashFailure(t *testing.T) {
	p, client, _ := newTestProgram(t)
	client.Err = errors.New("rpc down")

	_, err := p.Request().Args([]byte{9}).Send(context.Background())
	require.Error(t, err)

	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
	assert.Empty(t, client.SentTransactions)
}

func TestRequestBuilder_SendWithSpinnerAndConfig(t *testing.T) {
	p, client, _ := newTestProgram(t)
	ctx := context.Background()

	// Submission confirms immediately at the program's commitment.
	client.Statuses[client.NextSignature] = &rpc.SignatureStatus{
		Slot:               10,
		ConfirmationStatus: rpc.CommitmentFinalized,
	}

	retries := uint(2)
	cfg := rpc.SendTransactionConfig{SkipPreflight: true, MaxRetries: &retries}

	sig, err := p.Request().Args([]byte{1}).SendWithSpinnerAndConfig(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, client.NextSignature, sig.String())

	require.Len(t, client.SentConfigs, 1)
	require.NotNil(t, client.SentConfigs[0])
	assert.True(t, client.SentConfigs[0].SkipPreflight)
	require.NotNil(t, client.SentConfigs[0].MaxRetries)
	assert.Equal(t, uint(2), *client.SentConfigs[0].MaxRetries)
}

func TestRequestBuilder_ConfirmReportsTransactionError(t *testing.T) {
	p, client, _ := newTestProgram(t)

	client.Statuses[client.NextSignature] = &rpc.SignatureStatus{
		Slot: 10,
		Err:  map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
	}

	_, err := p.Request().Args([]byte{1}).SendWithSpinnerAndConfig(context.Background(), rpc.SendTransactionConfig{})
	require.Error(t, err)

	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestRequestBuilder_ConfirmHonorsContext(t *testing.T) {
	p, client, _ := newTestProgram(t)

	// Status never reaches the requested commitment.
	client.Statuses[client.NextSignature] = &rpc.SignatureStatus{
		Slot:               10,
		ConfirmationStatus: rpc.CommitmentProcessed,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Request().Args([]byte{1}).SendWithSpinnerAndConfig(ctx, rpc.SendTransactionConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
