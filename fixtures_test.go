package anchor

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/rpc/stub"
	"github.com/cryptopapi997/anchor/solana"
	"github.com/stretchr/testify/require"
)

// counterAccount is a minimal typed account used across the tests: an
// 8-byte little-endian count followed by a bump byte.
type counterAccount struct {
	Count uint64
	Bump  uint8
}

func (*counterAccount) AccountDiscriminator() [8]byte {
	return AccountDiscriminator("Counter")
}

func (a *counterAccount) UnmarshalAccountData(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("counter: need 9 bytes, have %d", len(data))
	}
	a.Count = binary.LittleEndian.Uint64(data[:8])
	a.Bump = data[8]
	return nil
}

// encodeCounter produces wire bytes for a counterAccount, discriminator
// included.
func encodeCounter(count uint64, bump uint8) []byte {
	disc := AccountDiscriminator("Counter")
	data := make([]byte, 0, 17)
	data = append(data, disc[:]...)
	data = binary.LittleEndian.AppendUint64(data, count)
	data = append(data, bump)
	return data
}

// counterChanged is a typed event: the new count as little-endian uint64.
type counterChanged struct {
	Count uint64
}

func (*counterChanged) EventDiscriminator() [8]byte {
	return EventDiscriminator("CounterChanged")
}

func (e *counterChanged) UnmarshalEvent(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("counterChanged: need 8 bytes, have %d", len(data))
	}
	e.Count = binary.LittleEndian.Uint64(data[:8])
	return nil
}

func encodeCounterChanged(count uint64) []byte {
	disc := EventDiscriminator("CounterChanged")
	data := make([]byte, 0, 16)
	data = append(data, disc[:]...)
	data = binary.LittleEndian.AppendUint64(data, count)
	return data
}

// newTestProgram wires a Program to stub collaborators.
func newTestProgram(t *testing.T) (*Program, *stub.Client, *stub.LogStreamer) {
	t.Helper()

	payer, err := solana.NewWallet()
	require.NoError(t, err)

	client := stub.NewClient()
	streamer := stub.NewLogStreamer()

	p := NewProgram(solana.NewRandomPublicKey(), Config{
		Cluster:    Localnet,
		Payer:      payer,
		Commitment: rpc.CommitmentConfirmed,
	}, WithRPCClient(client), WithLogStreamer(streamer))

	return p, client, streamer
}
