package anchor

import (
	"github.com/cryptopapi997/anchor/rpc"
	"github.com/cryptopapi997/anchor/solana"
)

// ProgramAccountsIterator is a lazy, single-pass cursor over the result of
// one bulk program-accounts fetch. Decoding happens per entry as the
// cursor is consumed; a decode failure of one entry does not invalidate
// the others.
type ProgramAccountsIterator[T any, PT AccountPtr[T]] struct {
	entries []rpc.KeyedAccount
	pos     int
}

// Next advances to the next entry. It returns false when the sequence is
// exhausted.
func (it *ProgramAccountsIterator[T, PT]) Next() bool {
	if it.pos+1 >= len(it.entries) {
		it.pos = len(it.entries)
		return false
	}
	it.pos++
	return true
}

// Item decodes the current entry. Valid only after Next returned true.
func (it *ProgramAccountsIterator[T, PT]) Item() (solana.PublicKey, *T, error) {
	entry := it.entries[it.pos]

	address, err := solana.PublicKeyFromBase58(entry.Pubkey)
	if err != nil {
		return solana.PublicKey{}, nil, decodeErr("account address", err)
	}
	account, err := decodeAccount[T, PT](entry.Account.Data)
	if err != nil {
		return address, nil, err
	}
	return address, account, nil
}

// remaining reports how many entries have not been consumed yet.
func (it *ProgramAccountsIterator[T, PT]) remaining() int {
	if it.pos < 0 {
		return len(it.entries)
	}
	return len(it.entries) - it.pos
}
