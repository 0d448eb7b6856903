package state

import "github.com/ardanlabs/ledger/foundation/blockchain/database"

// SubmitTransaction accepts a transaction into the mempool and returns the
// index of the block the transaction is expected to land in. The index is
// an acknowledgement, not a guarantee.
func (s *State) SubmitTransaction(tx database.Tx) uint64 {
	s.mu.Lock()
	s.mempool.Submit(tx)
	index := uint64(s.db.Length()) + 1
	s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: tx[%s]: index[%d]", tx, index)

	s.stats.TransactionSubmitted()

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return index
}
