// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions that are waiting to be
// included in the next block.
type Mempool struct {
	mu   sync.Mutex
	pool []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.pool)
}

// Submit adds a transaction to the end of the mempool and returns the number
// of transactions now pending.
func (mp *Mempool) Submit(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain returns all the pending transactions in submission order and empties
// the pool. A transaction submitted while draining lands in the next drain.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	if trans == nil {
		return []database.Tx{}
	}

	return trans
}

// Copy returns a copy of the pending transactions in submission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := make([]database.Tx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}
