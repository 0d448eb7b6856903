package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper proof that can
// become the next block in the chain. The puzzle is solved without holding
// the lock. If the chain changed underneath the search, the puzzle is solved
// again against the new latest block. The producer is credited the reward.
func (s *State) MineNewBlock(ctx context.Context, producer string) (database.Block, reward.Entry, error) {
	for {
		s.evHandler("state: MineNewBlock: MINING: check mempool count")

		s.mu.Lock()
		count := s.mempool.Count()
		latestBlock, err := s.db.LatestBlock()
		s.mu.Unlock()

		if err != nil {
			return database.Block{}, reward.Entry{}, err
		}

		// Are there enough transactions in the pool.
		if count == 0 {
			return database.Block{}, reward.Entry{}, ErrNoTransactions
		}

		s.evHandler("state: MineNewBlock: MINING: perform POW: prevBlk[%d]: Txs[%d]", latestBlock.Index, count)

		// Attempt to solve the POW puzzle. This can be cancelled.
		start := time.Now()
		proof, err := pow.Solve(ctx, s.genesis.Difficulty, latestBlock.Proof, s.evHandler)
		if err != nil {
			return database.Block{}, reward.Entry{}, err
		}
		duration := time.Since(start)

		s.mu.Lock()

		// The resolver may have replaced the chain while we were solving.
		tip, err := s.db.LatestBlock()
		if err != nil {
			s.mu.Unlock()
			return database.Block{}, reward.Entry{}, err
		}

		prevHash := latestBlock.Hash()
		if tip.Hash() != prevHash {
			s.mu.Unlock()
			s.evHandler("state: MineNewBlock: MINING: latest block changed: blk[%d]: retry", tip.Index)
			continue
		}

		block, entry, err := s.appendBlock(proof, prevHash, producer)
		s.mu.Unlock()

		if err != nil {
			return database.Block{}, reward.Entry{}, err
		}

		s.stats.BlockMined(block, duration)

		s.evHandler("state: MineNewBlock: MINING: SOLVED: blk[%d]: Txs[%d]: duration[%v]", block.Index, len(block.Transactions), duration)

		return block, entry, nil
	}
}

// AppendBlock drains the mempool into a new block carrying the specified
// proof and adds it to the chain. An empty previous hash means the hash of
// the latest block. If a producer is specified, the producer is credited
// the reward for the block.
func (s *State) AppendBlock(proof uint64, previousHash string, producer string) (database.Block, reward.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendBlock(proof, previousHash, producer)
}

// =============================================================================

// appendBlock performs the drain and append. The caller must hold the lock.
func (s *State) appendBlock(proof uint64, previousHash string, producer string) (database.Block, reward.Entry, error) {
	trans := s.mempool.Drain()

	block, err := s.db.Append(proof, previousHash, trans)
	if err != nil {
		for _, tx := range trans {
			s.mempool.Submit(tx)
		}
		return database.Block{}, reward.Entry{}, err
	}

	s.evHandler("state: appendBlock: blk[%d]: hash[%s]", block.Index, block.Hash())

	var entry reward.Entry
	if producer != "" && block.Index > 1 {
		entry, err = s.rewards.Record(producer, block.Index, len(block.Transactions))
		if err != nil {
			s.evHandler("state: appendBlock: WARNING: record reward: %s", err)
		}
		s.evHandler("state: appendBlock: reward: miner[%s]: amount[%v]", producer, entry.Amount)
	}

	if _, err := s.stats.Update(s.db.Copy()); err != nil {
		s.evHandler("state: appendBlock: WARNING: stats: %s", err)
	}

	return block, entry, nil
}
