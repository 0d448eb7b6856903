package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
	"github.com/ardanlabs/ledger/foundation/blockchain/stats"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Copy()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveRewards returns the rewards paid in the order they were paid.
func (s *State) RetrieveRewards() []reward.Entry {
	return s.rewards.Entries()
}

// RetrieveRewardTotals returns the accumulated reward per miner.
func (s *State) RetrieveRewardTotals() map[string]float64 {
	return s.rewards.Totals()
}

// RetrieveStats returns the statistics computed for the current chain.
func (s *State) RetrieveStats() stats.Snapshot {
	return s.stats.Snapshot()
}

// RetrieveStatsRegistry returns the current value of the node metrics.
func (s *State) RetrieveStatsRegistry() map[string]map[string]any {
	return s.stats.Registry()
}

// =============================================================================

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryEarned returns the accumulated reward for the specified miner.
func (s *State) QueryEarned(miner string) float64 {
	return s.rewards.Earned(miner)
}
