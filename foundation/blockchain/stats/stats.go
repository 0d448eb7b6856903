// Package stats maintains the node statistics computed from the chain each
// time it changes. Counters and distributions are kept in a go-metrics
// registry and every computed snapshot can be appended to a metrics file.
package stats

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
	mtr "github.com/rcrowley/go-metrics"
)

// Snapshot represents the statistics computed from a chain.
type Snapshot struct {
	ChainLength         int     `json:"chain_length"`
	BlockGenerationTime float64 `json:"block_generation_time"`
	TransPerBlock       float64 `json:"trans_per_block"`
	ConfirmedTransRate  float64 `json:"confirmed_trans_rate"`
	AccumulatedRewards  float64 `json:"accumulated_rewards"`
}

// Stats collects the node statistics.
type Stats struct {
	mu       sync.Mutex
	start    time.Time
	file     *File
	registry mtr.Registry
	last     Snapshot

	blocksMined    mtr.Counter
	chainsReplaced mtr.Counter
	transSubmitted mtr.Meter
	transPerBlock  mtr.Histogram
	miningTime     mtr.Timer
}

// New constructs the node statistics. The file is optional, a nil file
// keeps the statistics in memory only.
func New(start time.Time, file *File) *Stats {
	registry := mtr.NewPrefixedRegistry("ledger.")

	return &Stats{
		start:          start,
		file:           file,
		registry:       registry,
		blocksMined:    mtr.GetOrRegisterCounter("blocks mined", registry),
		chainsReplaced: mtr.GetOrRegisterCounter("chains replaced", registry),
		transSubmitted: mtr.GetOrRegisterMeter("transactions submitted", registry),
		transPerBlock:  mtr.GetOrRegisterHistogram("transactions per block", registry, mtr.NewUniformSample(500)),
		miningTime:     mtr.GetOrRegisterTimer("mining time", registry),
	}
}

// Close stops the registered metrics and releases the metrics file.
func (s *Stats) Close() error {
	s.registry.UnregisterAll()

	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// TransactionSubmitted marks a transaction accepted into the mempool.
func (s *Stats) TransactionSubmitted() {
	s.transSubmitted.Mark(1)
}

// BlockMined records a block produced by this node and how long it took.
func (s *Stats) BlockMined(block database.Block, duration time.Duration) {
	s.blocksMined.Inc(1)
	s.transPerBlock.Update(int64(len(block.Transactions)))
	s.miningTime.Update(duration)
}

// ChainReplaced records the local chain being replaced by a peer's chain.
func (s *Stats) ChainReplaced() {
	s.chainsReplaced.Inc(1)
}

// Update computes a new snapshot from the specified chain and appends it to
// the metrics file when one is configured.
func (s *Stats) Update(blocks []database.Block) (Snapshot, error) {
	snap := Compute(blocks, time.Since(s.start))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = snap

	if s.file != nil {
		if err := s.file.Write(snap); err != nil {
			return snap, err
		}
	}

	return snap, nil
}

// Snapshot returns the last computed snapshot.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// Registry returns the current value of every registered metric.
func (s *Stats) Registry() map[string]map[string]any {
	return s.registry.GetAll()
}

// =============================================================================

// Compute calculates the statistics for the chain given how long the node
// has been running.
func Compute(blocks []database.Block, elapsed time.Duration) Snapshot {
	n := len(blocks)
	if n == 0 {
		return Snapshot{}
	}

	var genTime float64
	if n > 1 {
		genTime = (blocks[n-1].Timestamp - blocks[0].Timestamp) / float64(n-1)
	}

	var trans int
	var rewards float64
	for _, block := range blocks {
		trans += len(block.Transactions)
		rewards += reward.Calculate(len(block.Transactions))
	}

	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(trans) / secs
	}

	return Snapshot{
		ChainLength:         n,
		BlockGenerationTime: genTime,
		TransPerBlock:       float64(trans) / float64(n),
		ConfirmedTransRate:  rate,
		AccumulatedRewards:  rewards,
	}
}
