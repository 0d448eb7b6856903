// Package reward computes and records the reward earned by the miner that
// produced a block. The reward is tiered by the number of transactions the
// block carries.
package reward

import (
	"sync"
)

// Reward tiers based on the number of transactions in a block.
const (
	LargeBlock  = 1.0
	MediumBlock = 0.5
	SmallBlock  = 0.2
)

// Calculate returns the reward for a block holding the specified number
// of transactions.
func Calculate(transCount int) float64 {
	switch {
	case transCount > 10:
		return LargeBlock
	case transCount > 5:
		return MediumBlock
	default:
		return SmallBlock
	}
}

// =============================================================================

// Entry represents a single reward paid to a miner for a block.
type Entry struct {
	Miner  string  `json:"miner"`
	Block  uint64  `json:"block"`
	Trans  int     `json:"trans"`
	Amount float64 `json:"amount"`
}

// Storer interface represents the behavior required to be implemented by any
// package providing support for persisting reward entries.
type Storer interface {
	Write(entry Entry) error
	Close() error
}

// Ledger maintains the rewards paid to miners.
type Ledger struct {
	mu      sync.RWMutex
	storer  Storer
	entries []Entry
	totals  map[string]float64
}

// New constructs a ledger. The storer is optional, a nil storer keeps the
// rewards in memory only.
func New(storer Storer) *Ledger {
	return &Ledger{
		storer: storer,
		totals: make(map[string]float64),
	}
}

// Close releases the underlying storage.
func (l *Ledger) Close() error {
	if l.storer == nil {
		return nil
	}
	return l.storer.Close()
}

// Record computes the reward for the block and credits it to the miner. The
// entry is kept in memory even if persisting it fails.
func (l *Ledger) Record(miner string, block uint64, transCount int) (Entry, error) {
	entry := Entry{
		Miner:  miner,
		Block:  block,
		Trans:  transCount,
		Amount: Calculate(transCount),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.totals[miner] += entry.Amount

	if l.storer != nil {
		if err := l.storer.Write(entry); err != nil {
			return entry, err
		}
	}

	return entry, nil
}

// Entries returns a copy of every reward recorded in the order paid.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)

	return entries
}

// Totals returns the accumulated reward per miner.
func (l *Ledger) Totals() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := make(map[string]float64, len(l.totals))
	for miner, amount := range l.totals {
		totals[miner] = amount
	}

	return totals
}

// Earned returns the accumulated reward for the specified miner.
func (l *Ledger) Earned(miner string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.totals[miner]
}
