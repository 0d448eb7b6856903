// Package database handles the in memory chain of blocks for the node. The
// chain only grows by appending a block or is replaced wholesale by a longer
// valid chain. Nothing is persisted, a restart starts from genesis.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Set of error variables for chain processing.
var (
	ErrEmptyChain     = errors.New("chain has no blocks")
	ErrMalformedChain = errors.New("malformed chain")
)

// =============================================================================

// Database manages the chain of blocks for the node.
type Database struct {
	mu      sync.RWMutex
	genesis genesis.Genesis
	blocks  []Block
}

// New constructs a database holding only the genesis block.
func New(gen genesis.Genesis) *Database {
	return &Database{
		genesis: gen,
		blocks:  []Block{GenesisBlock(gen)},
	}
}

// Genesis returns the genesis values this database was constructed with.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// Append builds the next block from the proof and transactions and adds it
// to the chain. If previousHash is empty, the hash of the latest block is used.
func (db *Database) Append(proof uint64, previousHash string, trans []Tx) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if previousHash == "" {
		if len(db.blocks) == 0 {
			return Block{}, ErrEmptyChain
		}
		previousHash = db.blocks[len(db.blocks)-1].Hash()
	}

	block := NewBlock(uint64(len(db.blocks))+1, proof, previousHash, trans)
	db.blocks = append(db.blocks, block)

	return block.Clone(), nil
}

// LatestBlock returns the most recently appended block.
func (db *Database) LatestBlock() (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}

	return db.blocks[len(db.blocks)-1].Clone(), nil
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Copy returns a copy of the full chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return clone(db.blocks)
}

// Replace swaps the local chain for the candidate only if the candidate is
// strictly longer. Chains of equal length never replace the local chain.
func (db *Database) Replace(candidate []Block) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(candidate) <= len(db.blocks) {
		return false
	}

	db.blocks = clone(candidate)
	return true
}

// =============================================================================

// ValidateChain walks the candidate chain and checks that it starts at the
// agreed genesis block and that every block links to its parent and solves
// the puzzle posed by its parent's proof.
func ValidateChain(blocks []Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	if len(blocks) == 0 {
		return fmt.Errorf("%w: %w", ErrMalformedChain, ErrEmptyChain)
	}

	evHandler("database: ValidateChain: validate: blk[1]: check: genesis block matches")

	if !blocks[0].MatchesGenesis(gen) {
		return fmt.Errorf("%w: genesis block doesn't match, previous hash %q, proof %d", ErrMalformedChain, blocks[0].PreviousHash, blocks[0].Proof)
	}

	for i := 1; i < len(blocks); i++ {
		evHandler("database: ValidateChain: validate: blk[%d]: check: parent hash and proof", blocks[i].Index)

		if err := blocks[i].ValidateBlock(blocks[i-1], gen.Difficulty); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedChain, err)
		}
	}

	return nil
}

// clone makes a deep copy of the set of blocks.
func clone(blocks []Block) []Block {
	cpy := make([]Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.Clone()
	}
	return cpy
}
