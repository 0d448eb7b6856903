package database

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Block represents a group of transactions batched together.
type Block struct {
	Index        uint64  `json:"index"`         // Position in the chain, genesis is 1.
	Timestamp    float64 `json:"timestamp"`     // Unix time in seconds the block was created.
	Transactions []Tx    `json:"transactions"`  // Transactions drained from the mempool.
	Proof        uint64  `json:"proof"`         // Solution to the POW puzzle posed by the previous block.
	PreviousHash string  `json:"previous_hash"` // Hash of the previous block in the chain.
}

// NewBlock constructs a block stamped with the current time.
func NewBlock(index uint64, proof uint64, previousHash string, trans []Tx) Block {
	if trans == nil {
		trans = []Tx{}
	}

	return Block{
		Index:        index,
		Timestamp:    timestamp(time.Now()),
		Transactions: trans,
		Proof:        proof,
		PreviousHash: previousHash,
	}
}

// GenesisBlock constructs the first block of the chain from the genesis
// configuration. Every node loading the same genesis gets the same block.
func GenesisBlock(gen genesis.Genesis) Block {
	return Block{
		Index:        1,
		Timestamp:    timestamp(gen.Date),
		Transactions: []Tx{},
		Proof:        gen.Proof,
		PreviousHash: gen.PreviousHash,
	}
}

// Hash returns the unique hash for the Block. The block is serialized with
// its keys sorted so logically equal blocks always produce the same hash.
func (b Block) Hash() string {
	data, err := json.Marshal(b.canonical())
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MatchesGenesis reports whether this block is the agreed upon genesis block.
// The timestamp is not compared since nodes stamp their genesis block locally.
func (b Block) MatchesGenesis(gen genesis.Genesis) bool {
	return b.Index == 1 &&
		b.PreviousHash == gen.PreviousHash &&
		b.Proof == gen.Proof &&
		len(b.Transactions) == 0
}

// ValidateBlock takes a block and validates it against the previous block
// to be included into the blockchain.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint16) error {
	if b.Index != previousBlock.Index+1 {
		return fmt.Errorf("block[%d]: not the next number, exp %d", b.Index, previousBlock.Index+1)
	}

	if hash := previousBlock.Hash(); b.PreviousHash != hash {
		return fmt.Errorf("block[%d]: parent hash doesn't match, got %s, exp %s", b.Index, b.PreviousHash, hash)
	}

	if !pow.IsValid(difficulty, previousBlock.Proof, b.Proof) {
		return fmt.Errorf("block[%d]: proof %d doesn't solve the puzzle for %d", b.Index, b.Proof, previousBlock.Proof)
	}

	return nil
}

// Clone returns a copy of the block that doesn't share the transactions.
func (b Block) Clone() Block {
	trans := make([]Tx, len(b.Transactions))
	copy(trans, b.Transactions)
	b.Transactions = trans

	return b
}

// =============================================================================

// canonical returns the block as a map so the JSON encoding has its keys
// in sorted order.
func (b Block) canonical() map[string]any {
	trans := make([]map[string]any, len(b.Transactions))
	for i, tx := range b.Transactions {
		trans[i] = tx.canonical()
	}

	return map[string]any{
		"index":         b.Index,
		"previous_hash": b.PreviousHash,
		"proof":         b.Proof,
		"timestamp":     b.Timestamp,
		"transactions":  trans,
	}
}

// timestamp converts a time to Unix seconds with a fractional part.
func timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
