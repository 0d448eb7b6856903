// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Genesis represents the genesis file. Every node on the network must load
// the same values so they agree on the first block of the chain.
type Genesis struct {
	Date         time.Time `json:"date"`          // Timestamp stamped on the genesis block.
	Difficulty   uint16    `json:"difficulty"`    // How difficult it needs to be to solve the work problem.
	Proof        uint64    `json:"proof"`         // Fixed proof carried by the genesis block.
	PreviousHash string    `json:"previous_hash"` // Sentinel used as the genesis block's previous hash.
}

// Default returns the genesis values used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   pow.DefaultDifficulty,
		Proof:        100,
		PreviousHash: "1",
	}
}

// =============================================================================

// Load opens and consumes the genesis file. If the file doesn't exist the
// default genesis is returned. Missing fields fall back to the defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
