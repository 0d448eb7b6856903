// Package miners keeps the performance reports miners send to the node.
package miners

import (
	"sync"
	"time"
)

// maxReports is used when no limit is configured.
const maxReports = 1_000

// Report is the performance of a miner as reported by the miner.
type Report struct {
	ID                 string    `json:"id"`
	MinerAddress       string    `json:"miner_address"`
	MinerName          string    `json:"miner_name"`
	BlocksMined        int       `json:"blocks_mined"`
	ErrorsCount        int       `json:"errors_count"`
	TotalHashes        uint64    `json:"total_hashes"`
	HashRate           float64   `json:"hash_rate"`
	TotalMiningTime    float64   `json:"total_mining_time"`
	RetransmissionTime float64   `json:"retransmission_time"`
	SuccessRate        float64   `json:"success_rate"`
	Uptime             float64   `json:"uptime"`
	Reward             float64   `json:"reward"`
	DateReceived       time.Time `json:"date_received"`
}

// Store maintains the most recent reports in the order received.
type Store struct {
	mu      sync.RWMutex
	max     int
	reports []Report
}

// NewStore constructs a store that keeps up to limit reports.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = maxReports
	}

	return &Store{
		max: limit,
	}
}

// Add keeps the report, dropping the oldest report once the store is full.
func (s *Store) Add(r Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) == s.max {
		copy(s.reports, s.reports[1:])
		s.reports = s.reports[:len(s.reports)-1]
	}

	s.reports = append(s.reports, r)
}

// Query returns the reports for the specified miner address. An empty
// address returns every report.
func (s *Store) Query(address string) []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Report
	for _, r := range s.reports {
		if address == "" || r.MinerAddress == address {
			out = append(out, r)
		}
	}

	return out
}
