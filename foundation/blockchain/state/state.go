// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
	"github.com/ardanlabs/ledger/foundation/blockchain/stats"
)

// peerTimeout is used when no timeout is configured for peer requests.
const peerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and fork resolution in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host        string
	Genesis     genesis.Genesis
	KnownPeers  *peer.PeerSet
	Rewards     *reward.Ledger
	Stats       *stats.Stats
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the blockchain database. The chain and the mempool are
// treated as one resource, every change to either happens under mu.
type State struct {
	mu        sync.Mutex
	host      string
	evHandler EventHandler
	client    *http.Client

	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	db         *database.Database
	mempool    *mempool.Mempool
	rewards    *reward.Ledger
	stats      *stats.Stats

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Genesis.Difficulty > pow.MaxDifficulty {
		return nil, fmt.Errorf("genesis difficulty %d: %w", cfg.Genesis.Difficulty, pow.ErrDifficulty)
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	rewards := cfg.Rewards
	if rewards == nil {
		rewards = reward.New(nil)
	}

	st := cfg.Stats
	if st == nil {
		st = stats.New(time.Now(), nil)
	}

	timeout := cfg.PeerTimeout
	if timeout == 0 {
		timeout = peerTimeout
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		host:      cfg.Host,
		evHandler: ev,
		client:    &http.Client{Timeout: timeout},

		genesis:    cfg.Genesis,
		knownPeers: knownPeers,
		db:         database.New(cfg.Genesis),
		mempool:    mempool.New(),
		rewards:    rewards,
		stats:      st,
	}

	if _, err := st.Update(state.db.Copy()); err != nil {
		ev("state: New: WARNING: stats: %s", err)
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	if err := s.rewards.Close(); err != nil {
		return fmt.Errorf("close rewards: %w", err)
	}

	if err := s.stats.Close(); err != nil {
		return fmt.Errorf("close stats: %w", err)
	}

	return nil
}
