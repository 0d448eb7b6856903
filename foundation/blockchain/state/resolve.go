package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Resolution is the outcome of resolving the chain against the known peers.
type Resolution struct {
	Replaced bool
	Chain    []database.Block
}

// Resolve asks every known peer for its chain and replaces the local chain
// with the longest valid chain found, if it is longer than the local chain.
// Peers are polled concurrently but considered in the order they are known,
// so among equally long valid chains the first peer wins. Peers that can't
// be reached or respond with an invalid chain are skipped.
func (s *State) Resolve(ctx context.Context) (Resolution, error) {
	peers := s.RetrieveKnownPeers()

	s.evHandler("state: Resolve: started: peers[%d]", len(peers))
	defer s.evHandler("state: Resolve: completed")

	type response struct {
		status peer.ChainStatus
		err    error
	}

	responses := make([]response, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()

			status, err := s.NetRequestPeerChain(ctx, pr)
			responses[i] = response{status: status, err: err}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}

	best := s.db.Length()
	var candidate []database.Block

	for i, pr := range peers {
		resp := responses[i]

		if resp.err != nil {
			s.evHandler("state: Resolve: peer[%s]: SKIP: %s", pr, resp.err)
			continue
		}

		if resp.status.Length <= best {
			s.evHandler("state: Resolve: peer[%s]: length[%d]: not longer than [%d]", pr, resp.status.Length, best)
			continue
		}

		if err := s.validatePeerChain(resp.status); err != nil {
			s.evHandler("state: Resolve: peer[%s]: SKIP: %s", pr, err)
			continue
		}

		s.evHandler("state: Resolve: peer[%s]: candidate: length[%d]", pr, resp.status.Length)

		best = resp.status.Length
		candidate = resp.status.Chain
	}

	if candidate == nil {
		return Resolution{Chain: s.RetrieveChain()}, nil
	}

	s.mu.Lock()
	replaced := s.db.Replace(candidate)
	blocks := s.db.Copy()
	s.mu.Unlock()

	if !replaced {
		s.evHandler("state: Resolve: local chain grew to [%d], candidate dropped", len(blocks))
		return Resolution{Chain: blocks}, nil
	}

	s.evHandler("state: Resolve: REPLACED: length[%d]", len(blocks))

	s.stats.ChainReplaced()
	if _, err := s.stats.Update(blocks); err != nil {
		s.evHandler("state: Resolve: WARNING: stats: %s", err)
	}

	// Any block being mined now is built on a chain we no longer hold.
	if s.Worker != nil {
		s.Worker.SignalCancelMining()
	}

	return Resolution{Replaced: true, Chain: blocks}, nil
}

// validatePeerChain checks the chain reported by a peer agrees with the
// length it reported and is a valid chain for our genesis.
func (s *State) validatePeerChain(status peer.ChainStatus) error {
	if len(status.Chain) != status.Length {
		return fmt.Errorf("%w: reported length %d, got %d blocks", database.ErrMalformedChain, status.Length, len(status.Chain))
	}

	return database.ValidateChain(status.Chain, s.genesis, s.evHandler)
}
