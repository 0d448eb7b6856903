// Package peer maintains the peer related information such as the set
// of known peers and the chain status they report.
package peer

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New constructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface for logging.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// ChainStatus represents the full chain a peer reports along with the
// length it claims for that chain.
type ChainStatus struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

// =============================================================================

// PeerSet represents the ordered set of known peers. The order peers are
// added is the order they are visited during fork resolution.
type PeerSet struct {
	mu    sync.RWMutex
	peers []Peer
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{}
}

// Add adds a new node to the end of the set if it doesn't already exist.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, p := range ps.peers {
		if p == peer {
			return false
		}
	}

	ps.peers = append(ps.peers, peer)
	return true
}

// Copy returns the known peers in the order they were added, excluding
// the specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.peers))
	for _, peer := range ps.peers {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}

// =============================================================================

// Neighbours returns the hosts for the count ports following the port of the
// specified host. This is the convention used when no peers are configured.
func Neighbours(host string, count int) ([]Peer, error) {
	h, p, err := net.SplitHostPort(host)
	if err != nil {
		return nil, fmt.Errorf("split host %q: %w", host, err)
	}

	port, err := strconv.Atoi(p)
	if err != nil {
		return nil, fmt.Errorf("parse port %q: %w", p, err)
	}

	if h == "" || h == "0.0.0.0" {
		h = "localhost"
	}

	peers := make([]Peer, count)
	for i := range count {
		peers[i] = New(net.JoinHostPort(h, strconv.Itoa(port+i+1)))
	}

	return peers, nil
}
