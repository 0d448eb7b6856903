package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// ErrPeerUnreachable is returned when a peer can't be reached or doesn't
// respond with a successful status.
var ErrPeerUnreachable = errors.New("peer unreachable")

const baseURL = "http://%s/v1"

// NetRequestPeerChain asks the peer for its full chain and length.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) (peer.ChainStatus, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var status peer.ChainStatus
	if err := send(ctx, s.client, http.MethodGet, url, &status); err != nil {
		return peer.ChainStatus{}, fmt.Errorf("%s: %w", pr.Host, err)
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: length[%d]", pr, status.Length)

	return status, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node. Failing to
// reach the node is reported as ErrPeerUnreachable and failing to decode
// the response as ErrMalformedChain.
func send(ctx context.Context, client *http.Client, method string, url string, dataRecv any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPeerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status[%d]: %s", ErrPeerUnreachable, resp.StatusCode, msg)
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("%w: decode: %w", database.ErrMalformedChain, err)
		}
	}

	return nil
}
