package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	mtr "github.com/rcrowley/go-metrics"
)

// requestTimeout covers a mining request which solves the puzzle on the node.
const requestTimeout = 2 * time.Minute

// client talks to the node API and keeps the request counters.
type client struct {
	baseURL string
	http    *http.Client
	latency mtr.Timer
	errors  mtr.Counter
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		latency: mtr.NewTimer(),
		errors:  mtr.NewCounter(),
	}
}

type txAck struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

type minedBlock struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Reward       float64       `json:"reward"`
}

type resolution struct {
	Message  string           `json:"message"`
	NewChain []database.Block `json:"new_chain"`
}

type minerReport struct {
	MinerAddress       string  `json:"miner_address"`
	MinerName          string  `json:"miner_name"`
	BlocksMined        int     `json:"blocks_mined"`
	ErrorsCount        int     `json:"errors_count"`
	TotalHashes        uint64  `json:"total_hashes"`
	HashRate           float64 `json:"hash_rate"`
	TotalMiningTime    float64 `json:"total_mining_time"`
	RetransmissionTime float64 `json:"retransmission_time"`
	SuccessRate        float64 `json:"success_rate"`
	Uptime             float64 `json:"uptime"`
}

type reportAck struct {
	Message string  `json:"message"`
	ID      string  `json:"id"`
	Reward  float64 `json:"reward"`
}

// =============================================================================

func (c *client) chain(ctx context.Context) (peer.ChainStatus, error) {
	var status peer.ChainStatus
	if _, err := c.send(ctx, http.MethodGet, "/v1/chain", nil, nil, &status, http.StatusOK); err != nil {
		return peer.ChainStatus{}, err
	}
	return status, nil
}

func (c *client) submitTx(ctx context.Context, tx database.Tx) (txAck, error) {
	var ack txAck
	if _, err := c.send(ctx, http.MethodPost, "/v1/transactions/new", nil, tx, &ack, http.StatusCreated); err != nil {
		return txAck{}, err
	}
	return ack, nil
}

func (c *client) mine(ctx context.Context, address string) (minedBlock, error) {
	header := http.Header{}
	header.Set("Miner-Address", address)

	var block minedBlock
	if _, err := c.send(ctx, http.MethodGet, "/v1/mine", header, nil, &block, http.StatusOK); err != nil {
		return minedBlock{}, err
	}
	return block, nil
}

func (c *client) resolve(ctx context.Context) (resolution, error) {
	var res resolution
	if _, err := c.send(ctx, http.MethodGet, "/v1/nodes/resolve", nil, nil, &res, http.StatusOK); err != nil {
		return resolution{}, err
	}
	return res, nil
}

func (c *client) report(ctx context.Context, r minerReport) (int, reportAck, error) {
	var ack reportAck
	status, err := c.send(ctx, http.MethodPost, "/v1/miners/metrics", nil, r, &ack, http.StatusOK, http.StatusCreated)
	if err != nil {
		return status, reportAck{}, err
	}
	return status, ack, nil
}

// send performs the request and decodes the response when the status is one
// of the expected ones. Every call is timed and every failure counted.
func (c *client) send(ctx context.Context, method string, path string, header http.Header, dataSend any, dataRecv any, expStatus ...int) (int, error) {
	start := time.Now()
	defer c.latency.UpdateSince(start)

	status, err := c.do(ctx, method, path, header, dataSend, dataRecv, expStatus)
	if err != nil {
		c.errors.Inc(1)
	}

	return status, err
}

func (c *client) do(ctx context.Context, method string, path string, header http.Header, dataSend any, dataRecv any, expStatus []int) (int, error) {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}

	for k, v := range header {
		req.Header[k] = v
	}
	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	expected := false
	for _, s := range expStatus {
		if resp.StatusCode == s {
			expected = true
			break
		}
	}

	if !expected {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, fmt.Errorf("%s %s: status[%d]: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return resp.StatusCode, fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}

	return resp.StatusCode, nil
}
