// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/blockchain/miners"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/stats"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// unknownMiner is credited when a mining request doesn't identify the miner.
const unknownMiner = "unknown"

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
	Miners *miners.Store
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	status := peer.ChainStatus{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return v1.NewRequestError(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	tx := toTx(ntx)

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "recipient", tx.Recipient, "amount", tx.Amount)
	index := h.State.SubmitTransaction(tx)

	h.Evts.Send(events.TypeTx, fmt.Sprintf("%s queued for blk[%d]", tx, index))

	resp := txAck{
		Message: fmt.Sprintf("Transaction will be added to Block %d", index),
		Index:   index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mine solves the puzzle for the next block and adds the pending transactions
// to the chain. The miner identified by the Miner-Address header is credited.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	miner := r.Header.Get("Miner-Address")
	if miner == "" {
		miner = unknownMiner
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "miner", miner)

	block, entry, err := h.State.MineNewBlock(ctx, miner)
	if err != nil {
		if errors.Is(err, state.ErrNoTransactions) {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		return err
	}

	resp := minedBlock{
		Message:      "New Block Forged",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Reward:       entry.Amount,
	}

	h.Evts.Send(events.TypeBlock, fmt.Sprintf("blk[%d] mined by %s with %d transactions", block.Index, h.NS.Lookup(miner), len(block.Transactions)))

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Resolve replaces the chain with the longest valid chain of the known peers.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	res, err := h.State.Resolve(ctx)
	if err != nil {
		return err
	}

	if res.Replaced {
		h.Evts.Send(events.TypeChain, fmt.Sprintf("chain replaced, length %d", len(res.Chain)))

		resp := resolution{
			Message:  "chain replaced",
			NewChain: res.Chain,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	resp := resolution{
		Message: "no replacement needed",
	}
	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Ping reports how long the node took to handle the request in milliseconds.
func (h Handlers) Ping(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	resp := pong{
		Message: "Pong",
		RTT:     float64(time.Since(v.Now)) / float64(time.Millisecond),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Rewards returns the rewards paid to miners.
func (h Handlers) Rewards(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	paid := h.State.RetrieveRewards()

	entries := make([]rewardEntry, len(paid))
	for i, e := range paid {
		entries[i] = rewardEntry{
			Miner:  e.Miner,
			Name:   h.NS.Lookup(e.Miner),
			Block:  e.Block,
			Trans:  e.Trans,
			Amount: e.Amount,
		}
	}

	totals := make([]rewardTotal, 0)
	for miner, amount := range h.State.RetrieveRewardTotals() {
		totals = append(totals, rewardTotal{
			Miner:  miner,
			Name:   h.NS.Lookup(miner),
			Amount: amount,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Miner < totals[j].Miner
	})

	resp := rewards{
		Entries: entries,
		Totals:  totals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Metrics returns the statistics computed for the chain along with the
// node counters.
func (h Handlers) Metrics(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Stats    stats.Snapshot            `json:"stats"`
		Registry map[string]map[string]any `json:"registry"`
	}{
		Stats:    h.State.RetrieveStats(),
		Registry: h.State.RetrieveStatsRegistry(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitMinerReport records the performance reported by a miner. The report
// is accepted only from a miner that earned a reward on this node.
func (h Handlers) SubmitMinerReport(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nr newReport
	if err := web.Decode(r, &nr); err != nil {
		return v1.NewRequestError(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nr); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	report := toReport(nr)
	report.ID = validate.GenerateID()
	report.Reward = h.State.QueryEarned(report.MinerAddress)
	report.DateReceived = v.Now

	h.Miners.Add(report)

	h.Log.Infow("miner report", "traceid", v.TraceID, "miner", report.MinerAddress, "name", report.MinerName, "reward", report.Reward)

	if report.Reward == 0 {
		resp := reportAck{
			Message: "no reward recorded",
			ID:      report.ID,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	resp := reportAck{
		Message: "miner metrics saved",
		ID:      report.ID,
		Reward:  report.Reward,
	}
	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// MinerReports returns the reports received, optionally filtered by the
// miner query parameter which takes a miner address or name.
func (h Handlers) MinerReports(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	miner := r.URL.Query().Get("miner")
	if address, exists := h.NS.Address(miner); exists {
		miner = address
	}

	reports := h.Miners.Query(miner)
	if reports == nil {
		reports = []miners.Report{}
	}

	return web.Respond(ctx, w, reports, http.StatusOK)
}

// Events handles a web socket to provide events to a client. The type query
// parameter takes a comma separated list of event types to receive.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	var types []string
	if q := r.URL.Query().Get("type"); q != "" {
		types = strings.Split(q, ",")
	}

	ch := h.Evts.Acquire(v.TraceID, types...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(e); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
