package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miners"
)

// newTx is what we require from clients when submitting a transaction. The
// amount is a pointer so a zero amount is accepted but a missing one is not.
type newTx struct {
	Sender    string   `json:"sender" validate:"required"`
	Recipient string   `json:"recipient" validate:"required"`
	Amount    *float64 `json:"amount" validate:"required"`
}

func toTx(ntx newTx) database.Tx {
	return database.NewTx(ntx.Sender, ntx.Recipient, *ntx.Amount)
}

type txAck struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

// =============================================================================

type minedBlock struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Reward       float64       `json:"reward"`
}

// resolution carries the winning chain only when it replaced ours.
type resolution struct {
	Message  string           `json:"message"`
	NewChain []database.Block `json:"new_chain,omitempty"`
}

type pong struct {
	Message string  `json:"message"`
	RTT     float64 `json:"rtt"`
}

// =============================================================================

type rewardEntry struct {
	Miner  string  `json:"miner"`
	Name   string  `json:"name"`
	Block  uint64  `json:"block"`
	Trans  int     `json:"trans"`
	Amount float64 `json:"amount"`
}

type rewardTotal struct {
	Miner  string  `json:"miner"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type rewards struct {
	Entries []rewardEntry `json:"entries"`
	Totals  []rewardTotal `json:"totals"`
}

// =============================================================================

// newReport is what we require from miners when they report their
// performance to the node.
type newReport struct {
	MinerAddress       string  `json:"miner_address" validate:"required"`
	MinerName          string  `json:"miner_name" validate:"required"`
	BlocksMined        int     `json:"blocks_mined" validate:"gte=0"`
	ErrorsCount        int     `json:"errors_count" validate:"gte=0"`
	TotalHashes        uint64  `json:"total_hashes"`
	HashRate           float64 `json:"hash_rate" validate:"gte=0"`
	TotalMiningTime    float64 `json:"total_mining_time" validate:"gte=0"`
	RetransmissionTime float64 `json:"retransmission_time" validate:"gte=0"`
	SuccessRate        float64 `json:"success_rate" validate:"gte=0,lte=1"`
	Uptime             float64 `json:"uptime" validate:"gte=0"`
}

func toReport(nr newReport) miners.Report {
	return miners.Report{
		MinerAddress:       nr.MinerAddress,
		MinerName:          nr.MinerName,
		BlocksMined:        nr.BlocksMined,
		ErrorsCount:        nr.ErrorsCount,
		TotalHashes:        nr.TotalHashes,
		HashRate:           nr.HashRate,
		TotalMiningTime:    nr.TotalMiningTime,
		RetransmissionTime: nr.RetransmissionTime,
		SuccessRate:        nr.SuccessRate,
		Uptime:             nr.Uptime,
	}
}

type reportAck struct {
	Message string  `json:"message"`
	ID      string  `json:"id"`
	Reward  float64 `json:"reward"`
}
