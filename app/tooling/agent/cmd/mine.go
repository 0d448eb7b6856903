package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ethereum/go-ethereum/crypto"
	mtr "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mineRounds     int
	mineInterval   time.Duration
	mineDifficulty uint16
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Run a mining agent that forges blocks and reports its metrics",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().IntVarP(&mineRounds, "rounds", "r", 0, "Number of rounds to run, 0 runs until interrupted.")
	mineCmd.Flags().DurationVarP(&mineInterval, "interval", "i", 30*time.Second, "Time to wait between rounds.")
	mineCmd.Flags().Uint16VarP(&mineDifficulty, "difficulty", "d", pow.DefaultDifficulty, "Difficulty used for the local proof search.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	log, err := logger.New("MINER")
	if err != nil {
		return err
	}
	defer log.Sync()

	privateKey, err := crypto.LoadECDSA(getKeyPath())
	if err != nil {
		return fmt.Errorf("unable to load key, run keygen first: %w", err)
	}

	m := miner{
		log:        log,
		client:     newClient(nodeURL),
		address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		name:       minerName,
		difficulty: mineDifficulty,
		started:    time.Now(),
		hashes:     mtr.NewMeter(),
		solving:    mtr.NewTimer(),
	}
	defer m.hashes.Stop()
	defer m.solving.Stop()

	log.Infow("miner: started", "address", m.address, "name", m.name, "node", nodeURL)

	ctx := cmd.Context()

	for round := 1; mineRounds == 0 || round <= mineRounds; round++ {
		if err := m.round(ctx, round); err != nil {
			log.Errorw("miner: round", "round", round, "ERROR", err)
		}

		if mineRounds != 0 && round == mineRounds {
			break
		}

		if !wait(ctx, mineInterval) {
			break
		}
	}

	log.Infow("miner: summary", "report", m.report(), "hash_rate_1m", m.hashes.Rate1(), "solve_p95", time.Duration(m.solving.Percentile(0.95)))
	return nil
}

// miner tracks the work a mining agent performed against a node.
type miner struct {
	log        *zap.SugaredLogger
	client     *client
	address    string
	name       string
	difficulty uint16
	started    time.Time
	hashes     mtr.Meter
	solving    mtr.Timer

	blocksMined    int
	errorsCount    int
	miningTime     time.Duration
	retransmission time.Duration
}

// round searches a proof locally to measure hash throughput, asks the node to
// forge a block, resolves conflicts and reports the metrics.
func (m *miner) round(ctx context.Context, round int) error {
	status, err := m.client.chain(ctx)
	if err != nil {
		m.errorsCount++
		return fmt.Errorf("chain: %w", err)
	}
	if len(status.Chain) == 0 {
		m.errorsCount++
		return errors.New("chain: node returned an empty chain")
	}
	tip := status.Chain[len(status.Chain)-1]

	start := time.Now()
	proof, err := pow.Solve(ctx, m.difficulty, tip.Proof, nil)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	elapsed := time.Since(start)
	m.miningTime += elapsed
	m.solving.Update(elapsed)
	m.hashes.Mark(int64(proof + 1))

	start = time.Now()
	block, err := m.client.mine(ctx, m.address)
	m.retransmission += time.Since(start)

	switch {
	case err != nil:
		m.errorsCount++
		m.log.Infow("miner: mine", "round", round, "ERROR", err)
	default:
		m.blocksMined++
		m.log.Infow("miner: mine", "round", round, "index", block.Index, "txs", len(block.Transactions), "reward", block.Reward)
	}

	res, err := m.client.resolve(ctx)
	if err != nil {
		m.errorsCount++
		return fmt.Errorf("resolve: %w", err)
	}
	m.log.Infow("miner: resolve", "round", round, "message", res.Message)

	code, ack, err := m.client.report(ctx, m.report())
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	m.log.Infow("miner: report", "round", round, "status", code, "message", ack.Message, "reward", ack.Reward)

	return nil
}

func (m *miner) report() minerReport {
	var successRate float64
	if attempts := m.blocksMined + m.errorsCount; attempts > 0 {
		successRate = float64(m.blocksMined) / float64(attempts)
	}

	// The rate only covers time spent solving, not waiting between rounds.
	totalHashes := m.hashes.Count()
	miningTime := m.miningTime

	var hashRate float64
	if secs := miningTime.Seconds(); secs > 0 {
		hashRate = float64(totalHashes) / secs
	}

	return minerReport{
		MinerAddress:       m.address,
		MinerName:          m.name,
		BlocksMined:        m.blocksMined,
		ErrorsCount:        m.errorsCount,
		TotalHashes:        uint64(totalHashes),
		HashRate:           hashRate,
		TotalMiningTime:    miningTime.Seconds(),
		RetransmissionTime: m.retransmission.Seconds(),
		SuccessRate:        successRate,
		Uptime:             time.Since(m.started).Seconds(),
	}
}
