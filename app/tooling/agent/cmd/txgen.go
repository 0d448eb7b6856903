package cmd

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	txRounds   int
	txInterval time.Duration
	txMaxBatch int
)

var txgenCmd = &cobra.Command{
	Use:   "txgen",
	Short: "Submit batches of random transactions to the node",
	RunE:  txgenRun,
}

func init() {
	rootCmd.AddCommand(txgenCmd)
	txgenCmd.Flags().IntVarP(&txRounds, "rounds", "r", 0, "Number of rounds to run, 0 runs until interrupted.")
	txgenCmd.Flags().DurationVarP(&txInterval, "interval", "i", 30*time.Second, "Time to wait between rounds.")
	txgenCmd.Flags().IntVarP(&txMaxBatch, "batch", "b", 20, "Maximum number of transactions per round.")
}

func txgenRun(cmd *cobra.Command, args []string) error {
	log, err := logger.New("TXGEN")
	if err != nil {
		return err
	}
	defer log.Sync()

	g := txgen{
		log:      log,
		client:   newClient(nodeURL),
		maxBatch: txMaxBatch,
	}

	ctx := cmd.Context()

	for round := 1; txRounds == 0 || round <= txRounds; round++ {
		g.round(ctx, round)

		if txRounds != 0 && round == txRounds {
			break
		}

		if !wait(ctx, txInterval) {
			break
		}
	}

	log.Infow("txgen: summary", "submitted", g.submitted, "requests", g.client.latency.Count(), "errors", g.client.errors.Count(), "mean_latency", time.Duration(g.client.latency.Mean()))
	return nil
}

// txgen produces random transactions against a single node.
type txgen struct {
	log       *zap.SugaredLogger
	client    *client
	maxBatch  int
	submitted int
}

func (g *txgen) round(ctx context.Context, round int) {
	n := 1
	if g.maxBatch > 1 {
		n += rand.IntN(g.maxBatch)
	}

	for range n {
		tx := randomTx()

		ack, err := g.client.submitTx(ctx, tx)
		if err != nil {
			g.log.Errorw("txgen: submit", "round", round, "tx", tx, "ERROR", err)
			continue
		}
		g.submitted++
		g.log.Infow("txgen: submit", "round", round, "tx", tx, "index", ack.Index)
	}

	status, err := g.client.chain(ctx)
	if err != nil {
		g.log.Errorw("txgen: chain", "round", round, "ERROR", err)
		return
	}
	g.log.Infow("txgen: chain", "round", round, "length", status.Length)
}

const nameChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomName(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nameChars[rand.IntN(len(nameChars))]
	}
	return string(b)
}

func randomTx() database.Tx {
	return database.NewTx(randomName(8), randomName(8), float64(1+rand.IntN(100)))
}
