// Package cmd contains the agent commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	nodeURL   string
	minerName string
	minerPath string
)

const (
	keyExtension = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8000", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&minerName, "miner", "m", "miner1", "Name of the miner key file.")
	rootCmd.PersistentFlags().StringVarP(&minerPath, "miner-path", "p", "zblock/miners/", "Path to the directory with miner keys.")
}

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Miner and transaction agents for a ledger node",
}

// Execute runs the command selected on the command line.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// wait blocks for the interval and reports false when the context was
// cancelled first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func getKeyPath() string {
	name := minerName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}

	return filepath.Join(minerPath, name)
}
