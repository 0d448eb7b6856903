package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by the node",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	c := newClient(nodeURL)

	status, err := c.chain(cmd.Context())
	if err != nil {
		log.Fatal(err)
	}

	for _, block := range status.Chain {
		fmt.Printf("blk[%d] proof[%d] prev[%s] txs[%d] hash[%s]\n", block.Index, block.Proof, block.PreviousHash, len(block.Transactions), block.Hash())
	}
	fmt.Println("length:", status.Length)
}
