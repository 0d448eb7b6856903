package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a miner key and print its address",
	Run:   keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func keygenRun(cmd *cobra.Command, args []string) {
	if err := os.MkdirAll(minerPath, 0755); err != nil {
		log.Fatal(err)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	if err := crypto.SaveECDSA(getKeyPath(), privateKey); err != nil {
		log.Fatal(err)
	}

	fmt.Println(crypto.PubkeyToAddress(privateKey.PublicKey).Hex())
}
