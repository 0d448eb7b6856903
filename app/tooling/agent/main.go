// Package main drives a ledger node with miner and transaction agents.
package main

import "github.com/ardanlabs/ledger/app/tooling/agent/cmd"

func main() {
	cmd.Execute()
}
