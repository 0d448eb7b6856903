package database_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// testGenesis keeps the difficulty low so the tests mine quickly.
func testGenesis() genesis.Genesis {
	gen := genesis.Default()
	gen.Difficulty = 2
	return gen
}

// mine appends the specified number of blocks, each carrying one transaction.
func mine(t *testing.T, db *database.Database, blocks int) {
	t.Helper()

	for i := range blocks {
		last, err := db.LatestBlock()
		if err != nil {
			t.Fatalf("latest block: %s", err)
		}

		proof, err := pow.Solve(context.Background(), db.Genesis().Difficulty, last.Proof, nil)
		if err != nil {
			t.Fatalf("solve: %s", err)
		}

		trans := []database.Tx{database.NewTx("alice", "bob", float64(i+1))}
		if _, err := db.Append(proof, "", trans); err != nil {
			t.Fatalf("append: %s", err)
		}
	}
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash blocks.")
	{
		block := database.Block{
			Index:        2,
			Timestamp:    1700000000.5,
			Transactions: []database.Tx{database.NewTx("alice", "bob", 5)},
			Proof:        35293,
			PreviousHash: "abc",
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen hashing the same block twice.", testID)
		{
			h1 := block.Hash()
			h2 := block.Clone().Hash()

			if h1 != h2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same hash: %s != %s", failed, testID, h1, h2)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same hash.", success, testID)

			if len(h1) != 64 {
				t.Fatalf("\t%s\tTest %d:\tShould get back 64 hex characters, got %d.", failed, testID, len(h1))
			}
			t.Logf("\t%s\tTest %d:\tShould get back 64 hex characters.", success, testID)
		}

		type table struct {
			name   string
			mutate func(b *database.Block)
		}

		tt := []table{
			{name: "index", mutate: func(b *database.Block) { b.Index++ }},
			{name: "timestamp", mutate: func(b *database.Block) { b.Timestamp += 0.001 }},
			{name: "proof", mutate: func(b *database.Block) { b.Proof++ }},
			{name: "previous_hash", mutate: func(b *database.Block) { b.PreviousHash = "abd" }},
			{name: "amount", mutate: func(b *database.Block) { b.Transactions[0].Amount = 6 }},
			{name: "sender", mutate: func(b *database.Block) { b.Transactions[0].Sender = "carol" }},
			{name: "extra-tx", mutate: func(b *database.Block) {
				b.Transactions = append(b.Transactions, database.NewTx("bob", "alice", 1))
			}},
		}

		for i, tst := range tt {
			testID := i + 1
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen changing the %s field.", testID, tst.name)
				{
					cpy := block.Clone()
					tst.mutate(&cpy)

					if cpy.Hash() == block.Hash() {
						t.Fatalf("\t%s\tTest %d:\tShould get back a different hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back a different hash.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_HashRandomMutations(t *testing.T) {
	t.Log("Given the need for every single field change to change the hash.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mutating one random field of a block many times.", testID)
		{
			rnd := rand.New(rand.NewPCG(1, 2))

			block := database.Block{
				Index:     7,
				Timestamp: 1700000000.25,
				Transactions: []database.Tx{
					database.NewTx("alice", "bob", 5),
					database.NewTx("bob", "carol", 2.5),
				},
				Proof:        35293,
				PreviousHash: strings.Repeat("ab", 32),
			}
			base := block.Hash()

			type mutation struct {
				field  string
				mutate func(b *database.Block)
			}

			mutations := []mutation{
				{"index", func(b *database.Block) { b.Index += 1 + rnd.Uint64N(1000) }},
				{"timestamp", func(b *database.Block) { b.Timestamp += 0.001 + rnd.Float64()*1000 }},
				{"proof", func(b *database.Block) { b.Proof += 1 + rnd.Uint64N(1_000_000) }},
				{"previous_hash", func(b *database.Block) { b.PreviousHash = fmt.Sprintf("%064x", rnd.Uint64()+1) }},
				{"sender", func(b *database.Block) {
					tx := &b.Transactions[rnd.IntN(len(b.Transactions))]
					tx.Sender = fmt.Sprintf("%s-%d", tx.Sender, rnd.IntN(1000))
				}},
				{"recipient", func(b *database.Block) {
					tx := &b.Transactions[rnd.IntN(len(b.Transactions))]
					tx.Recipient = fmt.Sprintf("%s-%d", tx.Recipient, rnd.IntN(1000))
				}},
				{"amount", func(b *database.Block) {
					tx := &b.Transactions[rnd.IntN(len(b.Transactions))]
					tx.Amount += 0.01 + rnd.Float64()*100
				}},
			}

			const rounds = 1000
			for i := range rounds {
				m := mutations[rnd.IntN(len(mutations))]

				cpy := block.Clone()
				m.mutate(&cpy)

				h := cpy.Hash()
				if h == base {
					t.Fatalf("\t%s\tTest %d:\tShould get back a different hash after changing %s in round %d.", failed, testID, m.field, i)
				}
				if h != cpy.Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould hash the mutated block the same way twice in round %d.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould get back a different hash for %d random single field changes.", success, testID, rounds)

			if block.Hash() != base {
				t.Fatalf("\t%s\tTest %d:\tShould leave the original block untouched.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the original block untouched.", success, testID)
		}
	}
}

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start every node from the same block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen constructing two databases from the same genesis.", testID)
		{
			db1 := database.New(testGenesis())
			db2 := database.New(testGenesis())

			b1, err := db1.LatestBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a genesis block: %s", failed, testID, err)
			}
			b2, _ := db2.LatestBlock()

			if b1.Index != 1 || b1.Proof != 100 || b1.PreviousHash != "1" || len(b1.Transactions) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have the genesis values: %+v", failed, testID, b1)
			}
			t.Logf("\t%s\tTest %d:\tShould have the genesis values.", success, testID)

			if b1.Hash() != b2.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould derive the same genesis hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould derive the same genesis hash.", success, testID)
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	t.Log("Given the need to validate a chain of blocks.")
	{
		gen := testGenesis()
		db := database.New(gen)
		mine(t, db, 3)
		blocks := db.Copy()

		testID := 0
		t.Logf("\tTest %d:\tWhen validating a mined chain.", testID)
		{
			if err := database.ValidateChain(blocks, gen, nil); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate the chain: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to validate the chain.", success, testID)
		}

		type table struct {
			name   string
			mutate func(blocks []database.Block)
		}

		tt := []table{
			{name: "transactions", mutate: func(b []database.Block) { b[1].Transactions[0].Amount = 1000 }},
			{name: "proof", mutate: func(b []database.Block) { b[2].Proof++ }},
			{name: "previous_hash", mutate: func(b []database.Block) { b[3].PreviousHash = "00" }},
			{name: "index", mutate: func(b []database.Block) { b[3].Index = 9 }},
			{name: "genesis-proof", mutate: func(b []database.Block) { b[0].Proof = 101 }},
			{name: "genesis-tx", mutate: func(b []database.Block) {
				b[0].Transactions = []database.Tx{database.NewTx("alice", "bob", 1)}
			}},
		}

		for i, tst := range tt {
			testID := i + 1
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the %s field was tampered with.", testID, tst.name)
				{
					cpy := db.Copy()
					tst.mutate(cpy)

					err := database.ValidateChain(cpy, gen, nil)
					if !errors.Is(err, database.ErrMalformedChain) {
						t.Fatalf("\t%s\tTest %d:\tShould get back a malformed chain error: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get back a malformed chain error.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}

		testID = len(tt) + 1
		t.Logf("\tTest %d:\tWhen validating an empty chain.", testID)
		{
			err := database.ValidateChain(nil, gen, nil)
			if !errors.Is(err, database.ErrMalformedChain) || !errors.Is(err, database.ErrEmptyChain) {
				t.Fatalf("\t%s\tTest %d:\tShould get back an empty chain error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an empty chain error.", success, testID)
		}
	}
}

func Test_Replace(t *testing.T) {
	t.Log("Given the need to replace the local chain.")
	{
		gen := testGenesis()

		local := database.New(gen)
		mine(t, local, 2)

		longer := database.New(gen)
		mine(t, longer, 3)

		equal := database.New(gen)
		mine(t, equal, 2)

		testID := 0
		t.Logf("\tTest %d:\tWhen the candidate is the same length.", testID)
		{
			before := local.Copy()

			if local.Replace(equal.Copy()) {
				t.Fatalf("\t%s\tTest %d:\tShould not replace the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace the chain.", success, testID)

			latest, _ := local.LatestBlock()
			if latest.Hash() != before[len(before)-1].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould keep the local chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the local chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the candidate is longer.", testID)
		{
			if !local.Replace(longer.Copy()) {
				t.Fatalf("\t%s\tTest %d:\tShould replace the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the chain.", success, testID)

			if local.Length() != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould have 4 blocks, got %d.", failed, testID, local.Length())
			}

			got, _ := local.LatestBlock()
			exp, _ := longer.LatestBlock()
			if got.Hash() != exp.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould hold the candidate blocks.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold the candidate blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the candidate is shorter.", testID)
		{
			if local.Replace(equal.Copy()) {
				t.Fatalf("\t%s\tTest %d:\tShould not replace the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace the chain.", success, testID)
		}
	}
}
