package reward_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Calculate(t *testing.T) {
	type table struct {
		name  string
		trans int
		exp   float64
	}

	tt := []table{
		{name: "empty", trans: 0, exp: reward.SmallBlock},
		{name: "small", trans: 5, exp: reward.SmallBlock},
		{name: "medium-low", trans: 6, exp: reward.MediumBlock},
		{name: "medium-high", trans: 10, exp: reward.MediumBlock},
		{name: "large", trans: 11, exp: reward.LargeBlock},
	}

	t.Log("Given the need to reward miners by block size.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a block with %d transactions.", testID, tst.trans)
				{
					got := reward.Calculate(tst.trans)
					if got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right reward.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right reward.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_LedgerFile(t *testing.T) {
	t.Log("Given the need to persist rewards to a file.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen recording rewards for two miners.", testID)
		{
			path := filepath.Join(t.TempDir(), "rewards", "miner_rewards.txt")

			file, err := reward.NewFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open the rewards file: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open the rewards file.", success, testID)

			ledger := reward.New(file)

			if _, err := ledger.Record("MINER1", 2, 12); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to record a reward: %s", failed, testID, err)
			}
			if _, err := ledger.Record("MINER2", 3, 1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to record a reward: %s", failed, testID, err)
			}
			if _, err := ledger.Record("MINER1", 4, 7); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to record a reward: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to record rewards.", success, testID)

			if err := ledger.Close(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to close the ledger: %s", failed, testID, err)
			}

			if got := ledger.Earned("MINER1"); got != reward.LargeBlock+reward.MediumBlock {
				t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
				t.Fatalf("\t%s\tTest %d:\tShould accumulate rewards per miner.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould accumulate rewards per miner.", success, testID)

			if got := len(ledger.Entries()); got != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould keep every entry, got %d.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould keep every entry.", success, testID)

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the rewards file: %s", failed, testID, err)
			}

			exp := "Miner Address, Amount\nMINER1: 1\nMINER2: 0.2\nMINER1: 0.5\n"
			if string(data) != exp {
				t.Logf("\t%s\tTest %d:\tgot: %q", failed, testID, string(data))
				t.Logf("\t%s\tTest %d:\texp: %q", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould write one line per reward.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould write one line per reward.", success, testID)

			file, err = reward.NewFile(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reopen the rewards file: %s", failed, testID, err)
			}
			file.Close()

			data, _ = os.ReadFile(path)
			if strings.Count(string(data), "Miner Address") != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not write the header twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not write the header twice.", success, testID)
		}
	}
}
