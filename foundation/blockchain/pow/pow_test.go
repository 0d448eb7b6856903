package pow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_SolveIsValid(t *testing.T) {
	t.Log("Given the need to solve and validate the work puzzle.")
	{
		for testID, prev := range []uint64{0, 1, 100, 35293, 1<<40 + 7} {
			t.Logf("\tTest %d:\tWhen solving for previous proof %d.", testID, prev)
			{
				proof, err := pow.Solve(context.Background(), 3, prev, nil)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to solve the puzzle: %s", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to solve the puzzle.", success, testID)

				if !pow.IsValid(3, prev, proof) {
					t.Fatalf("\t%s\tTest %d:\tShould validate the solved proof %d.", failed, testID, proof)
				}
				t.Logf("\t%s\tTest %d:\tShould validate the solved proof.", success, testID)

				if !strings.HasPrefix(pow.Hash(prev, proof), "000") {
					t.Fatalf("\t%s\tTest %d:\tShould hash with leading zeros.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould hash with leading zeros.", success, testID)

				for p := uint64(0); p < proof; p++ {
					if pow.IsValid(3, prev, p) {
						t.Fatalf("\t%s\tTest %d:\tShould find the smallest proof, %d also solves.", failed, testID, p)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould find the smallest proof.", success, testID)
			}
		}
	}
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash the puzzle input.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen hashing the proofs 100 and 35293.", testID)
		{
			hash := pow.Hash(100, 35293)

			if len(hash) != 64 || strings.ToLower(hash) != hash || strings.HasPrefix(hash, "0x") {
				t.Fatalf("\t%s\tTest %d:\tShould get back lowercase hex with no prefix: %s", failed, testID, hash)
			}
			t.Logf("\t%s\tTest %d:\tShould get back lowercase hex with no prefix.", success, testID)

			if hash == pow.Hash(35293, 100) {
				t.Fatalf("\t%s\tTest %d:\tShould depend on the order of the proofs.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould depend on the order of the proofs.", success, testID)

			if hash != pow.Hash(10035, 293) {
				t.Fatalf("\t%s\tTest %d:\tShould hash the decimal concatenation.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hash the decimal concatenation.", success, testID)
		}
	}
}

func Test_SolveCancel(t *testing.T) {
	t.Log("Given the need to stop a search in progress.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the context is already cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pow.Solve(ctx, 20, 100, nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a cancel error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a cancel error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the difficulty is out of range.", testID)
		{
			_, err := pow.Solve(context.Background(), 65, 100, nil)
			if !errors.Is(err, pow.ErrDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a difficulty error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a difficulty error.", success, testID)
		}
	}
}
