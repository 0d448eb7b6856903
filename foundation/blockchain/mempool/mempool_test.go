package mempool_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Drain(t *testing.T) {
	t.Log("Given the need to drain the mempool.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting three transactions.", testID)
		{
			mp := mempool.New()

			for i := range 3 {
				if n := mp.Submit(database.NewTx("alice", "bob", float64(i))); n != i+1 {
					t.Fatalf("\t%s\tTest %d:\tShould report %d pending, got %d.", failed, testID, i+1, n)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould report the pending count.", success, testID)

			if cpy := mp.Copy(); len(cpy) != 3 || mp.Count() != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould copy without draining.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould copy without draining.", success, testID)

			trans := mp.Drain()
			if len(trans) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould drain 3 transactions, got %d.", failed, testID, len(trans))
			}
			for i, tx := range trans {
				if tx.Amount != float64(i) {
					t.Fatalf("\t%s\tTest %d:\tShould keep submission order: %v", failed, testID, trans)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould drain in submission order.", success, testID)

			trans = mp.Drain()
			if trans == nil || len(trans) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get back an empty set on the second drain: %v", failed, testID, trans)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an empty set on the second drain.", success, testID)
		}
	}
}

func Test_Concurrent(t *testing.T) {
	t.Log("Given the need to submit and drain concurrently.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen 8 goroutines submit while another drains.", testID)
		{
			const g = 8
			const per = 250

			mp := mempool.New()

			var wg sync.WaitGroup
			wg.Add(g)

			for i := range g {
				go func() {
					defer wg.Done()
					for j := range per {
						mp.Submit(database.NewTx(fmt.Sprintf("s%d", i), "r", float64(j)))
					}
				}()
			}

			done := make(chan struct{})
			drained := make(chan int)
			go func() {
				var total int
				for {
					select {
					case <-done:
						drained <- total
						return
					default:
						total += len(mp.Drain())
					}
				}
			}()

			wg.Wait()
			close(done)
			total := <-drained
			total += len(mp.Drain())

			if total != g*per {
				t.Fatalf("\t%s\tTest %d:\tShould drain every transaction, got %d exp %d.", failed, testID, total, g*per)
			}
			t.Logf("\t%s\tTest %d:\tShould drain every transaction exactly once.", success, testID)
		}
	}
}
