package events_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out ledger events.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two receivers are registered.", testID)
		{
			evts := events.New()

			ch1 := evts.Acquire("1")
			ch2 := evts.Acquire("2")

			evts.Send("block", "blk[2] mined")

			for i, ch := range []<-chan events.Event{ch1, ch2} {
				e := <-ch
				if e.Type != "block" || e.Message != "blk[2] mined" || e.Time.IsZero() {
					t.Fatalf("\t%s\tTest %d:\tShould deliver the event to receiver %d: %+v", failed, testID, i, e)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould deliver the event to every receiver.", success, testID)

			if err := evts.Release("1"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release a receiver: %s", failed, testID, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the released channel.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close the released channel.", success, testID)

			if err := evts.Release("1"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not release an unknown receiver.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not release an unknown receiver.", success, testID)

			evts.Shutdown()
			if _, open := <-ch2; open {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}
	}
}

func Test_EventsFilter(t *testing.T) {
	t.Log("Given the need to subscribe to a subset of ledger events.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a receiver only wants block events.", testID)
		{
			evts := events.New()
			defer evts.Shutdown()

			blocks := evts.Acquire("blocks", events.TypeBlock)
			all := evts.Acquire("all")

			if n := evts.Subscribers(); n != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have 2 subscribers, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould have 2 subscribers.", success, testID)

			evts.Send(events.TypeChain, "chain replaced")
			evts.Send(events.TypeBlock, "blk[3] mined")

			if e := <-blocks; e.Type != events.TypeBlock {
				t.Fatalf("\t%s\tTest %d:\tShould only deliver block events, got %+v.", failed, testID, e)
			}
			t.Logf("\t%s\tTest %d:\tShould only deliver block events.", success, testID)

			first, second := <-all, <-all
			if first.Type != events.TypeChain || second.Type != events.TypeBlock {
				t.Fatalf("\t%s\tTest %d:\tShould deliver every event in order, got %s then %s.", failed, testID, first.Type, second.Type)
			}
			t.Logf("\t%s\tTest %d:\tShould deliver every event in order to an unfiltered receiver.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a receiver stops reading.", testID)
		{
			evts := events.New()
			defer evts.Shutdown()

			evts.Acquire("slow")

			const sent = 150
			for i := range sent {
				evts.Send(events.TypeTx, fmt.Sprintf("tx %d", i))
			}

			if d := evts.Dropped(); d != sent-100 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the events beyond the buffer, got %d.", failed, testID, d)
			}
			t.Logf("\t%s\tTest %d:\tShould drop the events beyond the buffer without blocking.", success, testID)
		}
	}
}
