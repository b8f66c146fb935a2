package events_test

import (
	"testing"

	"github.com/gorpcoin/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out events to subscribers.")
	{
		evts := events.New()

		ch1 := evts.Acquire("one")
		ch2 := evts.Acquire("two")

		evts.Send("viewer: block: 1")

		for name, ch := range map[string]<-chan string{"one": ch1, "two": ch2} {
			select {
			case msg := <-ch:
				if msg != "viewer: block: 1" {
					t.Fatalf("\t%s\tShould receive the event on %s : %s", failed, name, msg)
				}
				t.Logf("\t%s\tShould receive the event on %s.", success, name)
			default:
				t.Fatalf("\t%s\tShould receive the event on %s.", failed, name)
			}
		}

		if err := evts.Release("one"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a subscriber : %v", failed, err)
		}
		if _, open := <-ch1; open {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		t.Logf("\t%s\tShould close a released channel.", success)

		if err := evts.Release("one"); err == nil {
			t.Fatalf("\t%s\tShould not be able to release twice.", failed)
		}
		t.Logf("\t%s\tShould not be able to release twice.", success)

		for i := 0; i < 500; i++ {
			evts.Send("flood")
		}
		t.Logf("\t%s\tShould not block on a full subscriber.", success)

		evts.Shutdown()
		for range ch2 {
		}
		t.Logf("\t%s\tShould close every channel on shutdown.", success)
	}
}
