package events

import (
	"testing"
	"time"
)

func TestBusFanOut(t *testing.T) {
	b := NewBus(4)
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(Change{Kind: ChangeInserted, EventID: "e1"})

	for i, ch := range []<-chan Change{ch1, ch2} {
		select {
		case c := <-ch:
			if c.EventID != "e1" || c.Kind != ChangeInserted {
				t.Fatalf("subscriber %d: unexpected change %+v", i, c)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no change received", i)
		}
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	b := NewBus(1)
	defer b.Close()

	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// more publishes than buffer; must not block
		for i := 0; i < 10; i++ {
			b.Publish(Change{Kind: ChangeInserted})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	b := NewBus(1)
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}

	// publish after cancel must not panic
	b.Publish(Change{Kind: ChangeDeleted, EventID: "gone"})
}

func TestBusClose(t *testing.T) {
	b := NewBus(1)
	ch, _ := b.Subscribe()
	b.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after bus close")
	}
	// subscribing after close yields a closed channel
	ch2, _ := b.Subscribe()
	if _, ok := <-ch2; ok {
		t.Fatalf("post-close subscribe should return closed channel")
	}
}
