package asyncqueue

import (
	"testing"

	"github.com/lattice-io/evhub/subscription"
)

func TestTryPushRespectsCapacity(t *testing.T) {
	q := New(nil, 2)
	e1, e2, e3 := &subscription.Envelope{}, &subscription.Envelope{}, &subscription.Envelope{}

	if !q.TryPush(e1) || !q.TryPush(e2) {
		t.Fatal("expected first two pushes to succeed")
	}
	if q.TryPush(e3) {
		t.Fatal("push beyond capacity should fail")
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
}

func TestPopIsFIFO(t *testing.T) {
	q := New(nil, 4)
	e1, e2 := &subscription.Envelope{}, &subscription.Envelope{}
	q.TryPush(e1)
	q.TryPush(e2)

	got, ok := q.Pop()
	if !ok || got != e1 {
		t.Fatal("expected first pop to return the first-pushed envelope")
	}
	got, ok = q.Pop()
	if !ok || got != e2 {
		t.Fatal("expected second pop to return the second-pushed envelope")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop on empty queue should report false")
	}
}

func TestWakeFiresOnlyOnEmptyToNonEmptyTransition(t *testing.T) {
	var wakes int
	q := New(WakeupFunc(func() { wakes++ }), 4)

	q.TryPush(&subscription.Envelope{})
	q.TryPush(&subscription.Envelope{})
	if wakes != 1 {
		t.Fatalf("wakes = %d, want 1 (coalesced)", wakes)
	}

	q.Pop()
	q.Pop()
	q.TryPush(&subscription.Envelope{})
	if wakes != 2 {
		t.Fatalf("wakes = %d, want 2 after queue went empty and refilled", wakes)
	}
}

func TestChanWakeupCoalesces(t *testing.T) {
	w := NewChanWakeup()
	w.Wake()
	w.Wake()

	select {
	case <-w.C():
	default:
		t.Fatal("expected a pending wakeup")
	}
	select {
	case <-w.C():
		t.Fatal("second wakeup should have coalesced with the first")
	default:
	}
}
