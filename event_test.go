package hub

import (
	"context"
	"testing"

	"github.com/lattice-io/evhub/evtype"
	"github.com/lattice-io/evhub/handler"
	"github.com/lattice-io/evhub/payload"
	"github.com/lattice-io/evhub/subscription"
)

// The package-level sugar functions must all delegate to the same
// process-wide Default() Hub and its own Global() sublist.
func TestPackageLevelSugarDelegatesToDefault(t *testing.T) {
	et := evtype.New(familyServer, serverRemove)

	var got string
	id, err := SubscribeFunc(et, func(ctx context.Context, v string) error {
		got = v
		return nil
	})
	if err != nil {
		t.Fatalf("SubscribeFunc: %v", err)
	}
	defer Unsubscribe(id)

	if Default().Len(Global()) == 0 {
		t.Fatal("Global() sublist should contain the subscription just made")
	}

	if err := Publish(context.Background(), et, payload.Bytes("sugar")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got != "sugar" {
		t.Fatalf("got = %q, want %q", got, "sugar")
	}

	if !Unsubscribe(id) {
		t.Fatal("Unsubscribe should report a transition the first time")
	}
	if Unsubscribe(id) {
		t.Fatal("second Unsubscribe should report no transition")
	}
}

func TestSubscribeEventPtrPackageLevel(t *testing.T) {
	et := evtype.New(familyServer, serverAdd)
	desc := handler.Sync(func(context.Context, *subscription.Subscription, evtype.EventType, payload.Payload) error {
		return nil
	})

	ref, err := SubscribeEventPtr(et, desc)
	if err != nil {
		t.Fatalf("SubscribeEventPtr: %v", err)
	}
	defer ref.Drop()

	if !ref.Unsubscribe() {
		t.Fatal("first Unsubscribe via Ref should report a transition")
	}
}
