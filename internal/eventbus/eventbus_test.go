package eventbus

import (
	"context"
	"testing"
)

type testEvent struct{}

func TestUnsubscribeRemovesOwnSubscription(t *testing.T) {
	Use(New())
	defer Use(nil)

	var fired []string
	subscribe := func(tag string) func() {
		return Subscribe(func(ctx context.Context, e testEvent) {
			fired = append(fired, tag)
		})
	}

	// Both handlers come from the same call site, so they share a closure
	// code pointer; only identity-based removal can tell them apart.
	keep := subscribe("keep")
	drop := subscribe("drop")
	drop()

	Publish(context.Background(), testEvent{})
	if len(fired) != 1 || fired[0] != "keep" {
		t.Fatalf("fired = %v, want [keep]", fired)
	}

	// Unsubscribing again is a no-op; removing the last handler empties the bus.
	drop()
	keep()
	fired = nil
	Publish(context.Background(), testEvent{})
	if len(fired) != 0 {
		t.Fatalf("fired after unsubscribe = %v", fired)
	}
}

func TestPublishWithoutBusIsInert(t *testing.T) {
	Use(nil)
	Publish(context.Background(), testEvent{})
}
