package service_test

import (
	"testing"

	"github.com/eakyuz/zikirmatik/internal/service"
)

func TestBroadcaster_PublishReachesSubscriber(t *testing.T) {
	b := service.NewBroadcaster()

	updates, cancel := b.Subscribe("user-1")
	defer cancel()

	b.Publish(service.CounterUpdate{UserID: "user-1", Count: 39999})

	update := <-updates
	if update.Count != 39999 {
		t.Fatalf("expected count 39999, got %d", update.Count)
	}
}

func TestBroadcaster_SubscribersAreIsolatedPerUser(t *testing.T) {
	b := service.NewBroadcaster()

	one, cancelOne := b.Subscribe("user-1")
	defer cancelOne()
	two, cancelTwo := b.Subscribe("user-2")
	defer cancelTwo()

	b.Publish(service.CounterUpdate{UserID: "user-2", Count: 7})

	select {
	case update := <-one:
		t.Fatalf("user-1 received user-2's update: %+v", update)
	default:
	}

	update := <-two
	if update.Count != 7 {
		t.Fatalf("expected count 7, got %d", update.Count)
	}
}

func TestBroadcaster_LatestValueWinsWhenSlow(t *testing.T) {
	b := service.NewBroadcaster()

	updates, cancel := b.Subscribe("user-1")
	defer cancel()

	// A slow reader must see the newest value, not a stale queued one.
	b.Publish(service.CounterUpdate{UserID: "user-1", Count: 100})
	b.Publish(service.CounterUpdate{UserID: "user-1", Count: 99})
	b.Publish(service.CounterUpdate{UserID: "user-1", Count: 98})

	update := <-updates
	if update.Count != 98 {
		t.Fatalf("expected latest count 98, got %d", update.Count)
	}
}

func TestBroadcaster_CancelClosesAndStopsDelivery(t *testing.T) {
	b := service.NewBroadcaster()

	updates, cancel := b.Subscribe("user-1")
	cancel()

	// Publishing after release must not panic or deliver.
	b.Publish(service.CounterUpdate{UserID: "user-1", Count: 5})

	if _, ok := <-updates; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// Double cancel is safe.
	cancel()
}
