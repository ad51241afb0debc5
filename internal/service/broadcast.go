package service

import "sync"

// CounterUpdate is the store-confirmed counter state pushed to live
// subscribers after every successful decrement or reset.
type CounterUpdate struct {
	UserID    string
	Count     int
	Completed bool
}

// Broadcaster fans counter updates out to per-user subscribers. It is safe
// for concurrent use. The update sent on a channel is always a value the
// store has confirmed; subscribers treat the latest received value as
// authoritative (last writer wins).
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan CounterUpdate]struct{}
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[chan CounterUpdate]struct{})}
}

// Subscribe registers a listener for one user's counter. The returned
// cancel func removes the subscription and closes the channel; after it
// returns, no further update is delivered.
func (b *Broadcaster) Subscribe(userID string) (<-chan CounterUpdate, func()) {
	// Buffer one update so a slow reader never blocks the publisher.
	ch := make(chan CounterUpdate, 1)

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan CounterUpdate]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(b.subs, userID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers an update to every subscriber of the user. If a
// subscriber's buffer is full, its stale pending value is replaced by the
// newer one rather than queued behind it.
func (b *Broadcaster) Publish(update CounterUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[update.UserID] {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
