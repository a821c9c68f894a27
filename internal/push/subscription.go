package push

import "sync"

// Subscription is a handle on a topic subscription. A Subscription whose
// connection has gone away (or that was created while disconnected) is a
// no-op: Unsubscribe is always safe to call, any number of times.
type Subscription struct {
	destination string

	mu     sync.Mutex
	cancel func()
	done   bool
}

// noopSubscription returns an inert subscription for the given destination.
func noopSubscription(destination string) *Subscription {
	return &Subscription{destination: destination, done: true}
}

// Destination returns the topic this subscription is bound to.
func (s *Subscription) Destination() string {
	return s.destination
}

// Unsubscribe tears the subscription down. Idempotent; errors from an
// already-closed connection are discarded.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	if s.cancel != nil {
		s.cancel()
	}
}
