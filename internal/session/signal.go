package session

import "sync"

// ExpiryEvent announces that an upstream call for the named session was
// rejected as unauthorized.
type ExpiryEvent struct {
	SessionID string
}

// Signal is the typed broadcast channel for token expiry. It replaces an
// ambient event bus with explicit subscribe/unsubscribe semantics so the
// HTTP layer stays decoupled from whoever reacts to an expired session.
type Signal struct {
	mu   sync.Mutex
	subs map[uint64]chan ExpiryEvent
	next uint64
}

// NewSignal returns a signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{subs: make(map[uint64]chan ExpiryEvent)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// func that detaches it. Cancel is safe to call more than once.
func (s *Signal) Subscribe() (<-chan ExpiryEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan ExpiryEvent, 8)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber without blocking.
// A subscriber that has fallen behind misses the event rather than
// stalling the caller.
func (s *Signal) Publish(ev ExpiryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (s *Signal) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
