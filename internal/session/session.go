// Package session keeps per-user in-flight dialog flags. State lives in
// memory only and resets on restart, which matches how the flows use it: a
// stale flag just re-prompts the user once.
package session

import "sync"

type Store struct {
	mu            sync.Mutex
	awaitingOrder map[int64]bool
}

func NewStore() *Store {
	return &Store{awaitingOrder: make(map[int64]bool)}
}

// SetAwaitingOrderNumber marks that the next free-text message from the
// user should be read as an order number.
func (s *Store) SetAwaitingOrderNumber(telegramID int64, awaiting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if awaiting {
		s.awaitingOrder[telegramID] = true
	} else {
		delete(s.awaitingOrder, telegramID)
	}
}

func (s *Store) AwaitingOrderNumber(telegramID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingOrder[telegramID]
}
