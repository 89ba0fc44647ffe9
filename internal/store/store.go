// Package store holds the single in-memory ledger of in-app
// notifications for one window session. Every presentation component
// in the window reads and mutates the same Store instance; windows do
// not share stores.
package store

import (
	"sync"

	"github.com/loyaltyhq/notify-agent/internal/domain"
)

// Store is the insertion-ordered, id-unique notification ledger.
// All operations are safe for concurrent use and never fail: unknown
// ids are ignored so a stale reference can never crash a caller.
type Store struct {
	mu    sync.RWMutex
	items []domain.Notification
	index map[string]int
	subs  []chan struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts a notification, or replaces the existing entry in place
// when the id is already present. The entry keeps its original list
// position on replace; the id itself never changes.
func (s *Store) Add(n domain.Notification) {
	s.mu.Lock()
	if i, ok := s.index[n.ID]; ok {
		s.items[i] = n
	} else {
		s.index[n.ID] = len(s.items)
		s.items = append(s.items, n)
	}
	s.mu.Unlock()
	s.notify()
}

// MarkAsRead flags the entry as read. No-op on unknown or already read
// ids.
func (s *Store) MarkAsRead(id string) {
	s.mu.Lock()
	i, ok := s.index[id]
	changed := ok && !s.items[i].Read
	if changed {
		s.items[i].Read = true
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// MarkAllAsRead flags every entry as read.
func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Remove deletes the entry. No-op on unknown ids; removing the same id
// twice is harmless.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	i, ok := s.index[id]
	if ok {
		s.items = append(s.items[:i], s.items[i+1:]...)
		delete(s.index, id)
		for j := i; j < len(s.items); j++ {
			s.index[s.items[j].ID] = j
		}
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// UnreadCount derives the number of unread entries. It is computed on
// demand and never cached, so it cannot desync from the list.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}

// Notifications returns a snapshot of all entries in insertion order.
// Callers must not assume the slice aliases internal state.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subscribe returns a channel that receives a signal after every
// mutation that changed store state. The channel has a one-slot
// buffer: rapid mutations coalesce into a single pending signal, so
// consumers re-read the store rather than counting events.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
