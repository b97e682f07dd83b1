// Package store holds the in-memory optimistic view of a guest's wishlist:
// the ordered item list plus the set of operation keys currently in flight.
//
// The lock guards short critical sections only and is never held across a
// remote call; in-flight coordination happens through the pending-operation
// set, not through blocking.
package store

import (
	"sync"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

// Store is the local state store for one guest session. Items are ordered
// most-recently-added first. No operation leaves two items with the same
// product id.
type Store struct {
	mu      sync.RWMutex
	items   []domain.WishlistItem
	pending map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		pending: make(map[string]struct{}),
	}
}

// Items returns a snapshot copy of the current list.
func (s *Store) Items() []domain.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WishlistItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the current item count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Replace atomically swaps the entire list.
func (s *Store) Replace(items []domain.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]domain.WishlistItem, len(items))
	copy(s.items, items)
}

// Insert places the item at the head of the list. It rejects a second item
// for the same product.
func (s *Store) Insert(item domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.ProductID) >= 0 {
		return apperrors.AlreadyExists("wishlist item", "product_id", item.ProductID)
	}

	s.items = append([]domain.WishlistItem{item}, s.items...)
	return nil
}

// InsertAt restores the item at its original index, used for exact rollback
// of a failed remove. Out-of-range indexes clamp to the nearest end.
func (s *Store) InsertAt(index int, item domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.ProductID) >= 0 {
		return apperrors.AlreadyExists("wishlist item", "product_id", item.ProductID)
	}

	if index < 0 {
		index = 0
	}
	if index > len(s.items) {
		index = len(s.items)
	}

	s.items = append(s.items[:index], append([]domain.WishlistItem{item}, s.items[index:]...)...)
	return nil
}

// Remove deletes the item for the product, returning the removed item and its
// index so a rollback can restore it exactly.
func (s *Store) Remove(productID string) (domain.WishlistItem, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return domain.WishlistItem{}, 0, false
	}

	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return removed, i, true
}

// Rewrite replaces the item currently carrying the given id, preserving its
// list position. This is the provisional-to-canonical identity swap. Returns
// false if no item carries the id anymore.
func (s *Store) Rewrite(id string, item domain.WishlistItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = item
			return true
		}
	}
	return false
}

// Update applies fn to the item for the product in place.
func (s *Store) Update(productID string, fn func(*domain.WishlistItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	fn(&s.items[i])
	return true
}

// Find returns the item for the product, if present.
func (s *Store) Find(productID string) (domain.WishlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(productID)
	if i < 0 {
		return domain.WishlistItem{}, false
	}
	return s.items[i], true
}

// CountForProduct returns how many items reference the product. The dedup
// invariant keeps this at zero or one; the count form mirrors how the queue
// position is derived.
func (s *Store) CountForProduct(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for i := range s.items {
		if s.items[i].ProductID == productID {
			n++
		}
	}
	return n
}

// indexOf returns the index of the item for the product, or -1. Callers hold
// the lock.
func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// --- Pending operation set ---

// MarkPending records an in-flight operation key.
func (s *Store) MarkPending(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = struct{}{}
}

// ClearPending removes an operation key.
func (s *Store) ClearPending(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}

// IsPending reports whether the operation key is in flight.
func (s *Store) IsPending(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[key]
	return ok
}

// PendingCount returns the number of in-flight operations.
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Syncing reports whether any operation is in flight.
func (s *Store) Syncing() bool {
	return s.PendingCount() > 0
}
