package service

import (
	"log/slog"
	"sync"

	"github.com/ae-inbuator/second-story-wishlist/internal/cache"
	"github.com/ae-inbuator/second-story-wishlist/internal/notify"
	"github.com/ae-inbuator/second-story-wishlist/internal/remote"
)

// Registry hands out one engine per guest session. Engines live for the
// process lifetime; their durable state is in the cache.
type Registry struct {
	cache    *cache.Cache
	remote   remote.Store
	resolver remote.EventResolver
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	engines map[string]*Wishlist
}

// NewRegistry creates a registry sharing the given collaborators across
// engines.
func NewRegistry(
	c *cache.Cache,
	r remote.Store,
	resolver remote.EventResolver,
	n notify.Notifier,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		cache:    c,
		remote:   r,
		resolver: resolver,
		notifier: n,
		logger:   logger,
		engines:  make(map[string]*Wishlist),
	}
}

// Get returns the engine for the guest, creating it on first use.
func (r *Registry) Get(guestID string) *Wishlist {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.engines[guestID]; ok {
		return w
	}

	w := NewWishlist(guestID, r.cache, r.remote, r.resolver, r.notifier, r.logger)
	r.engines[guestID] = w
	return w
}
