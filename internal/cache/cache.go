// Package cache persists the optimistic wishlist snapshot to durable local
// storage so the engine can start, and keep working, without the record store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

const keyPrefix = "wishlist:"

// Storage is the plain key-value capability the cache writes through.
// Get returns apperrors.ErrNotFound when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// envelope is the durable snapshot format.
type envelope struct {
	Items    []domain.WishlistItem `json:"items"`
	SyncedAt time.Time             `json:"synced_at"`
}

// Cache serializes wishlist snapshots into a Storage.
type Cache struct {
	storage Storage
	logger  *slog.Logger
}

// New creates a cache over the given storage.
func New(storage Storage, logger *slog.Logger) *Cache {
	return &Cache{
		storage: storage,
		logger:  logger,
	}
}

// Persist writes the snapshot plus a last-synced-at marker. A persistence
// failure must never fail the mutation that triggered it; callers log the
// returned error and continue.
func (c *Cache) Persist(ctx context.Context, guestID string, items []domain.WishlistItem) error {
	if items == nil {
		items = []domain.WishlistItem{}
	}

	data, err := json.Marshal(envelope{
		Items:    items,
		SyncedAt: time.Now().UTC(),
	})
	if err != nil {
		return apperrors.Wrap(err, "marshal wishlist snapshot")
	}

	if err := c.storage.Set(ctx, keyPrefix+guestID, string(data)); err != nil {
		return apperrors.Wrap(err, "persist wishlist snapshot")
	}
	return nil
}

// Restore returns the last snapshot and its sync marker. A missing or corrupt
// snapshot degrades to an empty list, never an error.
func (c *Cache) Restore(ctx context.Context, guestID string) ([]domain.WishlistItem, time.Time) {
	data, err := c.storage.Get(ctx, keyPrefix+guestID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.logger.WarnContext(ctx, "wishlist cache read failed",
				slog.String("guest_id", guestID),
				slog.String("error", err.Error()),
			)
		}
		return []domain.WishlistItem{}, time.Time{}
	}

	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		c.logger.WarnContext(ctx, "wishlist cache snapshot corrupt, discarding",
			slog.String("guest_id", guestID),
			slog.String("error", err.Error()),
		)
		return []domain.WishlistItem{}, time.Time{}
	}

	if env.Items == nil {
		env.Items = []domain.WishlistItem{}
	}
	return env.Items, env.SyncedAt
}

// Clear drops the snapshot for the guest.
func (c *Cache) Clear(ctx context.Context, guestID string) error {
	if err := c.storage.Remove(ctx, keyPrefix+guestID); err != nil {
		return apperrors.Wrap(err, "clear wishlist snapshot")
	}
	return nil
}
