// Package notify carries the semantic outcomes the engine emits. Presentation
// (toasts, alerts) is the consumer's concern; delivery is fire-and-forget and
// never fails the operation that produced the notice.
package notify

import (
	"context"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
)

// Notifier receives semantic wishlist outcomes.
type Notifier interface {
	// Added reports a confirmed add.
	Added(ctx context.Context, guestID string, item domain.WishlistItem)
	// AddedOffline reports an add retained locally after a transient
	// network failure; it will sync later.
	AddedOffline(ctx context.Context, guestID string, item domain.WishlistItem)
	// AddFailed reports an add rolled back after a non-retryable failure.
	AddFailed(ctx context.Context, guestID, productID string)
	// DuplicateRejected reports an add refused because the product is
	// already wished for.
	DuplicateRejected(ctx context.Context, guestID, productID string)
	// RemoveFailed reports a remove rolled back after a remote failure.
	RemoveFailed(ctx context.Context, guestID, productID string)
	// QueuePosition reports the server-assigned rank for a confirmed wish.
	QueuePosition(ctx context.Context, guestID, productID string, position int)
	// LoadedFromCache reports that the list was served from the offline
	// snapshot because the record store was unreachable.
	LoadedFromCache(ctx context.Context, guestID string)
}

// Noop discards all notices. Used when no broker is configured.
type Noop struct{}

func (Noop) Added(context.Context, string, domain.WishlistItem)        {}
func (Noop) AddedOffline(context.Context, string, domain.WishlistItem) {}
func (Noop) AddFailed(context.Context, string, string)                 {}
func (Noop) DuplicateRejected(context.Context, string, string)         {}
func (Noop) RemoveFailed(context.Context, string, string)              {}
func (Noop) QueuePosition(context.Context, string, string, int)        {}
func (Noop) LoadedFromCache(context.Context, string)                   {}
