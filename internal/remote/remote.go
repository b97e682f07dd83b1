// Package remote defines the contracts for the authoritative record store and
// the active-event resolver. The engine never talks HTTP directly; it sees
// only these interfaces.
package remote

import (
	"context"
	"time"
)

// ProductRecord is the denormalized catalog snapshot embedded in a record.
type ProductRecord struct {
	Name     string `json:"name"`
	Designer string `json:"designer,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Record is the wire shape of one wishlist record in the record store. Field
// names follow the store's conventions, not the local domain's.
type Record struct {
	ID        string         `json:"id,omitempty"`
	EventID   string         `json:"eventId"`
	GuestID   string         `json:"guestId"`
	ProductID string         `json:"productId"`
	LookID    string         `json:"lookId,omitempty"`
	Type      string         `json:"type,omitempty"`
	Position  int            `json:"position,omitempty"`
	AddedAt   time.Time      `json:"addedAt,omitempty"`
	Product   *ProductRecord `json:"product,omitempty"`
}

// Store is the authoritative wishlist record store.
//
// Failure modes surface as pkg/errors values: constraint rejections map to
// validation-class errors, transport failures to network-class errors.
// Delete returns apperrors.ErrNotFound when the record is already gone.
type Store interface {
	// List returns all records for the guest within the event.
	List(ctx context.Context, eventID, guestID string) ([]Record, error)

	// Count returns how many records exist for the product within the
	// event, across all guests. The queue position of a new request is
	// count + 1. Count-then-insert is not atomic against concurrent
	// inserts; the position is an informational ranking, not a lock order.
	Count(ctx context.Context, eventID, productID string) (int, error)

	// Insert creates a record and returns it with the server-assigned id,
	// position, and timestamp.
	Insert(ctx context.Context, rec Record) (Record, error)

	// Delete removes a record by its canonical id.
	Delete(ctx context.Context, id string) error
}

// EventResolver resolves the platform's active-event identity, by which the
// record store partitions records. No active event yields
// apperrors.ErrNoActiveEvent.
type EventResolver interface {
	ResolveActiveEventID(ctx context.Context) (string, error)
}
