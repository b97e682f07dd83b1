package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WishType distinguishes a wish for a single piece from one made as part of a
// bulk "add the whole look" action.
type WishType string

const (
	WishTypeIndividual WishType = "individual"
	WishTypeFullLook   WishType = "full_look"
)

// NormalizeWishType maps unknown or absent values to WishTypeIndividual.
func NormalizeWishType(s string) WishType {
	if WishType(s) == WishTypeFullLook {
		return WishTypeFullLook
	}
	return WishTypeIndividual
}

// provisionalIDPrefix marks locally minted identities that have not yet been
// confirmed by the record store.
const provisionalIDPrefix = "local-"

// NewProvisionalID mints a placeholder identity for an optimistic item. It is
// replaced in place by the canonical server-assigned id on confirmation.
func NewProvisionalID() string {
	return provisionalIDPrefix + uuid.New().String()
}

// IsProvisionalID reports whether the id is a locally minted placeholder.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, provisionalIDPrefix)
}

// ProductSnapshot is a denormalized copy of the catalog product for display.
// It is populated from the record store on load and absent on items added
// optimistically.
type ProductSnapshot struct {
	Name     string `json:"name"`
	Designer string `json:"designer,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// WishlistItem represents one guest's interest in one catalog product.
//
// At most one item per product id exists in a guest's list, and at most one
// item per id exists in the local state at any time.
type WishlistItem struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	LookID    string           `json:"look_id,omitempty"`
	WishType  WishType         `json:"wish_type"`
	Position  int              `json:"position"`
	AddedAt   time.Time        `json:"added_at"`
	Product   *ProductSnapshot `json:"product,omitempty"`

	// PendingSync marks an optimistic item retained after a transient
	// network failure; it exists locally but not yet on the record store.
	PendingSync bool `json:"pending_sync,omitempty"`
}

// Provisional reports whether the item still carries a locally minted id.
func (it *WishlistItem) Provisional() bool {
	return IsProvisionalID(it.ID)
}

// Pending-operation keys. The set of in-flight keys is the sole coordination
// device between the mutation pipeline and background reconciliation.

// AddKey returns the pending-operation key for an in-flight add.
func AddKey(productID string) string {
	return "add:" + productID
}

// RemoveKey returns the pending-operation key for an in-flight remove.
func RemoveKey(productID string) string {
	return "remove:" + productID
}
