package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome kinds carried in the notice envelope. The Kafka topic for a kind is
// topicPrefix + kind.
const (
	KindAdded             = "added"
	KindAddedOffline      = "added_offline"
	KindAddFailed         = "add_failed"
	KindDuplicateRejected = "duplicate_rejected"
	KindRemoveFailed      = "remove_failed"
	KindQueuePosition     = "queue_position"
	KindLoadedFromCache   = "loaded_from_cache"
)

// SourceWishlistService identifies this service as the notice emitter.
const SourceWishlistService = "wishlist-service"

// NoticePayload carries the item details for a single-item outcome. Kinds
// that concern the whole list (loaded_from_cache) leave the product fields
// empty.
type NoticePayload struct {
	ProductID string `json:"product_id,omitempty"`
	LookID    string `json:"look_id,omitempty"`
	WishType  string `json:"wish_type,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Notice is the JSON envelope published for every wishlist outcome.
type Notice struct {
	NoticeID      string        `json:"notice_id"`
	Kind          string        `json:"kind"`
	GuestID       string        `json:"guest_id"`
	Source        string        `json:"source"`
	EmittedAt     time.Time     `json:"emitted_at"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Payload       NoticePayload `json:"payload"`
}

// NewNotice builds an envelope for the given outcome kind.
func NewNotice(kind, guestID, correlationID string, payload NoticePayload) Notice {
	return Notice{
		NoticeID:      uuid.New().String(),
		Kind:          kind,
		GuestID:       guestID,
		Source:        SourceWishlistService,
		EmittedAt:     time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

// Marshal serializes the notice to JSON.
func (n Notice) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

// UnmarshalNotice deserializes a notice from JSON, for consumers.
func UnmarshalNotice(data []byte) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return Notice{}, err
	}
	return n, nil
}
