package notify

import (
	"context"
	"log/slog"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	pkgkafka "github.com/ae-inbuator/second-story-wishlist/pkg/kafka"
	"github.com/ae-inbuator/second-story-wishlist/pkg/logger"
)

// topicPrefix is prepended to the notice kind to form the Kafka topic.
const topicPrefix = "secondstory.wishlist."

// KafkaNotifier publishes semantic wishlist outcomes to Kafka. Publish
// failures are logged and swallowed: notices never fail the operation.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewKafkaNotifier creates a Kafka-backed notifier.
func NewKafkaNotifier(producer *pkgkafka.Producer, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   logger,
	}
}

func (n *KafkaNotifier) publish(ctx context.Context, kind, guestID string, payload NoticePayload) {
	notice := NewNotice(kind, guestID, logger.CorrelationIDFromContext(ctx), payload)
	data, err := notice.Marshal()
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to build wishlist notice",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return
	}

	msg := pkgkafka.Message{
		Topic: topicPrefix + kind,
		Key:   guestID,
		Value: data,
		Headers: map[string]string{
			"kind":   kind,
			"source": SourceWishlistService,
		},
	}
	if err := n.producer.Publish(ctx, msg); err != nil {
		n.logger.WarnContext(ctx, "failed to publish wishlist notice",
			slog.String("kind", kind),
			slog.String("guest_id", guestID),
			slog.String("error", err.Error()),
		)
	}
}

func (n *KafkaNotifier) Added(ctx context.Context, guestID string, item domain.WishlistItem) {
	n.publish(ctx, KindAdded, guestID, NoticePayload{
		ProductID: item.ProductID,
		LookID:    item.LookID,
		WishType:  string(item.WishType),
		Position:  item.Position,
	})
}

func (n *KafkaNotifier) AddedOffline(ctx context.Context, guestID string, item domain.WishlistItem) {
	n.publish(ctx, KindAddedOffline, guestID, NoticePayload{
		ProductID: item.ProductID,
		LookID:    item.LookID,
		WishType:  string(item.WishType),
	})
}

func (n *KafkaNotifier) AddFailed(ctx context.Context, guestID, productID string) {
	n.publish(ctx, KindAddFailed, guestID, NoticePayload{ProductID: productID})
}

func (n *KafkaNotifier) DuplicateRejected(ctx context.Context, guestID, productID string) {
	n.publish(ctx, KindDuplicateRejected, guestID, NoticePayload{ProductID: productID})
}

func (n *KafkaNotifier) RemoveFailed(ctx context.Context, guestID, productID string) {
	n.publish(ctx, KindRemoveFailed, guestID, NoticePayload{ProductID: productID})
}

func (n *KafkaNotifier) QueuePosition(ctx context.Context, guestID, productID string, position int) {
	n.publish(ctx, KindQueuePosition, guestID, NoticePayload{
		ProductID: productID,
		Position:  position,
	})
}

func (n *KafkaNotifier) LoadedFromCache(ctx context.Context, guestID string) {
	n.publish(ctx, KindLoadedFromCache, guestID, NoticePayload{})
}
