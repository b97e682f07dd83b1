package notify

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	pkgkafka "github.com/ae-inbuator/second-story-wishlist/pkg/kafka"
)

var (
	_ Notifier = Noop{}
	_ Notifier = (*KafkaNotifier)(nil)
)

func TestNoop_AllMethodsSafe(t *testing.T) {
	var n Noop
	ctx := context.Background()
	item := domain.WishlistItem{ProductID: "prod-1"}

	n.Added(ctx, "g1", item)
	n.AddedOffline(ctx, "g1", item)
	n.AddFailed(ctx, "g1", "prod-1")
	n.DuplicateRejected(ctx, "g1", "prod-1")
	n.RemoveFailed(ctx, "g1", "prod-1")
	n.QueuePosition(ctx, "g1", "prod-1", 3)
	n.LoadedFromCache(ctx, "g1")
}

func TestNewNotice(t *testing.T) {
	n := NewNotice(KindAdded, "g1", "corr-1", NoticePayload{
		ProductID: "prod-1",
		LookID:    "look-1",
		WishType:  "purchase",
		Position:  2,
	})

	assert.NotEmpty(t, n.NoticeID)
	assert.Equal(t, KindAdded, n.Kind)
	assert.Equal(t, "g1", n.GuestID)
	assert.Equal(t, SourceWishlistService, n.Source)
	assert.Equal(t, "corr-1", n.CorrelationID)
	assert.False(t, n.EmittedAt.IsZero())
	assert.Equal(t, "prod-1", n.Payload.ProductID)
	assert.Equal(t, 2, n.Payload.Position)
}

func TestNotice_MarshalRoundTrip(t *testing.T) {
	n := NewNotice(KindQueuePosition, "g1", "", NoticePayload{ProductID: "prod-1", Position: 4})

	raw, err := n.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correlation_id")

	got, err := UnmarshalNotice(raw)
	require.NoError(t, err)
	assert.Equal(t, n.NoticeID, got.NoticeID)
	assert.Equal(t, KindQueuePosition, got.Kind)
	assert.Equal(t, 4, got.Payload.Position)
}

func TestUnmarshalNotice_Invalid(t *testing.T) {
	_, err := UnmarshalNotice([]byte("{{nope"))
	require.Error(t, err)
}

func TestKafkaNotifier_PublishFailureIsSwallowed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	// No broker is listening; publishes fail and must not panic or block
	// beyond the writer's own handling.
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:1"})
	cfg.Async = true
	producer := pkgkafka.NewProducer(cfg, logger)
	t.Cleanup(func() { _ = producer.Close() })

	n := NewKafkaNotifier(producer, logger)
	n.AddFailed(context.Background(), "g1", "prod-1")
}
