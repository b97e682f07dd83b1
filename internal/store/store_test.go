package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

func item(id, productID string) domain.WishlistItem {
	return domain.WishlistItem{
		ID:        id,
		ProductID: productID,
		WishType:  domain.WishTypeIndividual,
		Position:  1,
		AddedAt:   time.Now().UTC(),
	}
}

func TestInsert_HeadOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))
	require.NoError(t, s.Insert(item("b", "prod-b")))

	items := s.Items()
	require.Len(t, items, 2)
	// Most recently added first.
	assert.Equal(t, "prod-b", items[0].ProductID)
	assert.Equal(t, "prod-a", items[1].ProductID)
}

func TestInsert_RejectsDuplicateProduct(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))

	err := s.Insert(item("b", "prod-a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Equal(t, 1, s.Len())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))

	items := s.Items()
	items[0].ProductID = "mutated"

	got, ok := s.Find("prod-a")
	require.True(t, ok)
	assert.Equal(t, "prod-a", got.ProductID)
}

func TestReplace(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))

	s.Replace([]domain.WishlistItem{item("x", "prod-x"), item("y", "prod-y")})

	assert.Equal(t, 2, s.Len())
	_, ok := s.Find("prod-a")
	assert.False(t, ok)
	_, ok = s.Find("prod-x")
	assert.True(t, ok)
}

func TestRemove_ReturnsItemAndIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))
	require.NoError(t, s.Insert(item("b", "prod-b")))
	require.NoError(t, s.Insert(item("c", "prod-c")))

	removed, idx, ok := s.Remove("prod-b")
	require.True(t, ok)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, s.Len())
}

func TestRemove_Missing(t *testing.T) {
	s := New()
	_, _, ok := s.Remove("prod-zzz")
	assert.False(t, ok)
}

func TestInsertAt_RestoresExactPosition(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))
	require.NoError(t, s.Insert(item("b", "prod-b")))
	require.NoError(t, s.Insert(item("c", "prod-c")))

	removed, idx, ok := s.Remove("prod-b")
	require.True(t, ok)
	require.NoError(t, s.InsertAt(idx, removed))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "prod-c", items[0].ProductID)
	assert.Equal(t, "prod-b", items[1].ProductID)
	assert.Equal(t, "prod-a", items[2].ProductID)
}

func TestInsertAt_ClampsIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertAt(99, item("a", "prod-a")))
	require.NoError(t, s.InsertAt(-5, item("b", "prod-b")))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "prod-b", items[0].ProductID)
}

func TestInsertAt_RejectsDuplicateProduct(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))

	err := s.InsertAt(0, item("b", "prod-a"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestRewrite_SwapsIdentityInPlace(t *testing.T) {
	s := New()
	provisional := item(domain.NewProvisionalID(), "prod-a")
	require.NoError(t, s.Insert(provisional))
	require.NoError(t, s.Insert(item("b", "prod-b")))

	canonical := provisional
	canonical.ID = "rec-77"
	canonical.Position = 3

	ok := s.Rewrite(provisional.ID, canonical)
	require.True(t, ok)

	items := s.Items()
	// prod-a stays at its original slot (tail).
	assert.Equal(t, "rec-77", items[1].ID)
	assert.Equal(t, 3, items[1].Position)
	assert.False(t, items[1].Provisional())
}

func TestRewrite_GoneItem(t *testing.T) {
	s := New()
	ok := s.Rewrite("local-gone", item("rec-1", "prod-a"))
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	s := New()
	require.NoError(t, s.Insert(item("a", "prod-a")))

	ok := s.Update("prod-a", func(it *domain.WishlistItem) {
		it.PendingSync = true
	})
	require.True(t, ok)

	got, _ := s.Find("prod-a")
	assert.True(t, got.PendingSync)

	assert.False(t, s.Update("prod-zzz", func(*domain.WishlistItem) {}))
}

func TestCountForProduct(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.CountForProduct("prod-a"))
	require.NoError(t, s.Insert(item("a", "prod-a")))
	assert.Equal(t, 1, s.CountForProduct("prod-a"))
}

func TestPendingSet(t *testing.T) {
	s := New()
	assert.False(t, s.Syncing())

	s.MarkPending(domain.AddKey("prod-a"))
	s.MarkPending(domain.RemoveKey("prod-b"))

	assert.True(t, s.IsPending(domain.AddKey("prod-a")))
	assert.True(t, s.Syncing())
	assert.Equal(t, 2, s.PendingCount())

	s.ClearPending(domain.AddKey("prod-a"))
	assert.False(t, s.IsPending(domain.AddKey("prod-a")))
	assert.True(t, s.IsPending(domain.RemoveKey("prod-b")))

	s.ClearPending(domain.RemoveKey("prod-b"))
	assert.False(t, s.Syncing())
}
