package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

func setupTestRedis(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStorage(client, time.Hour), mr
}

func TestStorage_SetGet(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "wishlist:g1", `{"items":[]}`))

	got, err := s.Get(ctx, "wishlist:g1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, got)
}

func TestStorage_Get_NotFound(t *testing.T) {
	s, _ := setupTestRedis(t)

	_, err := s.Get(context.Background(), "wishlist:missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorage_Set_AppliesTTL(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "wishlist:g1", "data"))
	assert.Greater(t, mr.TTL("wishlist:g1"), time.Duration(0))
}

func TestStorage_Expiry(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "wishlist:g1", "data"))
	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, "wishlist:g1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorage_Remove(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "wishlist:g1", "data"))
	require.NoError(t, s.Remove(ctx, "wishlist:g1"))

	_, err := s.Get(ctx, "wishlist:g1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorage_Remove_MissingKeyIsNoop(t *testing.T) {
	s, _ := setupTestRedis(t)
	assert.NoError(t, s.Remove(context.Background(), "wishlist:missing"))
}
