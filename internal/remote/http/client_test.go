package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-inbuator/second-story-wishlist/internal/remote"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
	"github.com/ae-inbuator/second-story-wishlist/pkg/httpclient"
)

func newTestClient(srvURL string) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 0
	return NewClient(srvURL, httpclient.New(cfg))
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/records/wishlists", r.URL.Path)
		assert.Equal(t, "evt-1", r.URL.Query().Get("eventId"))
		assert.Equal(t, "g1", r.URL.Query().Get("guestId"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []remote.Record{
				{ID: "rec-1", EventID: "evt-1", GuestID: "g1", ProductID: "prod-1", Position: 2},
				{ID: "rec-2", EventID: "evt-1", GuestID: "g1", ProductID: "prod-2", Type: "full_look"},
			},
		})
	}))
	defer srv.Close()

	recs, err := newTestClient(srv.URL).List(context.Background(), "evt-1", "g1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "rec-1", recs[0].ID)
	assert.Equal(t, 2, recs[0].Position)
	assert.Equal(t, "full_look", recs[1].Type)
}

func TestClient_Count(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/records/wishlists/count", r.URL.Path)
		assert.Equal(t, "prod-1", r.URL.Query().Get("productId"))
		_, _ = w.Write([]byte(`{"data":{"count":7}}`))
	}))
	defer srv.Close()

	count, err := newTestClient(srv.URL).Count(context.Background(), "evt-1", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestClient_Insert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var rec remote.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "prod-1", rec.ProductID)
		assert.Equal(t, "evt-1", rec.EventID)

		rec.ID = "rec-99"
		rec.AddedAt = time.Now().UTC()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": rec})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Insert(context.Background(), remote.Record{
		EventID:   "evt-1",
		GuestID:   "g1",
		ProductID: "prod-1",
		Position:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-99", got.ID)
	assert.Equal(t, 3, got.Position)
	assert.False(t, got.AddedAt.IsZero())
}

func TestClient_Insert_ConstraintViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ALREADY_EXISTS","message":"duplicate wish"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Insert(context.Background(), remote.Record{ProductID: "prod-1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassValidation, apperrors.Classify(err))
}

func TestClient_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/records/wishlists/rec-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL).Delete(context.Background(), "rec-1"))
}

func TestClient_Delete_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"record gone"}}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Delete(context.Background(), "rec-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_TransportFailureIsNetworkClass(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).List(context.Background(), "evt-1", "g1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassNetwork, apperrors.Classify(err))
}

func TestClient_ResolveActiveEventID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/events/active", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"id":"evt-42"}}`))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL).ResolveActiveEventID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "evt-42", id)
}

func TestClient_ResolveActiveEventID_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveActiveEventID(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveEvent)
	assert.Equal(t, apperrors.ClassValidation, apperrors.Classify(err))
}

func TestClient_ResolveActiveEventID_EmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":""}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveActiveEventID(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoActiveEvent)
}

func TestClient_BreakerOpenIsNetworkClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hcCfg := httpclient.DefaultConfig()
	hcCfg.Timeout = 2 * time.Second
	hcCfg.MaxRetries = 0

	bcCfg := httpclient.DefaultBreakerConfig("record-store-breaker")
	bcCfg.MinRequests = 1
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	breaker := httpclient.NewBreakerClient(httpclient.New(hcCfg), bcCfg, logger)

	c := NewClient(srv.URL, breaker)

	// First call fails on the 500 and trips the breaker.
	_, err := c.Count(context.Background(), "evt-1", "prod-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassUnknown, apperrors.Classify(err))

	// Rejected while open: surfaces as a transport outage, so an
	// optimistic add behind it is retained rather than rolled back.
	_, err = c.Count(context.Background(), "evt-1", "prod-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrCircuitOpen)
	assert.Equal(t, apperrors.ClassNetwork, apperrors.Classify(err))
}
