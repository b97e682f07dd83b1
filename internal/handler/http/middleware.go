package http

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// guestIDKey is the context key for the checked-in guest ID.
const guestIDKey contextKey = "guest_id"

// GuestIDFromHeader is middleware that reads the X-Guest-ID header (set by the
// event check-in flow) and stores it in the request context. A missing header
// is allowed: read endpoints serve an anonymous, cache-only view, and mutation
// handlers reject the request themselves.
func GuestIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gid := r.Header.Get("X-Guest-ID")
		ctx := context.WithValue(r.Context(), guestIDKey, gid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guestIDFromContext extracts the guest ID from the request context. Returns
// the guest ID and true if present, or empty string and false otherwise.
func guestIDFromContext(ctx context.Context) (string, bool) {
	gid, ok := ctx.Value(guestIDKey).(string)
	return gid, ok && gid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
