package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	"github.com/ae-inbuator/second-story-wishlist/internal/service"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
	"github.com/ae-inbuator/second-story-wishlist/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	registry *service.Registry
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(registry *service.Registry, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		registry: registry,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for wishing for a product.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	LookID    string `json:"look_id"`
	WishType  string `json:"wish_type" validate:"omitempty,oneof=individual full_look"`
}

// --- Response DTOs ---

// WishlistResponse is the JSON shape of the guest's current optimistic view.
type WishlistResponse struct {
	Items   []domain.WishlistItem `json:"items"`
	Count   int                   `json:"count"`
	Syncing bool                  `json:"syncing"`
}

// ItemStatusResponse answers a membership probe for one product.
type ItemStatusResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
	Position   int    `json:"position,omitempty"`
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlist. It refreshes from the record store
// when possible and degrades to the offline snapshot otherwise; either way the
// response carries the current optimistic view.
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	guestID, _ := guestIDFromContext(r.Context())

	engine := h.registry.Get(guestID)
	if err := engine.Load(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: h.view(engine)})
}

// AddItem handles POST /api/v1/wishlist/items.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "X-Guest-ID header is required"},
		})
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	engine := h.registry.Get(guestID)
	item, err := engine.Add(r.Context(), req.ProductID, req.LookID, domain.NormalizeWishType(req.WishType))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if item.PendingSync {
		// Accepted locally, confirmation deferred to a later sync.
		status = http.StatusAccepted
	}
	writeJSON(w, status, response{Data: item})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "X-Guest-ID header is required"},
		})
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	engine := h.registry.Get(guestID)
	if err := engine.Remove(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "removed"}})
}

// ClearWishlist handles DELETE /api/v1/wishlist. It drops the guest's local
// view and offline snapshot; server records are left alone.
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "X-Guest-ID header is required"},
		})
		return
	}

	engine := h.registry.Get(guestID)
	if err := engine.Reset(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "cleared"}})
}

// GetItemStatus handles GET /api/v1/wishlist/items/{productId}.
func (h *WishlistHandler) GetItemStatus(w http.ResponseWriter, r *http.Request) {
	guestID, _ := guestIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	engine := h.registry.Get(guestID)
	writeJSON(w, http.StatusOK, response{Data: ItemStatusResponse{
		ProductID:  productID,
		InWishlist: engine.IsInWishlist(productID),
		Position:   engine.GetPosition(productID),
	}})
}

// Sync handles POST /api/v1/wishlist/sync, the user-triggered refresh.
func (h *WishlistHandler) Sync(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "X-Guest-ID header is required"},
		})
		return
	}

	engine := h.registry.Get(guestID)
	if err := engine.SyncWithServer(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: h.view(engine)})
}

// --- Helpers ---

func (h *WishlistHandler) view(engine *service.Wishlist) WishlistResponse {
	items := engine.Items()
	return WishlistResponse{
		Items:   items,
		Count:   len(items),
		Syncing: engine.Syncing(),
	}
}

func (h *WishlistHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	if errors.Is(err, apperrors.ErrNotFound) {
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	} else if errors.Is(err, apperrors.ErrInvalidInput) {
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func (h *WishlistHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
