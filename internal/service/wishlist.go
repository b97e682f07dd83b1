// Package service implements the optimistic wishlist engine: immediate local
// mutation, remote confirmation, and rollback or retention decided by the
// central error classification.
package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ae-inbuator/second-story-wishlist/internal/cache"
	"github.com/ae-inbuator/second-story-wishlist/internal/domain"
	"github.com/ae-inbuator/second-story-wishlist/internal/notify"
	"github.com/ae-inbuator/second-story-wishlist/internal/remote"
	"github.com/ae-inbuator/second-story-wishlist/internal/store"
	apperrors "github.com/ae-inbuator/second-story-wishlist/pkg/errors"
)

// Wishlist is the sync engine for one guest session. Remote round trips are
// the only suspension points; every local mutation is visible to readers
// before the remote call is issued.
type Wishlist struct {
	guestID  string
	store    *store.Store
	cache    *cache.Cache
	remote   remote.Store
	resolver remote.EventResolver
	notifier notify.Notifier
	logger   *slog.Logger

	// The active-event identity partitions records on the store. Resolved
	// lazily once and cached for the session.
	eventMu sync.Mutex
	eventID string
}

// NewWishlist creates an engine for the given guest. An empty guestID means
// an anonymous (pre-check-in) session that resolves purely from cache.
func NewWishlist(
	guestID string,
	c *cache.Cache,
	r remote.Store,
	resolver remote.EventResolver,
	n notify.Notifier,
	logger *slog.Logger,
) *Wishlist {
	return &Wishlist{
		guestID:  guestID,
		store:    store.New(),
		cache:    c,
		remote:   r,
		resolver: resolver,
		notifier: n,
		logger:   logger.With(slog.String("guest_id", guestID)),
	}
}

// GuestID returns the guest this engine belongs to.
func (w *Wishlist) GuestID() string {
	return w.guestID
}

// Items returns the current optimistic view, most-recently-added first.
func (w *Wishlist) Items() []domain.WishlistItem {
	return w.store.Items()
}

// Syncing reports whether any mutation is awaiting remote confirmation.
func (w *Wishlist) Syncing() bool {
	return w.store.Syncing()
}

// IsInWishlist reports membership including not-yet-confirmed optimistic state.
func (w *Wishlist) IsInWishlist(productID string) bool {
	_, ok := w.store.Find(productID)
	return ok
}

// GetPosition returns the queue position for the product, or 0 if absent.
func (w *Wishlist) GetPosition(productID string) int {
	it, ok := w.store.Find(productID)
	if !ok {
		return 0
	}
	return it.Position
}

// Load resolves the authoritative list and replaces local state. Remote
// failures degrade to the cached snapshot and never propagate to the caller.
func (w *Wishlist) Load(ctx context.Context) error {
	if w.guestID == "" {
		items, _ := w.cache.Restore(ctx, w.guestID)
		w.store.Replace(items)
		reconciliationsTotal.WithLabelValues(sourceCache).Inc()
		return nil
	}

	eventID, err := w.resolveEventID(ctx)
	if err == nil {
		var records []remote.Record
		records, err = w.remote.List(ctx, eventID, w.guestID)
		if err == nil {
			w.reconcile(records)
			reconciliationsTotal.WithLabelValues(sourceRemote).Inc()
			w.persistLocal(ctx)
			return nil
		}
	}

	w.logger.WarnContext(ctx, "wishlist load failed, serving offline cache",
		slog.String("error", err.Error()),
	)

	items, syncedAt := w.cache.Restore(ctx, w.guestID)
	w.store.Replace(items)
	reconciliationsTotal.WithLabelValues(sourceCache).Inc()
	w.notifier.LoadedFromCache(ctx, w.guestID)

	w.logger.InfoContext(ctx, "wishlist restored from cache",
		slog.Int("items", len(items)),
		slog.Time("synced_at", syncedAt),
	)
	return nil
}

// SyncWithServer is the user-triggered refresh. The engine never schedules
// this on its own; periodic refresh belongs to the caller.
func (w *Wishlist) SyncWithServer(ctx context.Context) error {
	return w.Load(ctx)
}

// Add marks a product as wished for. The optimistic insert is visible before
// the record-store round trip; the outcome of that round trip decides whether
// the item is confirmed in place, retained as pending-sync, or rolled back.
func (w *Wishlist) Add(ctx context.Context, productID, lookID string, wishType domain.WishType) (domain.WishlistItem, error) {
	if productID == "" {
		return domain.WishlistItem{}, apperrors.InvalidInput("product id is required")
	}

	if _, exists := w.store.Find(productID); exists {
		addsTotal.WithLabelValues(outcomeDuplicate).Inc()
		w.notifier.DuplicateRejected(ctx, w.guestID, productID)
		return domain.WishlistItem{}, apperrors.AlreadyExists("wishlist item", "product_id", productID)
	}

	provisional := domain.WishlistItem{
		ID:        domain.NewProvisionalID(),
		ProductID: productID,
		LookID:    lookID,
		WishType:  domain.NormalizeWishType(string(wishType)),
		Position:  w.store.CountForProduct(productID) + 1,
		AddedAt:   time.Now().UTC(),
	}

	if err := w.store.Insert(provisional); err != nil {
		// Lost the head-of-line race with another add for the same product.
		addsTotal.WithLabelValues(outcomeDuplicate).Inc()
		w.notifier.DuplicateRejected(ctx, w.guestID, productID)
		return domain.WishlistItem{}, err
	}

	pendingKey := domain.AddKey(productID)
	w.store.MarkPending(pendingKey)
	pendingOps.Set(float64(w.store.PendingCount()))
	w.persistLocal(ctx)

	defer func() {
		w.store.ClearPending(pendingKey)
		pendingOps.Set(float64(w.store.PendingCount()))
		w.persistLocal(ctx)
	}()

	confirmed, err := w.confirmAdd(ctx, provisional)
	if err != nil {
		return w.settleFailedAdd(ctx, provisional, err)
	}

	addsTotal.WithLabelValues(outcomeConfirmed).Inc()
	w.notifier.Added(ctx, w.guestID, confirmed)
	w.notifier.QueuePosition(ctx, w.guestID, confirmed.ProductID, confirmed.Position)

	w.logger.InfoContext(ctx, "wish confirmed",
		slog.String("product_id", productID),
		slog.String("record_id", confirmed.ID),
		slog.Int("position", confirmed.Position),
	)
	return confirmed, nil
}

// confirmAdd runs the remote half of an add: resolve the event, derive the
// queue position, insert the canonical record, and reconcile it against
// whatever the local store holds by the time the response arrives.
func (w *Wishlist) confirmAdd(ctx context.Context, provisional domain.WishlistItem) (domain.WishlistItem, error) {
	eventID, err := w.resolveEventID(ctx)
	if err != nil {
		return domain.WishlistItem{}, err
	}

	// Count-then-insert is not atomic against other guests wishing for the
	// same product; the position is an informational rank, not a lock order.
	count, err := w.remote.Count(ctx, eventID, provisional.ProductID)
	if err != nil {
		return domain.WishlistItem{}, err
	}

	rec, err := w.remote.Insert(ctx, remote.Record{
		EventID:   eventID,
		GuestID:   w.guestID,
		ProductID: provisional.ProductID,
		LookID:    provisional.LookID,
		Type:      string(provisional.WishType),
		Position:  count + 1,
	})
	if err != nil {
		return domain.WishlistItem{}, err
	}

	confirmed := itemFromRecord(rec)
	if confirmed.LookID == "" {
		confirmed.LookID = provisional.LookID
	}

	// The item may have been removed or replaced while the call was in
	// flight. The confirmed remote state wins: rewrite in place if the
	// provisional id survives, otherwise re-insert fresh.
	if !w.store.Rewrite(provisional.ID, confirmed) {
		if err := w.store.Insert(confirmed); err != nil {
			w.store.Update(confirmed.ProductID, func(it *domain.WishlistItem) {
				*it = confirmed
			})
		}
	}
	return confirmed, nil
}

// settleFailedAdd applies the central classification policy: retain the
// optimistic item on a transient network failure, roll it back otherwise.
func (w *Wishlist) settleFailedAdd(ctx context.Context, provisional domain.WishlistItem, cause error) (domain.WishlistItem, error) {
	class := apperrors.Classify(cause)

	w.logger.WarnContext(ctx, "wish confirmation failed",
		slog.String("product_id", provisional.ProductID),
		slog.String("class", class.String()),
		slog.String("error", cause.Error()),
	)

	if class == apperrors.ClassNetwork {
		if !w.store.Update(provisional.ProductID, func(it *domain.WishlistItem) {
			it.PendingSync = true
		}) {
			// The wish was withdrawn while the insert was in flight;
			// the remove already settled local state, so there is
			// nothing to retain and no notice to emit.
			addsTotal.WithLabelValues(outcomeRolledBack).Inc()
			return domain.WishlistItem{}, cause
		}
		addsTotal.WithLabelValues(outcomeOffline).Inc()

		retained, _ := w.store.Find(provisional.ProductID)
		w.notifier.AddedOffline(ctx, w.guestID, retained)
		// The add stands locally; it will reach the record store on a
		// later sync.
		return retained, nil
	}

	w.store.Remove(provisional.ProductID)
	addsTotal.WithLabelValues(outcomeRolledBack).Inc()
	w.notifier.AddFailed(ctx, w.guestID, provisional.ProductID)
	return domain.WishlistItem{}, cause
}

// Remove withdraws a wish. The optimistic removal is immediate; a failed
// remote delete restores the captured item at its original slot, since a
// silently kept-on-server item is worse than one visibly reappearing.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	captured, index, ok := w.store.Remove(productID)
	if !ok {
		removesTotal.WithLabelValues(outcomeNoop).Inc()
		return nil
	}

	pendingKey := domain.RemoveKey(productID)
	w.store.MarkPending(pendingKey)
	pendingOps.Set(float64(w.store.PendingCount()))
	w.persistLocal(ctx)

	defer func() {
		w.store.ClearPending(pendingKey)
		pendingOps.Set(float64(w.store.PendingCount()))
		w.persistLocal(ctx)
	}()

	// A provisional item never reached the record store; there is nothing
	// remote to delete.
	if captured.Provisional() {
		removesTotal.WithLabelValues(outcomeConfirmed).Inc()
		return nil
	}

	err := w.remote.Delete(ctx, captured.ID)
	if err != nil && apperrors.Classify(err) == apperrors.ClassValidation &&
		apperrors.HTTPStatus(err) == 404 {
		// Already gone on the server; treat as confirmed.
		err = nil
	}
	if err != nil {
		if insErr := w.store.InsertAt(index, captured); insErr != nil {
			w.logger.ErrorContext(ctx, "remove rollback could not restore item",
				slog.String("product_id", productID),
				slog.String("error", insErr.Error()),
			)
		}
		removesTotal.WithLabelValues(outcomeRolledBack).Inc()
		w.notifier.RemoveFailed(ctx, w.guestID, productID)

		w.logger.WarnContext(ctx, "wish removal failed, restored item",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return err
	}

	removesTotal.WithLabelValues(outcomeConfirmed).Inc()
	w.logger.InfoContext(ctx, "wish removed",
		slog.String("product_id", productID),
		slog.String("record_id", captured.ID),
	)
	return nil
}

// Reset drops the local view and the offline snapshot for this guest. Remote
// records are untouched; the next load rebuilds the view from the record store.
func (w *Wishlist) Reset(ctx context.Context) error {
	w.store.Replace(nil)
	if err := w.cache.Clear(ctx, w.guestID); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "wishlist reset")
	return nil
}

// resolveEventID returns the session's active-event identity, resolving it on
// first use.
func (w *Wishlist) resolveEventID(ctx context.Context) (string, error) {
	w.eventMu.Lock()
	defer w.eventMu.Unlock()

	if w.eventID != "" {
		return w.eventID, nil
	}

	id, err := w.resolver.ResolveActiveEventID(ctx)
	if err != nil {
		return "", err
	}
	w.eventID = id
	return id, nil
}

// reconcile replaces local state with the authoritative list while keeping
// edits that are still mid-flight: provisional adds survive, and records
// whose removal is pending stay out.
func (w *Wishlist) reconcile(records []remote.Record) {
	items := make([]domain.WishlistItem, 0, len(records))
	remoteProducts := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if w.store.IsPending(domain.RemoveKey(rec.ProductID)) {
			continue
		}
		if _, dup := remoteProducts[rec.ProductID]; dup {
			continue
		}
		remoteProducts[rec.ProductID] = struct{}{}
		items = append(items, itemFromRecord(rec))
	}

	// Most-recently-added first.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	// Provisional items with an add still in flight survive the load; the
	// add's own resolution will settle them.
	var kept []domain.WishlistItem
	for _, it := range w.store.Items() {
		if !it.Provisional() {
			continue
		}
		if _, onServer := remoteProducts[it.ProductID]; onServer {
			continue
		}
		if w.store.IsPending(domain.AddKey(it.ProductID)) || it.PendingSync {
			kept = append(kept, it)
		}
	}

	w.store.Replace(append(kept, items...))
}

// persistLocal re-persists the current snapshot. Cache failures are logged
// and swallowed; they never fail the mutation that triggered them.
func (w *Wishlist) persistLocal(ctx context.Context) {
	if err := w.cache.Persist(ctx, w.guestID, w.store.Items()); err != nil {
		w.logger.WarnContext(ctx, "wishlist cache persist failed",
			slog.String("error", err.Error()),
		)
	}
}

// itemFromRecord normalizes a record-store row into the local item shape.
// Absent wish types default to individual, absent positions to 1.
func itemFromRecord(rec remote.Record) domain.WishlistItem {
	position := rec.Position
	if position <= 0 {
		position = 1
	}

	var product *domain.ProductSnapshot
	if rec.Product != nil {
		product = &domain.ProductSnapshot{
			Name:     rec.Product.Name,
			Designer: rec.Product.Designer,
			ImageURL: rec.Product.ImageURL,
		}
	}

	return domain.WishlistItem{
		ID:        rec.ID,
		ProductID: rec.ProductID,
		LookID:    rec.LookID,
		WishType:  domain.NormalizeWishType(rec.Type),
		Position:  position,
		AddedAt:   rec.AddedAt,
		Product:   product,
	}
}
