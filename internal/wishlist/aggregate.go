package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/notify"
	"github.com/example/storefront-client/internal/session"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Entry is the client-side projection of one saved product.
type Entry struct {
	ProductID     int
	EntryID       int // remote wishlist entry identifier
	Name          string
	Price         float64
	OriginalPrice float64
	Image         string
	Stock         int
	Discount      float64
	Rating        float64
	ReviewCount   int
	Brand         string
	Category      string
}

// RemoteWishlist is the backend wishlist resource. No bulk-clear endpoint
// exists; Clear iterates per-entry removals.
type RemoteWishlist interface {
	Get(ctx context.Context) ([]api.WishlistItem, error)
	Add(ctx context.Context, productID int) (*api.WishlistItem, error)
	Remove(ctx context.Context, entryID int) error
}

// ClearFailure records one entry that could not be removed during Clear.
type ClearFailure struct {
	ProductID int
	Err       error
}

// ClearResult accounts for a batch clear: the sequence has no rollback, so a
// partial failure leaves the server-side wishlist as a strict subset of the
// pre-clear state.
type ClearResult struct {
	Removed  int
	Failures []ClearFailure
}

// Aggregate owns the wishlist snapshot with the same synchronization
// discipline as the cart: the authoritative copy lives server-side and every
// mutation triggers a full refetch.
type Aggregate struct {
	mu          sync.RWMutex
	entries     []Entry
	initialized bool
	loading     bool

	remote   RemoteWishlist
	session  *session.Session
	notifier notify.Notifier
	logger   *zap.Logger
}

// New creates the aggregate and subscribes it to session transitions.
func New(remote RemoteWishlist, sess *session.Session, notifier notify.Notifier, logger *zap.Logger) *Aggregate {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregate{
		remote:   remote,
		session:  sess,
		notifier: notifier,
		logger:   logger,
	}
	sess.Subscribe(func(e session.Event) {
		switch e {
		case session.EventLogin:
			if err := a.Fetch(context.Background()); err != nil {
				a.logger.Warn("wishlist resync after login failed", zap.Error(err))
			}
		case session.EventLogout:
			a.reset()
		}
	})
	return a
}

// Fetch replaces the snapshot with the server-confirmed wishlist.
func (a *Aggregate) Fetch(ctx context.Context) error {
	if !a.session.Authenticated() {
		a.reset()
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	items, err := a.remote.Get(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			a.reset()
			return nil
		}
		a.logger.Warn("failed to fetch wishlist", zap.Error(err))
		return err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, fromRemote(item))
	}

	a.mu.Lock()
	a.entries = entries
	a.initialized = true
	a.mu.Unlock()
	return nil
}

// Add saves a product. A product already present yields an info notification
// and no remote call.
func (a *Aggregate) Add(ctx context.Context, productID int) error {
	if !a.session.Authenticated() {
		a.notifier.Show("Please login to use your wishlist", notify.SeverityError)
		return ErrNotAuthenticated
	}
	if a.IsInWishlist(productID) {
		a.notifier.Show("Already in wishlist", notify.SeverityInfo)
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if _, err := a.remote.Add(ctx, productID); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to add to wishlist"), notify.SeverityError)
		return err
	}
	if err := a.Fetch(ctx); err != nil {
		return err
	}
	a.notifier.Show("Added to wishlist!", notify.SeveritySuccess)
	return nil
}

// Remove drops a product. Absent products are a silent no-op.
func (a *Aggregate) Remove(ctx context.Context, productID int) error {
	entryID, ok := a.entryID(productID)
	if !ok {
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.remote.Remove(ctx, entryID); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to remove from wishlist"), notify.SeverityError)
		return err
	}
	if err := a.Fetch(ctx); err != nil {
		return err
	}
	a.notifier.Show("Removed from wishlist", notify.SeveritySuccess)
	return nil
}

// Toggle adds or removes a product based on local membership.
func (a *Aggregate) Toggle(ctx context.Context, productID int) error {
	if a.IsInWishlist(productID) {
		return a.Remove(ctx, productID)
	}
	return a.Add(ctx, productID)
}

// Clear removes every entry with one remote call per entry and reports the
// outcome explicitly. Failed removals are skipped, not retried; the snapshot
// is refetched afterwards so it reflects whatever actually survived.
func (a *Aggregate) Clear(ctx context.Context) ClearResult {
	if !a.session.Authenticated() {
		a.reset()
		return ClearResult{}
	}

	a.setLoading(true)
	defer a.setLoading(false)

	entries := a.Entries()
	var result ClearResult
	for _, entry := range entries {
		if err := a.remote.Remove(ctx, entry.EntryID); err != nil {
			a.logger.Warn("failed to remove wishlist entry",
				zap.Int("product_id", entry.ProductID), zap.Error(err))
			result.Failures = append(result.Failures, ClearFailure{ProductID: entry.ProductID, Err: err})
			continue
		}
		result.Removed++
	}

	if err := a.Fetch(ctx); err != nil {
		a.logger.Warn("failed to refetch wishlist after clear", zap.Error(err))
	}

	if len(result.Failures) == 0 {
		a.notifier.Show("Wishlist cleared", notify.SeveritySuccess)
	} else {
		a.notifier.Show(
			fmt.Sprintf("Removed %d of %d items from wishlist", result.Removed, len(entries)),
			notify.SeverityWarning,
		)
	}
	return result
}

// IsInWishlist tests membership against the local snapshot.
func (a *Aggregate) IsInWishlist(productID int) bool {
	_, ok := a.entryID(productID)
	return ok
}

// Entries returns a copy of the current snapshot.
func (a *Aggregate) Entries() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Count is the number of saved products.
func (a *Aggregate) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Loading reports whether a remote operation is in flight.
func (a *Aggregate) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *Aggregate) entryID(productID int) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, entry := range a.entries {
		if entry.ProductID == productID {
			return entry.EntryID, true
		}
	}
	return 0, false
}

func (a *Aggregate) reset() {
	a.mu.Lock()
	a.entries = nil
	a.initialized = true
	a.mu.Unlock()
}

func (a *Aggregate) setLoading(v bool) {
	a.mu.Lock()
	a.loading = v
	a.mu.Unlock()
}

func fromRemote(item api.WishlistItem) Entry {
	return Entry{
		ProductID:     item.ProductID,
		EntryID:       item.ID,
		Name:          item.Product.Name,
		Price:         item.Product.Price,
		OriginalPrice: item.Product.OriginalPrice,
		Image:         item.Product.Image,
		Stock:         item.Product.Stock,
		Discount:      item.Product.Discount,
		Rating:        item.Product.Rating,
		ReviewCount:   item.Product.ReviewCount,
		Brand:         item.Product.Brand,
		Category:      item.Product.Category,
	}
}
