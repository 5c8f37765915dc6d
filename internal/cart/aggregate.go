package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/notify"
	"github.com/example/storefront-client/internal/session"
)

const (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	// Strictly above: a cart at exactly the threshold still pays shipping.
	FreeShippingThreshold = 5000.0
	// FlatShippingCost applies below the threshold.
	FlatShippingCost = 60.0
)

var ErrNotAuthenticated = errors.New("not authenticated")

// LineItem is the client-side projection of one confirmed cart line.
type LineItem struct {
	ProductID     int
	LineID        int // remote cart line identifier
	Name          string
	UnitPrice     float64
	OriginalPrice float64
	Image         string
	Stock         int
	Quantity      int
	Discount      float64
}

// RemoteCart is the backend cart resource consumed by the aggregate.
type RemoteCart interface {
	Get(ctx context.Context) (*api.Cart, error)
	Add(ctx context.Context, productID, quantity int) (*api.CartLine, error)
	Update(ctx context.Context, lineID, quantity int) (*api.CartLine, error)
	Remove(ctx context.Context, lineID int) error
	Clear(ctx context.Context) error
}

// Aggregate owns the cart snapshot. The snapshot always mirrors server state:
// every mutation is followed by a full refetch before it is considered
// complete, and local state is never trusted as final. Overlapping mutations
// are not fenced against each other; the last refetch to land wins.
type Aggregate struct {
	mu          sync.RWMutex
	items       []LineItem
	initialized bool
	loading     bool

	remote   RemoteCart
	session  *session.Session
	notifier notify.Notifier
	logger   *zap.Logger
}

// New creates the aggregate and subscribes it to session transitions:
// login triggers a fetch, logout resets the snapshot.
func New(remote RemoteCart, sess *session.Session, notifier notify.Notifier, logger *zap.Logger) *Aggregate {
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
				a.logger.Warn("cart resync after login failed", zap.Error(err))
			}
		case session.EventLogout:
			a.reset()
		}
	})
	return a
}

// Fetch replaces the snapshot with the server-confirmed cart. Unauthenticated
// sessions and 401 responses yield an empty cart; any other failure keeps the
// prior snapshot and is only logged, never surfaced to the user.
func (a *Aggregate) Fetch(ctx context.Context) error {
	if !a.session.Authenticated() {
		a.reset()
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	remote, err := a.remote.Get(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			a.reset()
			return nil
		}
		a.logger.Warn("failed to fetch cart", zap.Error(err))
		return err
	}

	items := make([]LineItem, 0, len(remote.Items))
	for _, line := range remote.Items {
		items = append(items, fromRemote(line))
	}

	a.mu.Lock()
	a.items = items
	a.initialized = true
	a.mu.Unlock()
	return nil
}

// Add puts quantity units of a product into the cart. Requires an
// authenticated session; otherwise it emits an error notification and does
// not touch the remote resource.
func (a *Aggregate) Add(ctx context.Context, productID, quantity int) error {
	if !a.session.Authenticated() {
		a.notifier.Show("Please login to add items to cart", notify.SeverityError)
		return ErrNotAuthenticated
	}
	if quantity < 1 {
		quantity = 1
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if _, err := a.remote.Add(ctx, productID, quantity); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to add to cart"), notify.SeverityError)
		return err
	}
	if err := a.Fetch(ctx); err != nil {
		return err
	}
	a.notifier.Show("Added to cart!", notify.SeveritySuccess)
	return nil
}

// Remove drops a product from the cart. When the product is not in the
// current snapshot this is a silent no-op.
func (a *Aggregate) Remove(ctx context.Context, productID int) error {
	lineID, ok := a.lineID(productID)
	if !ok {
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.remote.Remove(ctx, lineID); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to remove from cart"), notify.SeverityError)
		return err
	}
	if err := a.Fetch(ctx); err != nil {
		return err
	}
	a.notifier.Show("Removed from cart", notify.SeveritySuccess)
	return nil
}

// UpdateQuantity sets the quantity of a cart line. Quantities below one
// delegate to Remove. Stock limits are enforced by the backend, not here.
func (a *Aggregate) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return a.Remove(ctx, productID)
	}

	lineID, ok := a.lineID(productID)
	if !ok {
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if _, err := a.remote.Update(ctx, lineID, quantity); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to update cart"), notify.SeverityError)
		return err
	}
	return a.Fetch(ctx)
}

// Clear empties the cart. Without a session only the local snapshot is
// dropped; otherwise the remote cart is cleared as well.
func (a *Aggregate) Clear(ctx context.Context) error {
	if !a.session.Authenticated() {
		a.reset()
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.remote.Clear(ctx); err != nil {
		a.notifier.Show(api.ErrorDetail(err, "Failed to clear cart"), notify.SeverityError)
		return err
	}

	a.mu.Lock()
	a.items = nil
	a.mu.Unlock()

	a.notifier.Show("Cart cleared", notify.SeveritySuccess)
	return nil
}

// Items returns a copy of the current snapshot.
func (a *Aggregate) Items() []LineItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]LineItem, len(a.items))
	copy(out, a.items)
	return out
}

// ItemCount is the sum of line quantities.
func (a *Aggregate) ItemCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	count := 0
	for _, item := range a.items {
		count += item.Quantity
	}
	return count
}

// Subtotal is the sum of unit price times quantity over the snapshot.
func (a *Aggregate) Subtotal() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	total := 0.0
	for _, item := range a.items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ShippingCost is zero once the subtotal exceeds the free-shipping threshold.
func (a *Aggregate) ShippingCost() float64 {
	if a.Subtotal() > FreeShippingThreshold {
		return 0
	}
	return FlatShippingCost
}

// Total is subtotal plus shipping.
func (a *Aggregate) Total() float64 {
	return a.Subtotal() + a.ShippingCost()
}

// Loading reports whether a remote operation is in flight.
func (a *Aggregate) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Initialized reports whether at least one fetch (or reset) has completed.
func (a *Aggregate) Initialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.initialized
}

func (a *Aggregate) lineID(productID int) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, item := range a.items {
		if item.ProductID == productID {
			return item.LineID, true
		}
	}
	return 0, false
}

func (a *Aggregate) reset() {
	a.mu.Lock()
	a.items = nil
	a.initialized = true
	a.mu.Unlock()
}

func (a *Aggregate) setLoading(v bool) {
	a.mu.Lock()
	a.loading = v
	a.mu.Unlock()
}

func fromRemote(line api.CartLine) LineItem {
	return LineItem{
		ProductID:     line.ProductID,
		LineID:        line.ID,
		Name:          line.Product.Name,
		UnitPrice:     line.Product.Price,
		OriginalPrice: line.Product.OriginalPrice,
		Image:         line.Product.Image,
		Stock:         line.Product.Stock,
		Quantity:      line.Quantity,
		Discount:      line.Product.Discount,
	}
}
