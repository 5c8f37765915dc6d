package compare

import (
	"fmt"
	"sync"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/notify"
)

const (
	// MaxItems caps the side-by-side comparison.
	MaxItems = 4
	// minCompare is how many products a comparison needs to be meaningful.
	minCompare = 2
)

// Entry is the slim projection kept for comparison.
type Entry struct {
	ProductID int
	Name      string
	Slug      string
	Price     float64
	Image     string
	Category  string
}

// Aggregate holds the compare set. It is purely local: no remote counterpart,
// no persistence across client sessions.
type Aggregate struct {
	mu       sync.RWMutex
	entries  []Entry
	notifier notify.Notifier
}

func New(notifier notify.Notifier) *Aggregate {
	return &Aggregate{notifier: notifier}
}

// Add appends a product projection. Duplicates and overflow leave the set
// unchanged; the notification says why.
func (a *Aggregate) Add(product api.Product) bool {
	a.mu.Lock()
	if a.contains(product.ID) {
		a.mu.Unlock()
		a.notifier.Show("Product already in compare list", notify.SeverityInfo)
		return false
	}
	if len(a.entries) >= MaxItems {
		a.mu.Unlock()
		a.notifier.Show(fmt.Sprintf("Maximum %d products can be compared", MaxItems), notify.SeverityWarning)
		return false
	}
	a.entries = append(a.entries, Entry{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Price:     product.Price,
		Image:     product.Image,
		Category:  product.Category,
	})
	a.mu.Unlock()

	a.notifier.Show("Added to compare", notify.SeveritySuccess)
	return true
}

// Remove filters out a product. The notification is emitted whether or not
// the product was actually present.
func (a *Aggregate) Remove(productID int) {
	a.mu.Lock()
	for i, e := range a.entries {
		if e.ProductID == productID {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			break
		}
	}
	a.mu.Unlock()

	a.notifier.Show("Removed from compare", notify.SeverityInfo)
}

// Toggle adds or removes based on membership.
func (a *Aggregate) Toggle(product api.Product) {
	if a.IsInCompare(product.ID) {
		a.Remove(product.ID)
		return
	}
	a.Add(product)
}

// Clear empties the set without a notification.
func (a *Aggregate) Clear() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}

// IsInCompare tests membership by product ID.
func (a *Aggregate) IsInCompare(productID int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.contains(productID)
}

// Items returns a copy of the compare set in insertion order.
func (a *Aggregate) Items() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Count is the current set size.
func (a *Aggregate) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// CanCompare reports whether enough products are selected to render a
// comparison.
func (a *Aggregate) CanCompare() bool {
	return a.Count() >= minCompare
}

func (a *Aggregate) contains(productID int) bool {
	for _, e := range a.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
