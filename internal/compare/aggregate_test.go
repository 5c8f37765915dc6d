package compare

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront-client/internal/api"
	"github.com/example/storefront-client/internal/notify"
)

type shownNote struct {
	message  string
	severity notify.Severity
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []shownNote
}

func (r *recordingNotifier) Show(message string, severity notify.Severity) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, shownNote{message, severity})
	return ""
}

func (r *recordingNotifier) last() (shownNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return shownNote{}, false
	}
	return r.notes[len(r.notes)-1], true
}

func product(id int) api.Product {
	return api.Product{
		ID:       id,
		Name:     fmt.Sprintf("Product %d", id),
		Slug:     fmt.Sprintf("product-%d", id),
		Price:    float64(id * 100),
		Category: "gadgets",
	}
}

func newTestAggregate() (*Aggregate, *recordingNotifier) {
	notifier := &recordingNotifier{}
	return New(notifier), notifier
}

func TestAggregate_Add_Success(t *testing.T) {
	agg, notifier := newTestAggregate()

	ok := agg.Add(product(1))

	assert.True(t, ok)
	assert.Equal(t, 1, agg.Count())
	assert.True(t, agg.IsInCompare(1))

	entries := agg.Items()
	require.Len(t, entries, 1)
	assert.Equal(t, "Product 1", entries[0].Name)
	assert.Equal(t, "product-1", entries[0].Slug)
	assert.Equal(t, "gadgets", entries[0].Category)

	last, _ := notifier.last()
	assert.Equal(t, "Added to compare", last.message)
	assert.Equal(t, notify.SeveritySuccess, last.severity)
}

func TestAggregate_Add_DuplicateLeavesSetUnchanged(t *testing.T) {
	agg, notifier := newTestAggregate()
	agg.Add(product(1))

	ok := agg.Add(product(1))

	assert.False(t, ok)
	assert.Equal(t, 1, agg.Count())
	last, _ := notifier.last()
	assert.Equal(t, "Product already in compare list", last.message)
	assert.Equal(t, notify.SeverityInfo, last.severity)
}

func TestAggregate_Add_FifthProductRejected(t *testing.T) {
	agg, notifier := newTestAggregate()
	for id := 1; id <= MaxItems; id++ {
		require.True(t, agg.Add(product(id)))
	}

	ok := agg.Add(product(5))

	assert.False(t, ok)
	assert.Equal(t, MaxItems, agg.Count(), "set unchanged at maximum size")
	assert.False(t, agg.IsInCompare(5))
	last, _ := notifier.last()
	assert.Equal(t, "Maximum 4 products can be compared", last.message)
	assert.Equal(t, notify.SeverityWarning, last.severity)
}

func TestAggregate_Remove(t *testing.T) {
	agg, notifier := newTestAggregate()
	agg.Add(product(1))
	agg.Add(product(2))

	agg.Remove(1)

	assert.False(t, agg.IsInCompare(1))
	assert.True(t, agg.IsInCompare(2))
	last, _ := notifier.last()
	assert.Equal(t, "Removed from compare", last.message)
	assert.Equal(t, notify.SeverityInfo, last.severity)
}

func TestAggregate_Remove_NotifiesEvenWhenAbsent(t *testing.T) {
	agg, notifier := newTestAggregate()

	agg.Remove(99)

	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, "Removed from compare", last.message)
}

func TestAggregate_CanCompare_Transitions(t *testing.T) {
	agg, _ := newTestAggregate()
	assert.False(t, agg.CanCompare())

	agg.Add(product(1))
	assert.False(t, agg.CanCompare(), "one product is not comparable")

	agg.Add(product(2))
	assert.True(t, agg.CanCompare())

	agg.Remove(1)
	assert.False(t, agg.CanCompare(), "dropping below two disables comparison")
}

func TestAggregate_Toggle(t *testing.T) {
	agg, _ := newTestAggregate()

	agg.Toggle(product(1))
	assert.True(t, agg.IsInCompare(1))

	agg.Toggle(product(1))
	assert.False(t, agg.IsInCompare(1))
}

func TestAggregate_Clear_IsSilent(t *testing.T) {
	agg, notifier := newTestAggregate()
	agg.Add(product(1))
	agg.Add(product(2))
	notesBefore := len(notifier.notes)

	agg.Clear()

	assert.Zero(t, agg.Count())
	assert.Len(t, notifier.notes, notesBefore, "clear emits no notification")
}

func TestAggregate_Items_PreservesInsertionOrder(t *testing.T) {
	agg, _ := newTestAggregate()
	agg.Add(product(3))
	agg.Add(product(1))
	agg.Add(product(2))

	items := agg.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{items[0].ProductID, items[1].ProductID, items[2].ProductID})
}
