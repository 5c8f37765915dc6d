package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for presentation purposes.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DefaultDuration is how long a notification stays up unless dismissed earlier.
const DefaultDuration = 3 * time.Second

// Notification is a transient user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the write side of the channel, as seen by the aggregates.
type Notifier interface {
	Show(message string, severity Severity) string
}

// Channel holds the active notification stack. Notifications are appended in
// call order and expire independently; identical messages are not deduplicated.
type Channel struct {
	mu     sync.Mutex
	active []Notification
	timers map[string]*time.Timer
	subs   []func(Notification)
}

func NewChannel() *Channel {
	return &Channel{timers: make(map[string]*time.Timer)}
}

// Show appends a notification with the default duration and returns its ID.
func (c *Channel) Show(message string, severity Severity) string {
	return c.ShowFor(message, severity, DefaultDuration)
}

// ShowFor appends a notification that auto-dismisses after the given duration.
func (c *Channel) ShowFor(message string, severity Severity, duration time.Duration) string {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.active = append(c.active, n)
	c.timers[n.ID] = time.AfterFunc(duration, func() { c.Dismiss(n.ID) })
	subs := make([]func(Notification), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n.ID
}

// Dismiss removes a notification before its timer fires. Unknown IDs are ignored.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// Active returns the current notification stack in call order.
func (c *Channel) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

// Subscribe registers a callback invoked for every notification shown.
func (c *Channel) Subscribe(fn func(Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}
