package sync

import (
	gosync "sync"

	"github.com/taskboard/client/internal/model"
)

// Notifier holds the single live transient notification. Publishing
// replaces whatever is currently shown; the consumer dismisses explicitly
// or applies its own auto-expiry.
type Notifier struct {
	mu      gosync.Mutex
	current *model.Notification
	updates chan model.Notification
}

// NewNotifier creates a Notifier with a buffered update stream.
func NewNotifier() *Notifier {
	return &Notifier{
		updates: make(chan model.Notification, 16),
	}
}

// Publish replaces the live notification.
func (n *Notifier) Publish(severity, message string) {
	notification := model.Notification{Severity: severity, Message: message}

	n.mu.Lock()
	n.current = &notification
	n.mu.Unlock()

	select {
	case n.updates <- notification:
	default:
		// Drop if nobody is draining; the slot still holds the latest.
	}
}

// Current returns a copy of the live notification, or nil when dismissed.
func (n *Notifier) Current() *model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

// Dismiss clears the live notification.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
}

// Updates exposes the stream of published notifications for consumers
// that want to react as they arrive.
func (n *Notifier) Updates() <-chan model.Notification {
	return n.updates
}
