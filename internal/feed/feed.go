package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/taskboard/client/internal/model"
	"github.com/taskboard/client/internal/push"
)

// Capacity is the maximum number of entries the feed retains. The oldest
// entry is evicted silently once the cap is reached.
const Capacity = 100

// Sink is a durable destination for feed entries, typically the SQLite
// activity log. The feed works fine without one.
type Sink interface {
	Append(ctx context.Context, entry model.FeedEntry) error
	Recent(ctx context.Context, limit int) ([]model.FeedEntry, error)
}

// Feed is the read-only projection of cross-project push events into a
// capped, newest-first activity log. It only grows from newly-received
// events; re-subscribing after a reconnect never replays history into it.
type Feed struct {
	mu      sync.Mutex
	entries []model.FeedEntry
	sink    Sink

	// now is swappable for tests.
	now func() time.Time
}

// New returns an empty feed with no durable sink.
func New() *Feed {
	return &Feed{now: time.Now}
}

// NewWithSink returns a feed that mirrors entries into sink and starts out
// preloaded with the sink's most recent entries, capped as usual.
func NewWithSink(ctx context.Context, sink Sink) (*Feed, error) {
	f := &Feed{sink: sink, now: time.Now}
	if sink != nil {
		entries, err := sink.Recent(ctx, Capacity)
		if err != nil {
			return nil, fmt.Errorf("preloading feed: %w", err)
		}
		f.entries = entries
	}
	return f, nil
}

// Apply classifies a push event and prepends the resulting entry.
func (f *Feed) Apply(evt push.Event) model.FeedEntry {
	entry := f.classify(evt)

	f.mu.Lock()
	f.entries = append([]model.FeedEntry{entry}, f.entries...)
	if len(f.entries) > Capacity {
		f.entries = f.entries[:Capacity]
	}
	sink := f.sink
	f.mu.Unlock()

	if sink != nil {
		if err := sink.Append(context.Background(), entry); err != nil {
			log.Printf("feed: persisting entry %s: %v", entry.ID, err)
		}
	}
	return entry
}

// classify maps an event to a feed entry. Expiry events keep the task's
// deadline as the timestamp when it parses; everything else stamps receipt
// time.
func (f *Feed) classify(evt push.Event) model.FeedEntry {
	received := f.now()

	switch evt.Kind {
	case push.EventTaskExpired:
		ts := received
		if evt.Deadline != "" {
			if parsed, err := time.Parse(time.RFC3339, evt.Deadline); err == nil {
				ts = parsed
			}
		}
		return model.FeedEntry{
			ID:        entryID(model.FeedKindExpired, evt.TaskID, ts),
			Kind:      model.FeedKindExpired,
			Title:     evt.TaskTitle,
			ProjectID: evt.ProjectID,
			TaskID:    evt.TaskID,
			Deadline:  evt.Deadline,
			Timestamp: ts,
		}

	case push.EventTaskUpserted:
		return model.FeedEntry{
			ID:        entryID(model.FeedKindCreated, evt.Task.ID, received),
			Kind:      model.FeedKindCreated,
			Title:     evt.Task.Title,
			ProjectID: evt.Task.ProjectID,
			TaskID:    evt.Task.ID,
			Timestamp: received,
		}

	default:
		return model.FeedEntry{
			ID:        entryID(model.FeedKindGeneric, evt.DeletedID, received),
			Kind:      model.FeedKindGeneric,
			Title:     "event",
			ProjectID: evt.ProjectID,
			RawBody:   string(evt.Raw),
			Timestamp: received,
		}
	}
}

// Entries returns a copy of the feed, newest first.
func (f *Feed) Entries() []model.FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.FeedEntry(nil), f.entries...)
}

// Len returns the current number of entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// entryID builds the synthetic composite identity for an entry.
func entryID(kind string, sourceID int, ts time.Time) string {
	return fmt.Sprintf("%s-%d-%d", kind, sourceID, ts.UnixNano())
}
