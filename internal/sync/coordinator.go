package sync

import (
	"context"
	"fmt"
	"log"
	gosync "sync"

	"github.com/taskboard/client/internal/api"
	"github.com/taskboard/client/internal/feed"
	"github.com/taskboard/client/internal/model"
	"github.com/taskboard/client/internal/push"
	"github.com/taskboard/client/internal/state"
)

// Coordinator orchestrates the three writers of task state: REST-driven
// CRUD intents, their confirmations, and pushed real-time events. Each
// CRUD intent is one unit of work: the remote call either succeeds and
// the store mutates with a success notification, or fails and the store is
// left alone (loads record the error on their bucket) with an error
// notification. Intents are not deduplicated; a rapid double-submit makes
// two round-trips.
type Coordinator struct {
	client   *api.Client
	store    *state.TaskStore
	source   *push.Source
	feed     *feed.Feed
	notifier *Notifier

	mu         gosync.Mutex
	watched    map[int]*push.Subscription
	globalSub  *push.Subscription
	feedActive bool
	started    bool
}

// New wires a Coordinator over its collaborators. feed may be nil when the
// consumer has no activity view.
func New(
	client *api.Client,
	store *state.TaskStore,
	source *push.Source,
	activityFeed *feed.Feed,
	notifier *Notifier,
) *Coordinator {
	return &Coordinator{
		client:   client,
		store:    store,
		source:   source,
		feed:     activityFeed,
		notifier: notifier,
		watched:  make(map[int]*push.Subscription),
	}
}

// Start connects the event source. The connect callback re-establishes
// every current subscription, which is what makes subscriptions survive
// broker reconnects: the source drops them, the coordinator rebuilds them.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.source.Connect(c.resubscribeAll, func(err error) {
		log.Printf("sync: event source disconnected: %v", err)
	})
}

// Stop tears down all subscriptions and the connection.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	for id, sub := range c.watched {
		sub.Unsubscribe()
		delete(c.watched, id)
	}
	if c.globalSub != nil {
		c.globalSub.Unsubscribe()
		c.globalSub = nil
	}
	c.feedActive = false
	c.started = false
	c.mu.Unlock()

	c.source.Disconnect()
}

// LoadTasks fetches a project's task list and replaces the bucket.
func (c *Coordinator) LoadTasks(ctx context.Context, projectID int) error {
	c.store.RequestLoad(projectID)

	items, err := c.client.ListTasks(ctx, projectID)
	if err != nil {
		msg := api.ErrorMessage(err)
		c.store.LoadFailed(projectID, msg)
		c.notifier.Publish(model.SeverityError, msg)
		return err
	}

	c.store.LoadSucceeded(projectID, items)
	return nil
}

// CreateTask submits a draft and appends the server's confirmed task.
func (c *Coordinator) CreateTask(ctx context.Context, projectID int, draft api.TaskDraft) (*model.Task, error) {
	created, err := c.client.CreateTask(ctx, projectID, draft)
	if err != nil {
		c.notifier.Publish(model.SeverityError, api.ErrorMessage(err))
		return nil, err
	}

	c.store.Created(projectID, *created)
	c.notifier.Publish(model.SeveritySuccess, "Task created")
	return created, nil
}

// UpdateTask submits changed fields and replaces the stored task with the
// server's saved version.
func (c *Coordinator) UpdateTask(ctx context.Context, projectID, taskID int, draft api.TaskDraft) (*model.Task, error) {
	saved, err := c.client.UpdateTask(ctx, taskID, draft)
	if err != nil {
		c.notifier.Publish(model.SeverityError, api.ErrorMessage(err))
		return nil, err
	}

	if saved.ProjectID == 0 {
		// Some backends omit the project reference on update responses.
		saved.ProjectID = projectID
	}
	c.store.Updated(*saved)
	c.notifier.Publish(model.SeveritySuccess, "Task updated")
	return saved, nil
}

// DeleteTask removes a task remotely and then locally.
func (c *Coordinator) DeleteTask(ctx context.Context, projectID, taskID int) error {
	if err := c.client.DeleteTask(ctx, taskID); err != nil {
		c.notifier.Publish(model.SeverityError, api.ErrorMessage(err))
		return err
	}

	c.store.Deleted(projectID, taskID)
	c.notifier.Publish(model.SeveritySuccess, "Task deleted")
	return nil
}

// WatchProject subscribes to a project's topic so pushed changes land in
// the store as they happen. Watching an already-watched project is a
// no-op. Safe to call before Start or while disconnected; the subscription
// materializes on the next connect.
func (c *Coordinator) WatchProject(projectID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.watched[projectID]; ok {
		return
	}
	c.watched[projectID] = c.source.SubscribeProject(projectID, c.applyPushEvent)
}

// UnwatchProject drops the project's subscription. Idempotent.
func (c *Coordinator) UnwatchProject(projectID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sub, ok := c.watched[projectID]; ok {
		sub.Unsubscribe()
		delete(c.watched, projectID)
	}
}

// StartFeed subscribes to the global topic and projects its events into
// the activity feed. Works independently of any project subscription.
func (c *Coordinator) StartFeed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.feedActive {
		return
	}
	c.feedActive = true
	c.globalSub = c.source.SubscribeGlobal(c.handleGlobalEvent)
}

// resubscribeAll rebuilds every live subscription after a (re)connect.
func (c *Coordinator) resubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for projectID, old := range c.watched {
		old.Unsubscribe()
		c.watched[projectID] = c.source.SubscribeProject(projectID, c.applyPushEvent)
	}
	if c.feedActive {
		if c.globalSub != nil {
			c.globalSub.Unsubscribe()
		}
		c.globalSub = c.source.SubscribeGlobal(c.handleGlobalEvent)
	}
}

// applyPushEvent lands a project-topic event in the store and raises the
// transient notifications for destructive variants.
func (c *Coordinator) applyPushEvent(evt push.Event) {
	c.store.ApplyEvent(evt)

	switch evt.Kind {
	case push.EventTaskExpired:
		title := evt.TaskTitle
		if title == "" {
			title = fmt.Sprintf("Task %d", evt.TaskID)
		}
		c.notifier.Publish(model.SeverityWarning,
			fmt.Sprintf("%q expired in project %d", title, evt.ProjectID))
	case push.EventTaskDeleted:
		c.notifier.Publish(model.SeverityInfo,
			fmt.Sprintf("Task %d was deleted", evt.DeletedID))
	}
}

// handleGlobalEvent applies a global-topic event to the store and records
// it in the feed.
func (c *Coordinator) handleGlobalEvent(evt push.Event) {
	c.store.ApplyEvent(evt)
	if c.feed != nil {
		c.feed.Apply(evt)
	}
}
