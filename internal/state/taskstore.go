package state

import (
	"sync"

	"github.com/taskboard/client/internal/model"
	"github.com/taskboard/client/internal/push"
)

// Bucket is the per-project task collection plus its load metadata.
type Bucket struct {
	// Items holds the project's tasks in insertion order.
	Items []model.Task

	// Loading is true while a list fetch for the project is in flight.
	Loading bool

	// Err is the last load failure message, cleared on the next load.
	Err string
}

// TaskStore is the authoritative in-memory index of tasks, keyed by
// project. Buckets are created lazily the first time any operation touches
// a project. All operations are synchronous and serialized; accessors hand
// out copies, never internal slices.
//
// Within a bucket no two tasks share an id. Created is the one exception
// to self-enforcement: it appends without checking, because a confirmed
// create is never replayed.
type TaskStore struct {
	mu      sync.Mutex
	buckets map[int]*Bucket
}

// NewTaskStore returns an empty store.
func NewTaskStore() *TaskStore {
	return &TaskStore{buckets: make(map[int]*Bucket)}
}

// bucket returns the bucket for projectID, creating it if absent.
// Callers hold s.mu.
func (s *TaskStore) bucket(projectID int) *Bucket {
	b, ok := s.buckets[projectID]
	if !ok {
		b = &Bucket{}
		s.buckets[projectID] = b
	}
	return b
}

// RequestLoad marks the project's bucket as loading and clears any
// recorded error. Calling it while already loading just resets the error.
func (s *TaskStore) RequestLoad(projectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(projectID)
	b.Loading = true
	b.Err = ""
}

// LoadSucceeded replaces the bucket's items wholesale. Last write wins:
// when two loads for the same project resolve out of order, the later
// response clobbers the earlier one regardless of which was requested
// first. There is no request-generation fencing.
func (s *TaskStore) LoadSucceeded(projectID int, items []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(projectID)
	b.Loading = false
	b.Items = append([]model.Task(nil), items...)
}

// LoadFailed records the failure message and leaves existing items alone.
func (s *TaskStore) LoadFailed(projectID int, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(projectID)
	b.Loading = false
	if errMsg == "" {
		errMsg = "Failed to load tasks"
	}
	b.Err = errMsg
}

// Created appends a server-confirmed task to the project's bucket.
func (s *TaskStore) Created(projectID int, task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bucket(projectID)
	b.Items = append(b.Items, task)
}

// Updated replaces the task with the same id in the bucket matching the
// task's own ProjectID, appending when no such entry exists (the task may
// have moved projects, or the bucket may not have been loaded yet).
func (s *TaskStore) Updated(task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsert(s.bucket(task.ProjectID), task)
}

// Deleted removes the matching task. Missing entries are a no-op.
func (s *TaskStore) Deleted(projectID, taskID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(s.bucket(projectID), taskID)
}

// ApplyEvent routes a push event to the bucket named by the event itself,
// never by caller-supplied context. Unrecognized events are ignored.
func (s *TaskStore) ApplyEvent(evt push.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch evt.Kind {
	case push.EventTaskUpserted:
		projectID := evt.Task.ProjectID
		if projectID == 0 {
			projectID = evt.ProjectID
		}
		s.upsert(s.bucket(projectID), evt.Task)

	case push.EventTaskDeleted:
		if evt.ProjectID == 0 {
			// Payload named no project; there is no bucket to touch.
			return
		}
		s.remove(s.bucket(evt.ProjectID), evt.DeletedID)

	case push.EventTaskExpired:
		if evt.ProjectID == 0 {
			return
		}
		b := s.bucket(evt.ProjectID)
		for i := range b.Items {
			if b.Items[i].ID == evt.TaskID {
				// Status is deliberately untouched.
				b.Items[i].Expired = true
				break
			}
		}
	}
}

// upsert replaces the entry sharing the task's id, or appends.
// Callers hold s.mu.
func (s *TaskStore) upsert(b *Bucket, task model.Task) {
	for i := range b.Items {
		if b.Items[i].ID == task.ID {
			b.Items[i] = task
			return
		}
	}
	b.Items = append(b.Items, task)
}

// remove drops the entry with the given id, if present. Callers hold s.mu.
func (s *TaskStore) remove(b *Bucket, taskID int) {
	for i := range b.Items {
		if b.Items[i].ID == taskID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return
		}
	}
}

// Bucket returns a copy of the project's bucket and whether it exists.
// A project no operation has touched reports an empty bucket and false.
func (s *TaskStore) Bucket(projectID int) (Bucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[projectID]
	if !ok {
		return Bucket{}, false
	}
	return Bucket{
		Items:   append([]model.Task(nil), b.Items...),
		Loading: b.Loading,
		Err:     b.Err,
	}, true
}

// Tasks returns a copy of the project's task list.
func (s *TaskStore) Tasks(projectID int) []model.Task {
	b, _ := s.Bucket(projectID)
	return b.Items
}

// ProjectIDs returns the ids of every bucket touched so far.
func (s *TaskStore) ProjectIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.buckets))
	for id := range s.buckets {
		ids = append(ids, id)
	}
	return ids
}
