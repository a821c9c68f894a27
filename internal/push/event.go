package push

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/taskboard/client/internal/model"
)

// EventKind discriminates the push payload variants. The wire format has no
// explicit type tag; the variant is determined by which fields are present.
type EventKind int

const (
	// EventTaskUpserted is a payload carrying an id: a task was created
	// or updated.
	EventTaskUpserted EventKind = iota

	// EventTaskDeleted is a payload carrying a deletedId.
	EventTaskDeleted

	// EventTaskExpired is a payload with action == "expired": a task's
	// deadline passed. Marks the task expired without changing status.
	EventTaskExpired

	// EventUnknown is any other well-formed payload. Kept (with its raw
	// body) for diagnostic display rather than guessed at.
	EventUnknown
)

func (k EventKind) String() string {
	switch k {
	case EventTaskUpserted:
		return "task_upserted"
	case EventTaskDeleted:
		return "task_deleted"
	case EventTaskExpired:
		return "task_expired"
	default:
		return "unknown"
	}
}

// Event is the decoded form of a push payload.
type Event struct {
	Kind EventKind

	// Task is the normalized task for EventTaskUpserted.
	Task model.Task

	// DeletedID is set for EventTaskDeleted.
	DeletedID int

	// TaskID, TaskTitle and Deadline are set for EventTaskExpired.
	TaskID    int
	TaskTitle string
	Deadline  string

	// ProjectID identifies the affected project when the payload names
	// one. For upserts it mirrors the task's own ProjectID.
	ProjectID int

	// Raw is the original payload body.
	Raw []byte
}

// DecodeEvent parses a push payload body and classifies it. A body that
// fails JSON parsing returns an error; callers drop such events.
func DecodeEvent(body []byte) (Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, fmt.Errorf("parsing push payload: %w", err)
	}
	if payload == nil {
		return Event{}, fmt.Errorf("parsing push payload: null body")
	}

	evt := Event{Raw: body, ProjectID: intField(payload, "projectId")}

	if _, ok := payload["deletedId"]; ok {
		evt.Kind = EventTaskDeleted
		evt.DeletedID = intField(payload, "deletedId")
		return evt, nil
	}

	if action, _ := payload["action"].(string); action == "expired" {
		evt.Kind = EventTaskExpired
		evt.TaskID = intField(payload, "taskId")
		evt.TaskTitle, _ = payload["task"].(string)
		evt.Deadline, _ = payload["deadline"].(string)
		return evt, nil
	}

	if _, ok := payload["id"]; ok {
		task, ok := model.NormalizeTask(payload).(model.Task)
		if !ok {
			return Event{}, fmt.Errorf("normalizing pushed task payload")
		}
		evt.Kind = EventTaskUpserted
		evt.Task = task
		evt.ProjectID = task.ProjectID
		return evt, nil
	}

	evt.Kind = EventUnknown
	return evt, nil
}

// intField reads a numeric or string-numeric field from a decoded JSON
// object, returning zero when absent or not a number.
func intField(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case int:
		return v
	}
	return 0
}
