package model

import "encoding/json"

// Task status constants as reported by the backend.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// Task is the canonical client-side representation of a task.
//
// The backend sends tasks in two shapes depending on origin: the DTO shape
// with flat projectId/assigneeId fields, and the entity shape with nested
// project/assignee objects. The canonical form always carries flat
// identifiers; UnmarshalJSON flattens nested references on decode.
type Task struct {
	// ID is the server-assigned identifier, immutable once set.
	ID int `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is the full body text. Empty when absent.
	Description string `json:"description"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Deadline is an ISO 8601 timestamp, or nil when the task has none.
	Deadline *string `json:"deadline"`

	// ProjectID references the owning project.
	ProjectID int `json:"projectId"`

	// AssigneeID references the assigned user, zero when unassigned.
	AssigneeID int `json:"assigneeId,omitempty"`

	// AssigneeUsername is the assigned user's name, for display.
	AssigneeUsername string `json:"assigneeUsername,omitempty"`

	// Expired is set only by push events when a deadline passes,
	// never by the user. It does not affect Status.
	Expired bool `json:"expired"`
}

// rawTask mirrors every field the backend may send for a task, in either
// the flat DTO shape or the nested entity shape.
type rawTask struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	Deadline         *string `json:"deadline"`
	ProjectID        int     `json:"projectId"`
	AssigneeID       int     `json:"assigneeId"`
	AssigneeUsername string  `json:"assigneeUsername"`
	Expired          bool    `json:"expired"`

	Project *struct {
		ID int `json:"id"`
	} `json:"project"`
	Assignee *struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"assignee"`
}

// canonical converts a raw task into the canonical flat shape.
func (r rawTask) canonical() Task {
	t := Task{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Status:           r.Status,
		Deadline:         r.Deadline,
		ProjectID:        r.ProjectID,
		AssigneeID:       r.AssigneeID,
		AssigneeUsername: r.AssigneeUsername,
		Expired:          r.Expired,
	}
	if r.Project != nil && t.ProjectID == 0 {
		t.ProjectID = r.Project.ID
	}
	if r.Assignee != nil {
		if t.AssigneeID == 0 {
			t.AssigneeID = r.Assignee.ID
		}
		if t.AssigneeUsername == "" {
			t.AssigneeUsername = r.Assignee.Username
		}
	}
	return t
}

// UnmarshalJSON decodes a task from either backend shape into the
// canonical flat form.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = raw.canonical()
	return nil
}

// NormalizeTask converts any raw task representation into the canonical
// Task shape. Map input (decoded JSON) is flattened; a Task comes back
// unchanged, which makes the function idempotent; any other value passes
// through as-is. It never panics.
func NormalizeTask(v any) any {
	switch raw := v.(type) {
	case Task:
		return raw
	case *Task:
		if raw == nil {
			return v
		}
		return *raw
	case map[string]any:
		// Round-trip through JSON so map payloads normalize exactly
		// like decoded HTTP bodies.
		data, err := json.Marshal(raw)
		if err != nil {
			return v
		}
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return v
		}
		return t
	default:
		return v
	}
}
