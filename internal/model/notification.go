package model

import "time"

// Notification severities.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is a transient user-facing signal. At most one is live at a
// time; publishing a new one replaces whatever is currently shown.
type Notification struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Feed entry kinds.
const (
	FeedKindCreated = "created"
	FeedKindExpired = "expired"
	FeedKindGeneric = "generic"
)

// FeedEntry is one row of the global activity feed: a cross-project push
// event projected into a display record.
type FeedEntry struct {
	// ID is a synthetic identifier assigned on receipt.
	ID string `json:"id" db:"id"`

	// Kind is one of the FeedKind* constants.
	Kind string `json:"kind" db:"kind"`

	// Title is the display text, normally the affected task's title.
	Title string `json:"title" db:"title"`

	// ProjectID references the affected project, zero when unknown.
	ProjectID int `json:"project_id" db:"project_id"`

	// TaskID references the affected task, zero when unknown.
	TaskID int `json:"task_id" db:"task_id"`

	// Deadline is the expired task's deadline, empty otherwise.
	Deadline string `json:"deadline" db:"deadline"`

	// RawBody holds the original payload for generic entries, kept for
	// diagnostic display.
	RawBody string `json:"raw_body" db:"raw_body"`

	// Timestamp orders the feed: the event deadline for expiry entries
	// when parseable, receipt time otherwise.
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
