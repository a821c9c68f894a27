package model

// Project is a grouping container for tasks. A project does not hold a
// live task collection; tasks are indexed separately by ProjectID.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
