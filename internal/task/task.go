// Package task defines the task data model shared by the store, the
// validator, and the service layer.
package task

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether a status ends a task's lifecycle. Cancelled
// counts as terminal for the completion cascade even though the work was
// never done.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a stored work item. ID is the surrogate key assigned on insert;
// Number is the caller-supplied dotted-decimal label and is unique across
// the whole store.
type Task struct {
	ID                   string    `json:"id"`
	Number               string    `json:"number"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	CompletionNotes      string    `json:"completion_notes,omitempty"`
	TestingStrategy      string    `json:"testing_strategy,omitempty"`
	Status               Status    `json:"status"`
	Priority             int       `json:"priority"`
	ParentID             string    `json:"parent_id,omitempty"`
	Dependencies         []string  `json:"dependencies,omitempty"`
	Files                []string  `json:"files,omitempty"`
	DocsReferences       []string  `json:"docs_references,omitempty"`
	CompletionPercentage *int      `json:"completion_percentage,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Definition is the boundary shape accepted by create and bulk import.
// Parent references the parent by task number, not by id.
type Definition struct {
	Number               string   `json:"number"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	Parent               string   `json:"parent,omitempty"`
	Status               Status   `json:"status,omitempty"`
	Priority             *int     `json:"priority,omitempty"`
	Files                []string `json:"files,omitempty"`
	DocsReferences       []string `json:"docs_references,omitempty"`
	TestingStrategy      string   `json:"testing_strategy,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"`
	Notes                string   `json:"notes,omitempty"`
	CompletionPercentage *int     `json:"completion_percentage,omitempty"`
}

// Batch is the bulk import envelope.
type Batch struct {
	Tasks []Definition `json:"tasks"`
}

// Update carries a partial mutation; nil fields are left untouched.
type Update struct {
	Name                 *string
	Description          *string
	Notes                *string
	CompletionNotes      *string
	TestingStrategy      *string
	Status               *Status
	Priority             *int
	Dependencies         *[]string
	Files                *[]string
	DocsReferences       *[]string
	CompletionPercentage *int
}
