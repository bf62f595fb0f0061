package task

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation targets a task number or id
	// that does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrParentNotFound is returned when a definition names a parent number
	// that resolves to nothing.
	ErrParentNotFound = errors.New("parent task not found")

	// ErrValidation is the sentinel matched by ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// FieldError is a single validator finding, attributed to a task number and
// a field.
type FieldError struct {
	Task  string `json:"task"`
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError aggregates field errors for a definition or a batch. It
// never reaches storage: validation runs before any write.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		f := e.Errors[0]
		return fmt.Sprintf("validation failed: task %s field %s: %s", f.Task, f.Field, f.Error)
	}
	return fmt.Sprintf("validation failed: %d errors", len(e.Errors))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
