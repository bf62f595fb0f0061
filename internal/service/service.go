// Package service orchestrates task mutations and enforces the business
// invariants: parent resolution, cascading deletion, the completion cascade,
// and atomic bulk import. It is the only writer above the store.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/task"
	"github.com/basket/taskforge/internal/validate"
)

const defaultPriority = 5

type Service struct {
	store     *persistence.Store
	validator *validate.Validator
	logger    *slog.Logger
}

func New(store *persistence.Store, validator *validate.Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, validator: validator, logger: logger}
}

// Create validates a single definition and inserts it. The parent reference
// must already be persisted; a missing parent fails with ErrParentNotFound
// and leaves the store unchanged.
func (s *Service) Create(ctx context.Context, def task.Definition) (*task.Task, error) {
	var parentID string
	if def.Parent != "" {
		parent, err := s.store.FindByNumber(ctx, def.Parent)
		if errors.Is(err, task.ErrNotFound) {
			return nil, fmt.Errorf("resolve parent %q: %w", def.Parent, task.ErrParentNotFound)
		}
		if err != nil {
			return nil, err
		}
		parentID = parent.ID
	}

	known, err := s.store.Numbers(ctx)
	if err != nil {
		return nil, err
	}
	if _, exists := known[def.Number]; exists {
		return nil, &task.ValidationError{Errors: []task.FieldError{{
			Task:  def.Number,
			Field: "number",
			Error: "task number already exists",
		}}}
	}
	if report := s.validator.ValidateOne(def, known); !report.Valid {
		return nil, report.Err()
	}

	t := definitionToTask(def, parentID)
	inserted, err := s.store.Insert(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", "number", inserted.Number, "parent", def.Parent)
	return inserted, nil
}

// Update merges a partial mutation into an existing task. Fails with
// ErrNotFound when the number is absent.
func (s *Service) Update(ctx context.Context, number string, partial task.Update) (*task.Task, error) {
	if partial.Status != nil && !partial.Status.Valid() {
		return nil, &task.ValidationError{Errors: []task.FieldError{{
			Task:  number,
			Field: "status",
			Error: fmt.Sprintf("invalid status %q", *partial.Status),
		}}}
	}
	if partial.Priority != nil && (*partial.Priority < 0 || *partial.Priority > 10) {
		return nil, &task.ValidationError{Errors: []task.FieldError{{
			Task:  number,
			Field: "priority",
			Error: fmt.Sprintf("priority %d out of range 0-10", *partial.Priority),
		}}}
	}
	if partial.CompletionPercentage != nil && (*partial.CompletionPercentage < 0 || *partial.CompletionPercentage > 100) {
		return nil, &task.ValidationError{Errors: []task.FieldError{{
			Task:  number,
			Field: "completion_percentage",
			Error: fmt.Sprintf("completion percentage %d out of range 0-100", *partial.CompletionPercentage),
		}}}
	}

	updated, err := s.store.Update(ctx, number, partial)
	if err != nil {
		return nil, fmt.Errorf("update task %q: %w", number, err)
	}
	return updated, nil
}

// Delete removes the task and its whole descendant subtree atomically.
// Unlike the repository primitive, it fails with ErrNotFound when the
// number is absent.
func (s *Service) Delete(ctx context.Context, number string) error {
	found, err := s.store.Delete(ctx, number)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("delete task %q: %w", number, task.ErrNotFound)
	}
	s.logger.Info("task deleted", "number", number)
	return nil
}

// Get returns the task with the given number or ErrNotFound.
func (s *Service) Get(ctx context.Context, number string) (*task.Task, error) {
	return s.store.FindByNumber(ctx, number)
}

// List returns tasks matching the filter in natural number order.
func (s *Service) List(ctx context.Context, filter persistence.Filter) ([]task.Task, error) {
	return s.store.List(ctx, filter)
}

// CompletionResult is the outcome of Complete: the primary task after the
// status change plus the numbers auto-completed by the cascade, nearest
// ancestor first.
type CompletionResult struct {
	Task          *task.Task `json:"task"`
	AutoCompleted []string   `json:"auto_completed"`
}

// Complete marks the task completed, stores completion notes when given,
// then walks upward: each ancestor whose direct children are now all
// terminal is auto-completed, stopping at the first ancestor with an
// unfinished child. The whole walk runs in one transaction.
func (s *Service) Complete(ctx context.Context, number string, notes *string) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		t, err := s.store.FindByNumberTx(ctx, tx, number)
		if err != nil {
			return fmt.Errorf("complete task %q: %w", number, err)
		}
		if err := s.store.SetStatusTx(ctx, tx, t.ID, task.StatusCompleted, notes); err != nil {
			return err
		}

		var autoCompleted []string
		parentID := t.ParentID
		for parentID != "" {
			parent, err := s.store.FindByIDTx(ctx, tx, parentID)
			if err != nil {
				return fmt.Errorf("walk ancestor: %w", err)
			}
			if parent.Status.Terminal() {
				break
			}
			children, err := s.store.ChildrenTx(ctx, tx, parent.ID)
			if err != nil {
				return err
			}
			if !allTerminal(children) {
				break
			}
			if err := s.store.SetStatusTx(ctx, tx, parent.ID, task.StatusCompleted, nil); err != nil {
				return err
			}
			autoCompleted = append(autoCompleted, parent.Number)
			parentID = parent.ParentID
		}

		completed, err := s.store.FindByIDTx(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		result = &CompletionResult{Task: completed, AutoCompleted: autoCompleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task completed", "number", number, "auto_completed", result.AutoCompleted)
	return result, nil
}

func allTerminal(tasks []task.Task) bool {
	for _, t := range tasks {
		if !t.Status.Terminal() {
			return false
		}
	}
	return true
}

func definitionToTask(def task.Definition, parentID string) *task.Task {
	t := &task.Task{
		Number:          def.Number,
		Name:            def.Name,
		Description:     def.Description,
		Notes:           def.Notes,
		TestingStrategy: def.TestingStrategy,
		Status:          def.Status,
		Priority:        defaultPriority,
		ParentID:        parentID,
		Dependencies:    def.Dependencies,
		Files:           def.Files,
		DocsReferences:  def.DocsReferences,
	}
	if def.Status == "" {
		t.Status = task.StatusPending
	}
	if def.Priority != nil {
		t.Priority = *def.Priority
	}
	if def.CompletionPercentage != nil {
		v := *def.CompletionPercentage
		t.CompletionPercentage = &v
	}
	return t
}
