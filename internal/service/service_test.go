package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/service"
	"github.com/basket/taskforge/internal/task"
	"github.com/basket/taskforge/internal/validate"
)

func newTestService(t *testing.T) (*service.Service, *persistence.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskforge.db")
	store, err := persistence.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	validator, err := validate.New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return service.New(store, validator, nil), store
}

func mustCreate(t *testing.T, svc *service.Service, def task.Definition) *task.Task {
	t.Helper()
	created, err := svc.Create(context.Background(), def)
	if err != nil {
		t.Fatalf("create %s: %v", def.Number, err)
	}
	return created
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	created := mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})
	if created.Status != task.StatusPending {
		t.Fatalf("expected default pending, got %s", created.Status)
	}
	if created.Priority != 5 {
		t.Fatalf("expected default priority 5, got %d", created.Priority)
	}

	child := mustCreate(t, svc, task.Definition{Number: "1.1", Name: "child", Parent: "1.0"})
	if child.ParentID != created.ID {
		t.Fatalf("parent not resolved: %+v", child)
	}
}

func TestCreateParentNotFound(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Create(context.Background(), task.Definition{
		Number: "1.1", Name: "orphan", Parent: "1.0",
	})
	if !errors.Is(err, task.ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}

	// Store unchanged.
	numbers, err := store.Numbers(context.Background())
	if err != nil {
		t.Fatalf("numbers: %v", err)
	}
	if len(numbers) != 0 {
		t.Fatalf("expected empty store, got %v", numbers)
	}
}

func TestCreateDuplicateNumberFailsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})

	_, err := svc.Create(context.Background(), task.Definition{Number: "1.0", Name: "again"})
	if !errors.Is(err, task.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateRejectsUnknownDependency(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), task.Definition{
		Number: "1.0", Name: "task", Dependencies: []string{"9.9"},
	})
	if !errors.Is(err, task.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown dependency, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})

	status := task.StatusInProgress
	updated, err := svc.Update(context.Background(), "1.0", task.Update{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != task.StatusInProgress {
		t.Fatalf("status not applied: %s", updated.Status)
	}

	_, err = svc.Update(context.Background(), "9.9", task.Update{Status: &status})
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	badPriority := 42
	_, err = svc.Update(context.Background(), "1.0", task.Update{Priority: &badPriority})
	if !errors.Is(err, task.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad priority, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})
	mustCreate(t, svc, task.Definition{Number: "1.1", Name: "child", Parent: "1.0"})
	mustCreate(t, svc, task.Definition{Number: "1.1.1", Name: "grandchild", Parent: "1.1"})

	if err := svc.Delete(ctx, "1.0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, number := range []string{"1.0", "1.1", "1.1.1"} {
		if _, err := svc.Get(ctx, number); !errors.Is(err, task.ErrNotFound) {
			t.Fatalf("expected %s removed, got %v", number, err)
		}
	}

	if err := svc.Delete(ctx, "1.0"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCompleteStoresNotes(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})

	notes := "all green"
	result, err := svc.Complete(context.Background(), "1.0", &notes)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Task.Status != task.StatusCompleted {
		t.Fatalf("expected completed, got %s", result.Task.Status)
	}
	if result.Task.CompletionNotes != "all green" {
		t.Fatalf("notes not stored: %q", result.Task.CompletionNotes)
	}
	if len(result.AutoCompleted) != 0 {
		t.Fatalf("unexpected cascade for root task: %v", result.AutoCompleted)
	}
}

func TestCompleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), "9.9", nil)
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteLastChildCascadesUpward(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})
	mustCreate(t, svc, task.Definition{Number: "1.1", Name: "phase", Parent: "1.0"})
	mustCreate(t, svc, task.Definition{Number: "1.1.1", Name: "step a", Parent: "1.1"})
	mustCreate(t, svc, task.Definition{Number: "1.1.2", Name: "step b", Parent: "1.1"})

	// Completing a non-last child leaves ancestors unchanged.
	result, err := svc.Complete(ctx, "1.1.1", nil)
	if err != nil {
		t.Fatalf("complete 1.1.1: %v", err)
	}
	if len(result.AutoCompleted) != 0 {
		t.Fatalf("unexpected cascade: %v", result.AutoCompleted)
	}
	parent, err := svc.Get(ctx, "1.1")
	if err != nil {
		t.Fatalf("get 1.1: %v", err)
	}
	if parent.Status != task.StatusPending {
		t.Fatalf("parent changed early: %s", parent.Status)
	}

	// Completing the last child promotes both ancestors, nearest first.
	result, err = svc.Complete(ctx, "1.1.2", nil)
	if err != nil {
		t.Fatalf("complete 1.1.2: %v", err)
	}
	want := []string{"1.1", "1.0"}
	if len(result.AutoCompleted) != len(want) {
		t.Fatalf("cascade mismatch: got %v want %v", result.AutoCompleted, want)
	}
	for i := range want {
		if result.AutoCompleted[i] != want[i] {
			t.Fatalf("cascade order mismatch: got %v want %v", result.AutoCompleted, want)
		}
	}
	for _, number := range want {
		ancestor, err := svc.Get(ctx, number)
		if err != nil {
			t.Fatalf("get %s: %v", number, err)
		}
		if ancestor.Status != task.StatusCompleted {
			t.Fatalf("ancestor %s not completed: %s", number, ancestor.Status)
		}
	}
}

func TestCompleteTreatsCancelledSiblingAsTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})
	mustCreate(t, svc, task.Definition{Number: "1.1", Name: "a", Parent: "1.0"})
	mustCreate(t, svc, task.Definition{Number: "1.2", Name: "b", Parent: "1.0"})

	cancelled := task.StatusCancelled
	if _, err := svc.Update(ctx, "1.2", task.Update{Status: &cancelled}); err != nil {
		t.Fatalf("cancel 1.2: %v", err)
	}

	result, err := svc.Complete(ctx, "1.1", nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(result.AutoCompleted) != 1 || result.AutoCompleted[0] != "1.0" {
		t.Fatalf("expected cascade to 1.0, got %v", result.AutoCompleted)
	}
}

func TestCompleteStopsAtUnfinishedAncestor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, task.Definition{Number: "1.0", Name: "root"})
	mustCreate(t, svc, task.Definition{Number: "1.1", Name: "phase", Parent: "1.0"})
	mustCreate(t, svc, task.Definition{Number: "1.2", Name: "other phase", Parent: "1.0"})
	mustCreate(t, svc, task.Definition{Number: "1.1.1", Name: "step", Parent: "1.1"})

	result, err := svc.Complete(ctx, "1.1.1", nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	// 1.1 completes; 1.0 still has pending 1.2.
	if len(result.AutoCompleted) != 1 || result.AutoCompleted[0] != "1.1" {
		t.Fatalf("expected cascade to stop at 1.1, got %v", result.AutoCompleted)
	}
	root, err := svc.Get(ctx, "1.0")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	if root.Status != task.StatusPending {
		t.Fatalf("root should be untouched, got %s", root.Status)
	}
}
