package service

import (
	"context"

	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/task"
)

// CurrentTask returns the next actionable task: the lowest-numbered
// in_progress task if one exists, otherwise the lowest-numbered pending
// task whose dependencies are all completed. Returns nil when nothing is
// actionable. The result is recomputed from status and dependency state on
// every call; nothing is stored.
func (s *Service) CurrentTask(ctx context.Context) (*task.Task, error) {
	tasks, err := s.store.List(ctx, persistence.Filter{})
	if err != nil {
		return nil, err
	}

	// List is already in natural task-number order, which doubles as the
	// tie-break among equally-ready candidates.
	for i := range tasks {
		if tasks[i].Status == task.StatusInProgress {
			return &tasks[i], nil
		}
	}

	completed := completedNumbers(tasks)
	for i := range tasks {
		if isReady(&tasks[i], completed) {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// RemainingCount counts tasks not in a terminal status.
func (s *Service) RemainingCount(ctx context.Context) (int, error) {
	tasks, err := s.store.List(ctx, persistence.Filter{})
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range tasks {
		if !t.Status.Terminal() {
			count++
		}
	}
	return count, nil
}

func completedNumbers(tasks []task.Task) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			out[t.Number] = struct{}{}
		}
	}
	return out
}

// isReady reports whether t is pending with every dependency completed.
func isReady(t *task.Task, completed map[string]struct{}) bool {
	if t.Status != task.StatusPending {
		return false
	}
	for _, dep := range t.Dependencies {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}

// isBlocked reports whether t is pending with at least one incomplete
// dependency. Tasks in other statuses are neither ready nor blocked.
func isBlocked(t *task.Task, completed map[string]struct{}) bool {
	return t.Status == task.StatusPending && !isReady(t, completed)
}
