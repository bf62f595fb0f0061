package service

import (
	"context"
	"math"

	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/task"
)

// Stats aggregates over all tasks. Purely derived; no storage mutation.
type Stats struct {
	Total            int                 `json:"total"`
	ByStatus         map[task.Status]int `json:"by_status"`
	CompletionRate   int                 `json:"completion_rate"`
	TopLevel         int                 `json:"top_level"`
	Leaf             int                 `json:"leaf"`
	WithDependencies int                 `json:"with_dependencies"`
	Ready            int                 `json:"ready"`
	Blocked          int                 `json:"blocked"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	tasks, err := s.store.List(ctx, persistence.Filter{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total: len(tasks),
		ByStatus: map[task.Status]int{
			task.StatusPending:    0,
			task.StatusInProgress: 0,
			task.StatusCompleted:  0,
			task.StatusCancelled:  0,
		},
	}

	parents := make(map[string]struct{})
	for _, t := range tasks {
		if t.ParentID != "" {
			parents[t.ParentID] = struct{}{}
		}
	}
	completed := completedNumbers(tasks)

	for i := range tasks {
		t := &tasks[i]
		stats.ByStatus[t.Status]++
		if t.ParentID == "" {
			stats.TopLevel++
		}
		if _, hasChildren := parents[t.ID]; !hasChildren {
			stats.Leaf++
		}
		if len(t.Dependencies) > 0 {
			stats.WithDependencies++
		}
		if isReady(t, completed) {
			stats.Ready++
		} else if isBlocked(t, completed) {
			stats.Blocked++
		}
	}

	if stats.Total > 0 {
		rate := float64(stats.ByStatus[task.StatusCompleted]) / float64(stats.Total) * 100
		stats.CompletionRate = int(math.Round(rate))
	}
	return stats, nil
}
