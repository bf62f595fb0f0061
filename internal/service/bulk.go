package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/basket/taskforge/internal/task"
)

// SkippedTask records a batch entry that was not inserted, with the reason.
type SkippedTask struct {
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// BulkError records a hard failure for one batch entry.
type BulkError struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

type BulkSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// BulkResult is the bulk import envelope. Success is true iff no hard
// failures occurred; skipped-as-duplicate entries do not count against it.
type BulkResult struct {
	Success  bool          `json:"success"`
	Inserted []task.Task   `json:"inserted"`
	Skipped  []SkippedTask `json:"skipped"`
	Errors   []BulkError   `json:"errors"`
	Summary  BulkSummary   `json:"summary"`
}

// BulkInsert validates the whole batch first; any validation failure aborts
// the import with zero rows written and per-task failures in the envelope.
// A valid batch is inserted inside one transaction, in batch order, so a
// child can follow its newly-inserted parent. Entries whose number already
// exists in the store are skipped and recorded, not failed.
func (s *Service) BulkInsert(ctx context.Context, defs []task.Definition) (*BulkResult, error) {
	result := &BulkResult{Summary: BulkSummary{Total: len(defs)}}
	if len(defs) == 0 {
		result.Success = true
		return result, nil
	}

	known, err := s.store.Numbers(ctx)
	if err != nil {
		return nil, err
	}

	report := s.validator.ValidateBatch(defs, known)
	if !report.Valid {
		failed := make(map[string]struct{})
		for _, fe := range report.Errors {
			result.Errors = append(result.Errors, BulkError{
				Number:  fe.Task,
				Message: fmt.Sprintf("%s: %s", fe.Field, fe.Error),
			})
			failed[fe.Task] = struct{}{}
		}
		result.Summary.Failed = len(failed)
		s.logger.Warn("bulk import aborted by validation",
			"total", len(defs), "errors", report.Summary.ErrorCount)
		return result, nil
	}

	err = s.store.WithTx(ctx, func(tx *sql.Tx) error {
		// The closure may re-run on a busy retry; start from scratch.
		result.Inserted = nil
		result.Skipped = nil

		numberToID := make(map[string]string, len(defs))
		for _, def := range defs {
			if _, exists := known[def.Number]; exists {
				result.Skipped = append(result.Skipped, SkippedTask{
					Number: def.Number,
					Reason: "task number already exists",
				})
				continue
			}

			var parentID string
			if def.Parent != "" {
				if id, ok := numberToID[def.Parent]; ok {
					parentID = id
				} else {
					parent, err := s.store.FindByNumberTx(ctx, tx, def.Parent)
					if err != nil {
						return fmt.Errorf("resolve parent %q: %w", def.Parent, err)
					}
					parentID = parent.ID
				}
			}

			inserted, err := s.store.InsertTx(ctx, tx, definitionToTask(def, parentID))
			if err != nil {
				return err
			}
			numberToID[def.Number] = inserted.ID
			result.Inserted = append(result.Inserted, *inserted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Success = true
	result.Summary.Successful = len(result.Inserted)
	result.Summary.Skipped = len(result.Skipped)
	s.logger.Info("bulk import finished",
		"total", len(defs), "inserted", result.Summary.Successful, "skipped", result.Summary.Skipped)
	return result, nil
}
