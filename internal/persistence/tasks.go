package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/basket/taskforge/internal/task"
	"github.com/google/uuid"
)

// querier abstracts *sql.DB and *sql.Tx so read helpers work in and out of
// transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const taskColumns = `id, task_number, name, description, notes, completion_notes, testing_strategy,
	status, priority, parent_id, dependencies, files, docs_references, completion_percentage,
	created_at, updated_at`

// Filter narrows List results. Nil pointer fields are ignored. Parent
// filters by parent task id; the empty string selects root tasks.
type Filter struct {
	Status           *task.Status
	Parent           *string
	IncludeCompleted *bool // nil means include
	IncludeCancelled *bool // nil means include
}

func scanTask(scanFn func(dest ...any) error, t *task.Task) error {
	var (
		parentID   sql.NullString
		deps       string
		files      string
		docs       string
		completion sql.NullInt64
	)
	if err := scanFn(
		&t.ID,
		&t.Number,
		&t.Name,
		&t.Description,
		&t.Notes,
		&t.CompletionNotes,
		&t.TestingStrategy,
		&t.Status,
		&t.Priority,
		&parentID,
		&deps,
		&files,
		&docs,
		&completion,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return err
	}
	if parentID.Valid {
		t.ParentID = parentID.String
	}
	if completion.Valid {
		v := int(completion.Int64)
		t.CompletionPercentage = &v
	}
	if err := unmarshalList(deps, &t.Dependencies); err != nil {
		return err
	}
	if err := unmarshalList(files, &t.Files); err != nil {
		return err
	}
	if err := unmarshalList(docs, &t.DocsReferences); err != nil {
		return err
	}
	return nil
}

func unmarshalList(col string, dst *[]string) error {
	if col == "" || col == "[]" {
		return nil
	}
	if err := json.Unmarshal([]byte(col), dst); err != nil {
		return fmt.Errorf("decode json list: %w", err)
	}
	return nil
}

func marshalList(items []string) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode json list: %w", err)
	}
	return string(b), nil
}

// Insert persists t, assigning its surrogate id and timestamps. The caller
// must have validated the row; a duplicate task number surfaces as a
// constraint error here.
func (s *Store) Insert(ctx context.Context, t *task.Task) (*task.Task, error) {
	var out *task.Task
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		inserted, err := s.InsertTx(ctx, tx, t)
		if err != nil {
			return err
		}
		out = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InsertTx is Insert inside a caller-owned transaction, used by bulk import
// to keep a whole batch in one atomic unit.
func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, t *task.Task) (*task.Task, error) {
	row := *t
	row.ID = uuid.NewString()
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	if row.Status == "" {
		row.Status = task.StatusPending
	}

	deps, err := marshalList(row.Dependencies)
	if err != nil {
		return nil, err
	}
	files, err := marshalList(row.Files)
	if err != nil {
		return nil, err
	}
	docs, err := marshalList(row.DocsReferences)
	if err != nil {
		return nil, err
	}

	var parentID any
	if row.ParentID != "" {
		parentID = row.ParentID
	}
	var completion any
	if row.CompletionPercentage != nil {
		completion = *row.CompletionPercentage
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, task_number, name, description, notes, completion_notes, testing_strategy,
			status, priority, parent_id, dependencies, files, docs_references, completion_percentage,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, row.ID, row.Number, row.Name, row.Description, row.Notes, row.CompletionNotes, row.TestingStrategy,
		row.Status, row.Priority, parentID, deps, files, docs, completion,
		row.CreatedAt, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert task %s: %w", row.Number, err)
	}
	return &row, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*task.Task, error) {
	return findTask(ctx, s.db, `WHERE id = ?`, id)
}

func (s *Store) FindByNumber(ctx context.Context, number string) (*task.Task, error) {
	return findTask(ctx, s.db, `WHERE task_number = ?`, number)
}

func (s *Store) FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*task.Task, error) {
	return findTask(ctx, tx, `WHERE id = ?`, id)
}

func (s *Store) FindByNumberTx(ctx context.Context, tx *sql.Tx, number string) (*task.Task, error) {
	return findTask(ctx, tx, `WHERE task_number = ?`, number)
}

func findTask(ctx context.Context, q querier, where string, arg any) (*task.Task, error) {
	var t task.Task
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks `+where+`;`, arg)
	if err := scanTask(row.Scan, &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &t, nil
}

// Update merges partial into the task identified by number and bumps
// updated_at. Returns task.ErrNotFound when the number is absent.
func (s *Store) Update(ctx context.Context, number string, partial task.Update) (*task.Task, error) {
	var out *task.Task
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		t, err := s.FindByNumberTx(ctx, tx, number)
		if err != nil {
			return err
		}
		applyUpdate(t, partial)
		t.UpdatedAt = time.Now().UTC()
		if err := writeTaskTx(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyUpdate(t *task.Task, u task.Update) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.CompletionNotes != nil {
		t.CompletionNotes = *u.CompletionNotes
	}
	if u.TestingStrategy != nil {
		t.TestingStrategy = *u.TestingStrategy
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Dependencies != nil {
		t.Dependencies = *u.Dependencies
	}
	if u.Files != nil {
		t.Files = *u.Files
	}
	if u.DocsReferences != nil {
		t.DocsReferences = *u.DocsReferences
	}
	if u.CompletionPercentage != nil {
		v := *u.CompletionPercentage
		t.CompletionPercentage = &v
	}
}

func writeTaskTx(ctx context.Context, tx *sql.Tx, t *task.Task) error {
	deps, err := marshalList(t.Dependencies)
	if err != nil {
		return err
	}
	files, err := marshalList(t.Files)
	if err != nil {
		return err
	}
	docs, err := marshalList(t.DocsReferences)
	if err != nil {
		return err
	}
	var completion any
	if t.CompletionPercentage != nil {
		completion = *t.CompletionPercentage
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, description = ?, notes = ?, completion_notes = ?, testing_strategy = ?,
			status = ?, priority = ?, dependencies = ?, files = ?, docs_references = ?,
			completion_percentage = ?, updated_at = ?
		WHERE id = ?;
	`, t.Name, t.Description, t.Notes, t.CompletionNotes, t.TestingStrategy,
		t.Status, t.Priority, deps, files, docs,
		completion, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.Number, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected != 1 {
		return task.ErrNotFound
	}
	return nil
}

// SetStatusTx updates only status (and optionally completion notes) of a
// task row, bumping updated_at. Used by the completion cascade.
func (s *Store) SetStatusTx(ctx context.Context, tx *sql.Tx, id string, status task.Status, completionNotes *string) error {
	notesValue := sql.NullString{}
	if completionNotes != nil {
		notesValue.Valid = true
		notesValue.String = *completionNotes
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?,
			completion_notes = CASE WHEN ? THEN ? ELSE completion_notes END,
			updated_at = ?
		WHERE id = ?;
	`, status, notesValue.Valid, notesValue.String, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("status rows affected: %w", err)
	}
	if affected != 1 {
		return task.ErrNotFound
	}
	return nil
}

// Delete removes the task with the given number and its whole descendant
// subtree in one transaction. It returns false, not an error, when the
// number is already absent.
func (s *Store) Delete(ctx context.Context, number string) (bool, error) {
	found := false
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		t, err := s.FindByNumberTx(ctx, tx, number)
		if errors.Is(err, task.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := s.DeleteSubtreeTx(ctx, tx, t.ID); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteSubtreeTx deletes rootID and every descendant, walking the tree
// with an explicit id stack so the transaction scope stays bounded. Returns
// the number of rows removed.
func (s *Store) DeleteSubtreeTx(ctx context.Context, tx *sql.Tx, rootID string) (int, error) {
	ids := []string{rootID}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rows, err := tx.QueryContext(ctx, `SELECT id FROM tasks WHERE parent_id = ?;`, id)
		if err != nil {
			return 0, fmt.Errorf("select children: %w", err)
		}
		var children []string
		for rows.Next() {
			var child string
			if err := rows.Scan(&child); err != nil {
				rows.Close()
				return 0, fmt.Errorf("scan child id: %w", err)
			}
			children = append(children, child)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return 0, fmt.Errorf("child rows: %w", err)
		}
		rows.Close()
		ids = append(ids, children...)
		stack = append(stack, children...)
	}

	// Delete leaves first so the parent_id self-reference never dangles.
	for i := len(ids) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, ids[i]); err != nil {
			return 0, fmt.Errorf("delete task %s: %w", ids[i], err)
		}
	}
	return len(ids), nil
}

// List returns tasks matching the filter in natural task-number order.
func (s *Store) List(ctx context.Context, filter Filter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any
	if filter.Status != nil {
		conds = append(conds, `status = ?`)
		args = append(args, *filter.Status)
	}
	if filter.Parent != nil {
		if *filter.Parent == "" {
			conds = append(conds, `parent_id IS NULL`)
		} else {
			conds = append(conds, `parent_id = ?`)
			args = append(args, *filter.Parent)
		}
	}
	if filter.IncludeCompleted != nil && !*filter.IncludeCompleted {
		conds = append(conds, `status != ?`)
		args = append(args, task.StatusCompleted)
	}
	if filter.IncludeCancelled != nil && !*filter.IncludeCancelled {
		conds = append(conds, `status != ?`)
		args = append(args, task.StatusCancelled)
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}

	rows, err := s.db.QueryContext(ctx, query+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		var t task.Task
		if err := scanTask(rows.Scan, &t); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	slices.SortFunc(out, func(a, b task.Task) int {
		return task.CompareNumbers(a.Number, b.Number)
	})
	return out, nil
}

// ChildrenTx returns the direct children of parentID inside a transaction,
// used by the completion cascade to check sibling state consistently.
func (s *Store) ChildrenTx(ctx context.Context, tx *sql.Tx, parentID string) ([]task.Task, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_id = ?;`, parentID)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		var t task.Task
		if err := scanTask(rows.Scan, &t); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("child rows: %w", err)
	}
	return out, nil
}

// Numbers returns the set of task numbers currently persisted. The
// validator resolves parent and dependency references against it.
func (s *Store) Numbers(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_number FROM tasks;`)
	if err != nil {
		return nil, fmt.Errorf("query task numbers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan task number: %w", err)
		}
		out[number] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task number rows: %w", err)
	}
	return out, nil
}
