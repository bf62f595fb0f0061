package validate_test

import (
	"errors"
	"testing"

	"github.com/basket/taskforge/internal/task"
	"github.com/basket/taskforge/internal/validate"
)

func newValidator(t *testing.T) *validate.Validator {
	t.Helper()
	v, err := validate.New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func known(numbers ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		out[n] = struct{}{}
	}
	return out
}

func hasFieldError(report validate.Report, number, field string) bool {
	for _, fe := range report.Errors {
		if fe.Task == number && fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidateBatch_ValidBatch(t *testing.T) {
	v := newValidator(t)

	report := v.ValidateBatch([]task.Definition{
		{Number: "1.0", Name: "root"},
		{Number: "1.1", Name: "child", Parent: "1.0"},
		{Number: "1.2", Name: "sibling", Parent: "1.0", Dependencies: []string{"1.1"}},
	}, known())
	if !report.Valid {
		t.Fatalf("expected valid, got errors: %v", report.Errors)
	}
	if report.Summary.Total != 3 || report.Summary.ErrorCount != 0 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if err := report.Err(); err != nil {
		t.Fatalf("expected nil Err for valid report, got %v", err)
	}
}

func TestValidateBatch_DuplicateNumberInBatch(t *testing.T) {
	v := newValidator(t)

	report := v.ValidateBatch([]task.Definition{
		{Number: "1.0", Name: "first"},
		{Number: "1.0", Name: "second"},
	}, known())
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	if !hasFieldError(report, "1.0", "number") {
		t.Fatalf("expected duplicate-number error, got %v", report.Errors)
	}
	if !errors.Is(report.Err(), task.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", report.Err())
	}
}

func TestValidateBatch_DuplicateAgainstStoreIsNotAnError(t *testing.T) {
	v := newValidator(t)

	// A number already persisted is a skip at import time, not a
	// validation failure.
	report := v.ValidateBatch([]task.Definition{
		{Number: "1.0", Name: "already there"},
	}, known("1.0"))
	if !report.Valid {
		t.Fatalf("expected valid, got %v", report.Errors)
	}
}

func TestValidateBatch_ParentMustBeEarlierOrPersisted(t *testing.T) {
	v := newValidator(t)

	// Parent appears later in the batch: invalid.
	report := v.ValidateBatch([]task.Definition{
		{Number: "1.1", Name: "child", Parent: "1.0"},
		{Number: "1.0", Name: "root"},
	}, known())
	if report.Valid {
		t.Fatalf("expected invalid report for forward parent reference")
	}
	if !hasFieldError(report, "1.1", "parent") {
		t.Fatalf("expected parent error, got %v", report.Errors)
	}

	// Same batch, parent persisted: valid.
	report = v.ValidateBatch([]task.Definition{
		{Number: "1.1", Name: "child", Parent: "1.0"},
	}, known("1.0"))
	if !report.Valid {
		t.Fatalf("expected valid, got %v", report.Errors)
	}
}

func TestValidateBatch_DependenciesResolveAgainstWholeBatch(t *testing.T) {
	v := newValidator(t)

	// Unlike parents, a dependency may point forward in the batch.
	report := v.ValidateBatch([]task.Definition{
		{Number: "1.0", Name: "a", Dependencies: []string{"2.0"}},
		{Number: "2.0", Name: "b"},
	}, known())
	if !report.Valid {
		t.Fatalf("expected valid, got %v", report.Errors)
	}

	report = v.ValidateBatch([]task.Definition{
		{Number: "1.0", Name: "a", Dependencies: []string{"9.9"}},
	}, known())
	if report.Valid {
		t.Fatalf("expected invalid for unknown dependency")
	}
	if !hasFieldError(report, "1.0", "dependencies") {
		t.Fatalf("expected dependencies error, got %v", report.Errors)
	}
}

func TestValidateBatch_SchemaViolations(t *testing.T) {
	v := newValidator(t)
	bad := 11

	report := v.ValidateBatch([]task.Definition{
		{Number: "not-a-number", Name: "bad number"},
		{Number: "1.0", Name: ""},
		{Number: "2.0", Name: "bad priority", Priority: &bad},
		{Number: "3.0", Name: "bad status", Status: task.Status("done")},
	}, known())
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	if report.Summary.ErrorCount < 4 {
		t.Fatalf("expected at least 4 errors, got %d: %v", report.Summary.ErrorCount, report.Errors)
	}
	if !hasFieldError(report, "not-a-number", "number") {
		t.Fatalf("expected number format error, got %v", report.Errors)
	}
	if !hasFieldError(report, "2.0", "priority") {
		t.Fatalf("expected priority range error, got %v", report.Errors)
	}
	if !hasFieldError(report, "3.0", "status") {
		t.Fatalf("expected status enum error, got %v", report.Errors)
	}
}

func TestValidateOne(t *testing.T) {
	v := newValidator(t)

	report := v.ValidateOne(task.Definition{Number: "1.0", Name: "ok"}, known())
	if !report.Valid {
		t.Fatalf("expected valid, got %v", report.Errors)
	}

	report = v.ValidateOne(task.Definition{Number: "1.0"}, known())
	if report.Valid {
		t.Fatalf("expected invalid for missing name")
	}
}
