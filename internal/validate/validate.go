// Package validate checks task definitions against the definition schema
// and batch-level business rules before anything reaches storage.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/basket/taskforge/internal/task"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// definitionSchema is the JSON Schema for a single task definition. Shape
// and ranges follow the task model: dotted-decimal numbers, priority 0-10,
// completion percentage 0-100.
const definitionSchema = `{
	"type": "object",
	"required": ["number", "name"],
	"properties": {
		"number": {"type": "string", "pattern": "^\\d+(\\.\\d+)*$"},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"parent": {"type": "string"},
		"status": {"enum": ["pending", "in_progress", "completed", "cancelled"]},
		"priority": {"type": "integer", "minimum": 0, "maximum": 10},
		"files": {"type": "array", "items": {"type": "string"}},
		"docs_references": {"type": "array", "items": {"type": "string"}},
		"testing_strategy": {"type": "string"},
		"dependencies": {"type": "array", "items": {"type": "string", "pattern": "^\\d+(\\.\\d+)*$"}},
		"notes": {"type": "string"},
		"completion_percentage": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

// Summary counts a validation run.
type Summary struct {
	Total      int `json:"total"`
	ErrorCount int `json:"error_count"`
}

// Report is the structured outcome of validating a batch. It is a pure
// function of the batch plus the known task numbers; producing it performs
// no writes.
type Report struct {
	Valid   bool              `json:"valid"`
	Errors  []task.FieldError `json:"errors,omitempty"`
	Summary Summary           `json:"summary"`
}

// Err converts a failed report into a ValidationError, or nil when valid.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &task.ValidationError{Errors: r.Errors}
}

type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

func New() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(definitionSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal definition schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("definition.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("definition.json")
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	return &Validator{
		schema:  schema,
		printer: message.NewPrinter(language.English),
	}, nil
}

// ValidateOne validates a single definition against the schema and resolves
// its parent and dependencies against the known numbers.
func (v *Validator) ValidateOne(def task.Definition, known map[string]struct{}) Report {
	return v.ValidateBatch([]task.Definition{def}, known)
}

// ValidateBatch validates every definition plus the batch rules: no
// duplicate numbers within the batch, parents resolve against the store or
// an earlier batch entry, dependencies resolve against the store or any
// batch entry. known holds the numbers already persisted.
func (v *Validator) ValidateBatch(defs []task.Definition, known map[string]struct{}) Report {
	report := Report{Summary: Summary{Total: len(defs)}}

	batchNumbers := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		batchNumbers[def.Number] = struct{}{}
	}

	seen := make(map[string]struct{}, len(defs))
	earlier := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		report.Errors = append(report.Errors, v.schemaErrors(def)...)

		if _, dup := seen[def.Number]; dup {
			report.Errors = append(report.Errors, task.FieldError{
				Task:  def.Number,
				Field: "number",
				Error: "duplicate task number in batch",
			})
		}
		seen[def.Number] = struct{}{}

		if def.Parent != "" {
			if !resolves(def.Parent, known, earlier) {
				report.Errors = append(report.Errors, task.FieldError{
					Task:  def.Number,
					Field: "parent",
					Error: fmt.Sprintf("parent %q not found in store or earlier in batch", def.Parent),
				})
			}
		}
		for _, dep := range def.Dependencies {
			if !resolves(dep, known, batchNumbers) {
				report.Errors = append(report.Errors, task.FieldError{
					Task:  def.Number,
					Field: "dependencies",
					Error: fmt.Sprintf("dependency %q not found", dep),
				})
			}
		}
		earlier[def.Number] = struct{}{}
	}

	report.Summary.ErrorCount = len(report.Errors)
	report.Valid = len(report.Errors) == 0
	return report
}

func resolves(number string, known, batch map[string]struct{}) bool {
	if _, ok := known[number]; ok {
		return true
	}
	_, ok := batch[number]
	return ok
}

// schemaErrors runs the compiled JSON Schema over one definition and maps
// each leaf failure to a field-level error.
func (v *Validator) schemaErrors(def task.Definition) []task.FieldError {
	raw, err := json.Marshal(def)
	if err != nil {
		return []task.FieldError{{Task: def.Number, Field: "task", Error: err.Error()}}
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return []task.FieldError{{Task: def.Number, Field: "task", Error: err.Error()}}
	}
	err = v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []task.FieldError{{Task: def.Number, Field: "task", Error: err.Error()}}
	}
	var out []task.FieldError
	v.flatten(verr, def.Number, &out)
	return out
}

func (v *Validator) flatten(e *jsonschema.ValidationError, number string, out *[]task.FieldError) {
	if len(e.Causes) == 0 {
		field := strings.Join(e.InstanceLocation, ".")
		if field == "" {
			field = "task"
		}
		*out = append(*out, task.FieldError{
			Task:  number,
			Field: field,
			Error: e.ErrorKind.LocalizedString(v.printer),
		})
		return
	}
	for _, cause := range e.Causes {
		v.flatten(cause, number, out)
	}
}
