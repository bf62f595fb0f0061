package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/basket/taskforge/internal/validate"
)

func runValidateCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "path to a {\"tasks\": [...]} JSON file")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: taskforge validate -file tasks.json")
		return 2
	}

	batch, err := readBatchFile(*file)
	if err != nil {
		return fail(err)
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	known, err := a.store.Numbers(ctx)
	if err != nil {
		return fail(err)
	}
	validator, err := validate.New()
	if err != nil {
		return fail(err)
	}
	report := validator.ValidateBatch(batch.Tasks, known)

	if wantJSON(*jsonOut) {
		if rc := emitJSON(report); rc != 0 {
			return rc
		}
	} else if report.Valid {
		fmt.Printf("valid: %d tasks\n", report.Summary.Total)
	} else {
		fmt.Printf("invalid: %d errors in %d tasks\n", report.Summary.ErrorCount, report.Summary.Total)
		for _, fe := range report.Errors {
			fmt.Printf("  %s %s: %s\n", fe.Task, fe.Field, fe.Error)
		}
	}
	if !report.Valid {
		return 1
	}
	return 0
}
