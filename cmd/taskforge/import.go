package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/basket/taskforge/internal/task"
)

func readBatchFile(path string) (*task.Batch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	var batch task.Batch
	if err := json.Unmarshal(b, &batch); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	return &batch, nil
}

func runImportCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "path to a {\"tasks\": [...]} JSON file")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: taskforge import -file tasks.json")
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

	result, err := a.svc.BulkInsert(ctx, batch.Tasks)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		if rc := emitJSON(result); rc != 0 {
			return rc
		}
	} else {
		fmt.Printf("imported %d, skipped %d, failed %d (of %d)\n",
			result.Summary.Successful, result.Summary.Skipped, result.Summary.Failed, result.Summary.Total)
		for _, e := range result.Errors {
			fmt.Printf("  %s: %s\n", e.Number, e.Message)
		}
		for _, sk := range result.Skipped {
			fmt.Printf("  skipped %s: %s\n", sk.Number, sk.Reason)
		}
	}
	if !result.Success {
		return 1
	}
	return 0
}
