package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

func runCompleteCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge complete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	notes := fs.String("notes", "", "completion notes")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskforge complete <number> [-notes ...]")
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	var notesPtr *string
	if *notes != "" {
		notesPtr = notes
	}
	result, err := a.svc.Complete(ctx, fs.Arg(0), notesPtr)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(result)
	}
	fmt.Printf("completed %s\n", result.Task.Number)
	if len(result.AutoCompleted) > 0 {
		fmt.Printf("auto-completed: %s\n", strings.Join(result.AutoCompleted, ", "))
	}
	return 0
}
