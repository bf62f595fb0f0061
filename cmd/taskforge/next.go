package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

// nextResult is the envelope the automation wrapper reads: the next
// actionable task (or null) plus the count of non-terminal tasks.
type nextResult struct {
	Task      any `json:"task"`
	Remaining int `json:"remaining"`
}

func runNextCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge next", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	current, err := a.svc.CurrentTask(ctx)
	if err != nil {
		return fail(err)
	}
	remaining, err := a.svc.RemainingCount(ctx)
	if err != nil {
		return fail(err)
	}

	if wantJSON(*jsonOut) {
		result := nextResult{Remaining: remaining}
		if current != nil {
			result.Task = current
		}
		return emitJSON(result)
	}
	if current == nil {
		fmt.Printf("no actionable task (%d remaining)\n", remaining)
		return 0
	}
	fmt.Println(renderTaskDetail(current))
	fmt.Printf("\n%d tasks remaining\n", remaining)
	return 0
}
