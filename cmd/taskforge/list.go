package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/task"
)

func runListCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	status := fs.String("status", "", "filter by status (pending, in_progress, completed, cancelled)")
	parent := fs.String("parent", "", "filter by parent task number")
	includeCompleted := fs.Bool("completed", true, "include completed tasks")
	includeCancelled := fs.Bool("cancelled", true, "include cancelled tasks")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	filter := persistence.Filter{
		IncludeCompleted: includeCompleted,
		IncludeCancelled: includeCancelled,
	}
	if *status != "" {
		st := task.Status(*status)
		if !st.Valid() {
			fmt.Fprintf(os.Stderr, "invalid status %q\n", *status)
			return 2
		}
		filter.Status = &st
	}
	if *parent != "" {
		p, err := a.svc.Get(ctx, *parent)
		if err != nil {
			return fail(err)
		}
		filter.Parent = &p.ID
	}

	tasks, err := a.svc.List(ctx, filter)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(tasks)
	}
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return 0
	}
	for i := range tasks {
		fmt.Println(renderTaskLine(&tasks[i]))
	}
	return 0
}
