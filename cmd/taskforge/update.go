package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/basket/taskforge/internal/task"
)

func runUpdateCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "", "new name")
	description := fs.String("description", "", "new description")
	status := fs.String("status", "", "new status")
	priority := fs.Int("priority", -1, "new priority 0-10")
	notes := fs.String("notes", "", "new notes")
	deps := fs.String("deps", "", "comma-separated dependency numbers (replaces the set)")
	progress := fs.Int("progress", -1, "completion percentage 0-100")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskforge update <number> [options]")
		return 2
	}

	var partial task.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			partial.Name = name
		case "description":
			partial.Description = description
		case "status":
			st := task.Status(*status)
			partial.Status = &st
		case "priority":
			partial.Priority = priority
		case "notes":
			partial.Notes = notes
		case "progress":
			partial.CompletionPercentage = progress
		case "deps":
			var list []string
			for _, dep := range strings.Split(*deps, ",") {
				if trimmed := strings.TrimSpace(dep); trimmed != "" {
					list = append(list, trimmed)
				}
			}
			partial.Dependencies = &list
		}
	})

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	updated, err := a.svc.Update(ctx, fs.Arg(0), partial)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(updated)
	}
	fmt.Println(renderTaskDetail(updated))
	return 0
}
