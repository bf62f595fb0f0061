package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/basket/taskforge/internal/task"
)

func runAddCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	number := fs.String("number", "", "task number (dotted decimal, e.g. 1.0)")
	name := fs.String("name", "", "task name")
	description := fs.String("description", "", "task description")
	parent := fs.String("parent", "", "parent task number")
	priority := fs.Int("priority", -1, "priority 0-10")
	deps := fs.String("deps", "", "comma-separated dependency task numbers")
	notes := fs.String("notes", "", "free-form notes")
	testing := fs.String("testing", "", "testing strategy")
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *number == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "usage: taskforge add -number <n> -name <name> [options]")
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	def := task.Definition{
		Number:          *number,
		Name:            *name,
		Description:     *description,
		Parent:          *parent,
		Notes:           *notes,
		TestingStrategy: *testing,
	}
	if *priority >= 0 {
		def.Priority = priority
	} else {
		def.Priority = &a.cfg.DefaultPriority
	}
	if *deps != "" {
		for _, dep := range strings.Split(*deps, ",") {
			def.Dependencies = append(def.Dependencies, strings.TrimSpace(dep))
		}
	}

	created, err := a.svc.Create(ctx, def)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(created)
	}
	fmt.Println(renderTaskDetail(created))
	return 0
}
