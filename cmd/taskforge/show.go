package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runShowCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "force JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskforge show <number>")
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	t, err := a.svc.Get(ctx, fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(t)
	}
	fmt.Println(renderTaskDetail(t))
	return 0
}
