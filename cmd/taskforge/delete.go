package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runDeleteCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskforge delete <number>")
		return 2
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	if err := a.svc.Delete(ctx, fs.Arg(0)); err != nil {
		return fail(err)
	}
	fmt.Printf("deleted %s and its subtree\n", fs.Arg(0))
	return 0
}
