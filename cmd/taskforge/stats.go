package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runStatsCommand(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("taskforge stats", flag.ContinueOnError)
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

	stats, err := a.svc.Stats(ctx)
	if err != nil {
		return fail(err)
	}
	if wantJSON(*jsonOut) {
		return emitJSON(stats)
	}
	fmt.Println(renderStats(stats))
	return 0
}
