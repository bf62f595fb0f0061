package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/basket/taskforge/internal/config"
	"github.com/basket/taskforge/internal/persistence"
	"github.com/basket/taskforge/internal/service"
	"github.com/basket/taskforge/internal/telemetry"
	"github.com/basket/taskforge/internal/validate"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.1-dev"

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage of %s:

SUBCOMMANDS:
  %s add -number 1.0 -name "..."   Create a task
  %s show <number>                 Show one task
  %s list [options]                List tasks
  %s update <number> [options]     Update task fields
  %s complete <number> [-notes]    Complete a task (cascades upward)
  %s delete <number>               Delete a task and its subtree
  %s next                          Show the next actionable task
  %s stats                         Show aggregate statistics
  %s import -file tasks.json       Bulk import a {"tasks": [...]} file
  %s validate -file tasks.json     Validate an import file without writing

FLAGS (per subcommand, see <cmd> -h):
  -json                            Force JSON output

ENVIRONMENT VARIABLES:
  TASKFORGE_HOME    Data directory (default: ~/.taskforge)
  TASKFORGE_DB      SQLite file path override
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0],
		os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "-h", "--help":
		printUsage()
	case "version":
		fmt.Println(Version)
	case "add":
		os.Exit(runAddCommand(ctx, args[1:]))
	case "show":
		os.Exit(runShowCommand(ctx, args[1:]))
	case "list":
		os.Exit(runListCommand(ctx, args[1:]))
	case "update":
		os.Exit(runUpdateCommand(ctx, args[1:]))
	case "complete":
		os.Exit(runCompleteCommand(ctx, args[1:]))
	case "delete":
		os.Exit(runDeleteCommand(ctx, args[1:]))
	case "next":
		os.Exit(runNextCommand(ctx, args[1:]))
	case "stats":
		os.Exit(runStatsCommand(ctx, args[1:]))
	case "import":
		os.Exit(runImportCommand(ctx, args[1:]))
	case "validate":
		os.Exit(runValidateCommand(ctx, args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg     *config.Config
	store   *persistence.Store
	svc     *service.Service
	closers []io.Closer
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, logCloser, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, cfg.Quiet)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	store, err := persistence.Open(cfg.DBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	validator, err := validate.New()
	if err != nil {
		_ = store.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("init validator: %w", err)
	}
	return &app{
		cfg:     cfg,
		store:   store,
		svc:     service.New(store, validator, logger),
		closers: []io.Closer{store, logCloser},
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}
