// Package main is the entry point for the notebookconcat span inspector.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/notebookconcat/internal/applog"
	"github.com/dshills/notebookconcat/internal/concat"
	"github.com/dshills/notebookconcat/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	ScriptPath  string
	Interactive string
	NoUI        bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg := concat.DefaultConfig()
	if opts.Interactive != "" {
		cfg.InteractiveScheme = opts.Interactive
	}
	engine := concat.NewEngine(cfg)

	logHandler := &logListener{logger: applog.Default().WithComponent("notebookconcat")}
	engine.AddListener(logHandler)

	if opts.ScriptPath != "" {
		console, err := script.NewConsole(engine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start console: %v\n", err)
			return 1
		}
		defer console.Close()

		if err := console.DoFile(opts.ScriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: script failed: %v\n", err)
			return 1
		}
	}

	if opts.NoUI || !term.IsTerminal(int(os.Stdout.Fd())) {
		printDocument(engine)
		return 0
	}

	insp, err := newInspector(engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start inspector: %v\n", err)
		return 1
	}
	engine.AddListener(insp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- insp.run() }()

	select {
	case <-ctx.Done():
		return 0
	case err := <-done:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
}

// logListener logs one line per accepted mutation. It is registered in
// every mode, with or without the inspector.
type logListener struct {
	logger *applog.Logger
}

func (l *logListener) Handle(ctx context.Context, event any) error {
	ev, ok := event.(concat.OutboundChangeEvent)
	if !ok {
		return nil
	}
	l.logger.Info("document changed: version=%d uri=%s changes=%d",
		ev.TextDocument.Version, ev.TextDocument.URI, len(ev.ContentChanges))
	return nil
}

func printDocument(engine *concat.Engine) {
	doc := engine.Document()
	fmt.Printf("version %d — %s\n", doc.Version(), doc.URI())
	for i, cellID := range doc.Cells() {
		fmt.Printf("cell %d: %s\n", i, cellID)
		if rng, ok := doc.ConcatRangeOf(cellID); ok {
			fmt.Printf("  concat [%d:%d .. %d:%d]\n", rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character)
		}
		if rng, ok := doc.RealRangeOf(cellID); ok {
			fmt.Printf("  real   [%d:%d .. %d:%d]\n", rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character)
		}
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ScriptPath, "script", "", "Path to a Lua script to run against the engine before display")
	flag.StringVar(&opts.ScriptPath, "s", "", "Path to a Lua script (shorthand)")
	flag.StringVar(&opts.Interactive, "interactive-scheme", "", "Override the interactive input cell's scheme token")
	flag.BoolVar(&opts.NoUI, "no-ui", false, "Print the span list once and exit instead of launching the inspector")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "notebookconcat — concat document span inspector\n\n")
		fmt.Fprintf(os.Stderr, "Usage: notebookconcat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  notebookconcat -script scenario.lua   Seed cells from a script, then inspect\n")
		fmt.Fprintf(os.Stderr, "  notebookconcat -no-ui -script x.lua   Seed and print once, no UI\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("notebookconcat %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}
