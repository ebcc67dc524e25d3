package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/tailored-agentic-units/varbind/blockdef"
	"github.com/tailored-agentic-units/varbind/field"
	"github.com/tailored-agentic-units/varbind/observability"
	"github.com/tailored-agentic-units/varbind/workspace"
)

type options struct {
	configFile string
	blocksFile string
	newBlocks  string
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "Path to workspace config, JSON or YAML (required)")
	flag.StringVar(&opts.blocksFile, "blocks", "", "HCL block definitions (overrides config)")
	flag.StringVar(&opts.newBlocks, "new", "", "Comma-separated block types to instantiate")
	flag.BoolVar(&opts.verbose, "verbose", false, "Log every workspace event to stderr")
	flag.Parse()

	if opts.configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: varbind -config <file> [-blocks <file.hcl>] [-new type,...] [-verbose]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run builds the workspace, instantiates the requested blocks and writes the
// report to out. The workspace is disposed before run returns.
func run(opts options, out io.Writer) error {
	cfg, err := workspace.LoadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.blocksFile != "" {
		cfg.BlockDefinitions = []string{opts.blocksFile}
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	types, err := blockdef.LoadFiles(cfg.BlockDefinitions...)
	if err != nil {
		return fmt.Errorf("failed to load block definitions: %w", err)
	}

	ws, err := workspace.New(cfg, workspace.WithBlockTypes(types...))
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer ws.Dispose()

	if opts.newBlocks != "" {
		for _, typ := range strings.Split(opts.newBlocks, ",") {
			if _, err := ws.NewBlock(strings.TrimSpace(typ), ""); err != nil {
				return fmt.Errorf("failed to create block: %w", err)
			}
		}
	}

	report(ws, out)
	return nil
}

func report(ws *workspace.Workspace, out io.Writer) {
	fmt.Fprintf(out, "Workspace: %s\n", ws.ID())

	fmt.Fprintln(out, "\nVariables:")
	for _, v := range ws.AllVariables() {
		typ := v.Type()
		if typ == "" {
			typ = "(default)"
		}
		fmt.Fprintf(out, "  %s  %s : %s\n", v.ID(), v.Name(), typ)
	}

	if len(ws.Blocks()) == 0 {
		return
	}
	fmt.Fprintln(out, "\nBlocks:")
	for _, b := range ws.Blocks() {
		fmt.Fprintf(out, "  [%s] %s\n", b.Type(), b.ID())
		for _, f := range b.Fields() {
			if vf, ok := f.(*field.Variable); ok {
				fmt.Fprintf(out, "    %s -> %s (%s)\n", vf.Name(), vf.Text(), vf.Value())
			}
		}
	}
}
