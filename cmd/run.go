package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mkvnmp4/lib"
	"mkvnmp4/lib/osa"
	"mkvnmp4/lib/subler"
)

func (o *options) action() lib.Action {
	switch {
	case o.wait:
		return lib.ActionWait
	case o.remove:
		return lib.ActionRemove
	case o.dup:
		return lib.ActionList
	default:
		return lib.ActionSend
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := buildConfig(cmd, opts, os.Getenv)
	if err != nil {
		return err
	}

	roots, err := lib.ExistingRoots(cfg.Roots)
	if err != nil {
		return err
	}
	cfg.Roots = roots

	runner := &osa.Runner{Verbose: opts.verbose > 1}
	var proc lib.Processor = subler.NewClient(runner)
	if cfg.DryRun {
		proc = lib.DryRunProcessor{Out: stdout}
	}
	if err := lib.Preflight(cfg, proc, runner); err != nil {
		return err
	}

	slog.Info("Starting", "action", cfg.Action, "roots", len(cfg.Roots), "dry_run", cfg.DryRun)

	app := lib.NewApp(cfg, proc,
		lib.NewRemover(cfg.Trash, cfg.DryRun, runner, stdout),
		lib.NewGate(stdin, stdout, terminalWidth(stdout)))
	app.Out = stdout
	app.ProgressOut = cmd.ErrOrStderr()

	return app.Run(ctx)
}

// buildConfig layers defaults, the config file, the environment and flags.
func buildConfig(cmd *cobra.Command, opts *options, getenv func(string) string) (lib.Config, error) {
	cfg := lib.DefaultConfig()
	cfg.Action = opts.action()
	cfg.DryRun = opts.dryRun
	cfg.Verbose = opts.verbose

	path := opts.configPath
	if path == "" {
		found, err := lib.FindConfigFile(lib.ConfigPaths())
		if err != nil {
			return cfg, err
		}
		path = found
	}
	slog.Debug("Using config file", "path", path)

	fc, err := lib.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.WithFile(fc)

	cfg, err = cfg.WithEnv(getenv)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("maxdepth") {
		if opts.maxDepth < 1 {
			return cfg, fmt.Errorf("--maxdepth must be at least 1")
		}
		cfg.MaxDepth = opts.maxDepth
	}
	if flags.Changed("wait-timeout") {
		if opts.waitTimeout < 1 {
			return cfg, fmt.Errorf("--wait-timeout must be at least 1 second")
		}
		cfg.WaitTimeout = time.Duration(opts.waitTimeout) * time.Second
	}
	return cfg, nil
}

// terminalWidth returns the width of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
