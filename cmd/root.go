// Package cmd wires the mkvnmp4 command line to the lib package.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type options struct {
	send        bool
	wait        bool
	remove      bool
	dup         bool
	verbose     int
	dryRun      bool
	maxDepth    int
	waitTimeout int
	configPath  string
}

// NewRootCommand builds the mkvnmp4 command. Exactly one of the mode flags
// may be given; none means --send.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd, _ := newRootCommand(stdin, stdout, stderr)
	return cmd
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *options) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mkvnmp4",
		Short: "Find MKV/M4V files that already have an MP4 and act on them",
		Long: `Scan the directories listed in the config file for .mkv and .m4v files.

Files without a matching .mp4 are sent to Subler's queue. Files that already
have one are duplicates and can be listed (--dup) or removed after a double
confirmation (--rm). --wait sends each file, waits for Subler to finish it and
then moves the original to the trash.

Config files are looked up in order:
  /etc/mkvnmp4.conf, /etc/mkvnmp4/mkvnmp4.conf, ~/.mkvnmp4.conf,
  ~/.config/mkvnmp4.conf, ~/.config/mkvnmp4/config.yaml
Plain files list one directory per line; lines starting with # are ignored.

Environment:
  WAIT_TIMEOUT  seconds to wait per file in --wait mode (default 600)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(stderr, opts.verbose)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
			defer stop()

			return run(ctx, cmd, opts, stdin, stdout)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolVarP(&opts.send, "send", "s", false, "Send files without an MP4 to Subler (default)")
	flags.BoolVarP(&opts.wait, "wait", "w", false, "Send each file, wait for Subler, then trash the original")
	flags.BoolVar(&opts.remove, "rm", false, "Remove MKV/M4V files that already have an MP4, after confirmation")
	flags.BoolVar(&opts.dup, "dup", false, "List MKV/M4V files that already have an MP4")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase verbosity")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Print actions without changing files or calling Subler")
	flags.IntVar(&opts.maxDepth, "maxdepth", 0, "Maximum directory depth to scan (default 4)")
	flags.IntVar(&opts.waitTimeout, "wait-timeout", 0, "Seconds to wait per file in --wait mode (default 600)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file to use instead of the default locations")
	cmd.MarkFlagsMutuallyExclusive("send", "wait", "rm", "dup")

	return cmd, opts
}

// Execute runs the command with process stdio and returns the exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Error("Interrupted, stopping")
			return 1
		}
		fmt.Fprintf(stderr, "mkvnmp4: %v\n", err)
		return 1
	}
	return 0
}
