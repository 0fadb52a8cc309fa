// Package osa runs AppleScript through osascript.
package osa

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Runner executes scripts with an osascript-compatible interpreter.
type Runner struct {
	Command string // default "osascript"
	Verbose bool
}

func (r *Runner) command() string {
	if r == nil || r.Command == "" {
		return "osascript"
	}
	return r.Command
}

// Check reports whether scripts can run on this host.
func (r *Runner) Check() error {
	if runtime.GOOS != "darwin" && r.command() == "osascript" {
		return fmt.Errorf("AppleScript requires macOS, running on %s", runtime.GOOS)
	}
	if _, err := exec.LookPath(r.command()); err != nil {
		return fmt.Errorf("%s not found in PATH", r.command())
	}
	return nil
}

// Run executes script. Stderr lines are logged; the last one is folded
// into the returned error.
func (r *Runner) Run(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, r.command(), "-e", script)

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if r != nil && r.Verbose {
		slog.Debug("Running AppleScript", "script", strings.TrimSpace(script))
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.command(), err)
	}

	lastLine := make(chan string, 1)
	go func() {
		lastLine <- filterOutput(stderrPipe)
	}()

	last := <-lastLine
	if err := cmd.Wait(); err != nil {
		if last != "" {
			return fmt.Errorf("%w: %s", err, last)
		}
		return err
	}
	return nil
}

// filterOutput drains pipe and returns the last non-empty line.
func filterOutput(pipe io.Reader) string {
	var last string
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		last = line
		if strings.Contains(line, "error") {
			slog.Warn("AppleScript reported an error", "message", line)
		} else {
			slog.Debug("AppleScript output", "line", line)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Failed to read AppleScript output", "error", err)
	}
	return last
}

// Quote renders s as an AppleScript string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// FileRef is a statement binding filePath to the alias of a POSIX path.
func FileRef(path string) string {
	return fmt.Sprintf("set filePath to (POSIX file %s as alias)\n", Quote(path))
}
