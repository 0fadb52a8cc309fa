// Package subler drives the Subler queue on macOS through AppleScript.
package subler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mkvnmp4/lib/osa"
)

// ErrTimeout is returned when Subler does not finish the queue in time.
var ErrTimeout = errors.New("timed out waiting for Subler queue")

// killGrace is how long osascript may outlive its AppleScript timeout
// before the process is killed.
const killGrace = 5 * time.Second

// Client sends files to Subler's queue.
type Client struct {
	App    string // Application name, default "Subler"
	Runner *osa.Runner
}

func NewClient(runner *osa.Runner) *Client {
	return &Client{App: "Subler", Runner: runner}
}

// Enqueue adds one file to Subler's queue without starting it.
func (c *Client) Enqueue(ctx context.Context, path string) error {
	slog.Debug("Enqueueing file", "file", path, "app", c.app())
	if err := c.Runner.Run(ctx, c.enqueueScript(path)); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", path, err)
	}
	return nil
}

// StartQueue asks Subler to start working and returns immediately.
func (c *Client) StartQueue(ctx context.Context) error {
	if err := c.Runner.Run(ctx, c.startScript()); err != nil {
		return fmt.Errorf("failed to start queue: %w", err)
	}
	return nil
}

// StartQueueAndWait starts the queue and blocks until Subler reports that it
// is done, the timeout elapses, or ctx is cancelled.
func (c *Client) StartQueueAndWait(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("invalid wait timeout %s", timeout)
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout+killGrace)
	defer cancel()

	start := time.Now()
	err := c.Runner.Run(waitCtx, c.waitScript(timeout))
	switch {
	case err == nil:
		slog.Debug("Queue finished", "elapsed", time.Since(start).Round(time.Second))
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(waitCtx.Err(), context.DeadlineExceeded), isAppleEventTimeout(err):
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	default:
		return fmt.Errorf("queue wait failed: %w", err)
	}
}

// CheckAvailable verifies the host can automate Subler at all.
func (c *Client) CheckAvailable() error {
	if err := c.Runner.Check(); err != nil {
		return fmt.Errorf("cannot automate %s: %w", c.app(), err)
	}
	return nil
}

func (c *Client) app() string {
	if c.App == "" {
		return "Subler"
	}
	return c.App
}

// isAppleEventTimeout matches osascript's errAETimeout (-1712).
func isAppleEventTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), "-1712")
}
