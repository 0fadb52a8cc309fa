package lib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Processor is the boundary to the external transcoding queue.
// StartQueueAndWait must return once the queue finishes or timeout elapses.
type Processor interface {
	Enqueue(ctx context.Context, path string) error
	StartQueue(ctx context.Context) error
	StartQueueAndWait(ctx context.Context, timeout time.Duration) error
}

// DryRunProcessor reports what would be sent without touching the queue.
type DryRunProcessor struct {
	Out io.Writer // default os.Stdout
}

func (p DryRunProcessor) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p DryRunProcessor) Enqueue(ctx context.Context, path string) error {
	fmt.Fprintf(p.out(), "DRY-RUN: would enqueue %s\n", path)
	return nil
}

func (DryRunProcessor) StartQueue(ctx context.Context) error {
	slog.Debug("DRY-RUN: would start queue")
	return nil
}

func (p DryRunProcessor) StartQueueAndWait(ctx context.Context, timeout time.Duration) error {
	fmt.Fprintf(p.out(), "DRY-RUN: would start queue and wait (timeout %s)\n", FormatDuration(timeout.Seconds()))
	return nil
}
