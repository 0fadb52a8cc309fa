package lib

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// App routes one invocation to the selected action.
type App struct {
	Config      Config
	Finder      *Finder
	Processor   Processor
	Remover     Remover
	Gate        *Gate
	Out         io.Writer // listings and per-file announcements
	ProgressOut io.Writer // progress bar, nil to disable

	state State
}

func NewApp(cfg Config, proc Processor, remover Remover, gate *Gate) *App {
	return &App{
		Config:      cfg,
		Finder:      NewFinder(NewFileScanner(cfg.MaxDepth, cfg.IgnoreSubstring)),
		Processor:   proc,
		Remover:     remover,
		Gate:        gate,
		Out:         os.Stdout,
		ProgressOut: os.Stderr,
	}
}

// State returns the last state the run reached.
func (a *App) State() State {
	return a.state
}

func (a *App) transition(s State) {
	slog.Debug("State change", "from", a.state, "to", s)
	a.state = s
}

// Run scans every root once and performs the configured action. It returns
// ctx.Err() when interrupted; no further enqueue or removal happens after that.
func (a *App) Run(ctx context.Context) error {
	slog.Debug("Application starting", "config", fmt.Sprintf("%+v", a.Config))
	a.state = StateIdle

	a.transition(StateScanning)
	found := a.Finder.ClassifyAll(ctx, a.Config.Roots)
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("Scan completed", "roots", len(a.Config.Roots),
		"duplicates", len(found.Duplicates), "pending", len(found.Pending))

	a.transition(stateFor(a.Config.Action))
	var err error
	switch a.Config.Action {
	case ActionList:
		a.list(found.Duplicates)
	case ActionRemove:
		err = a.confirmAndRemove(ctx, found.Duplicates)
	case ActionWait:
		err = a.enqueueAndWait(ctx, found.Pending)
	default:
		err = a.enqueue(ctx, found.Pending)
	}
	if err != nil {
		return err
	}

	a.transition(StateDone)
	return nil
}

func (a *App) list(records []DuplicateRecord) {
	if len(records) == 0 {
		slog.Info("No duplicates found")
		return
	}
	for _, rec := range records {
		fmt.Fprintln(a.Out, rec.Path)
	}
}

func (a *App) enqueue(ctx context.Context, pending []DuplicateRecord) error {
	if len(pending) == 0 {
		slog.Info("Nothing to send")
		return nil
	}

	sent := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Enqueueing %s\n", rec.Path)
		if err := a.Processor.Enqueue(ctx, rec.Path); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to enqueue file", "file", rec.Path, "error", err)
			continue
		}
		sent++
	}

	if sent == 0 {
		slog.Warn("No file could be enqueued")
		return nil
	}
	if err := a.Processor.StartQueue(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to start queue: %w", err)
	}
	slog.Info("Queue started", "files", sent)
	return nil
}

func (a *App) enqueueAndWait(ctx context.Context, pending []DuplicateRecord) error {
	if len(pending) == 0 {
		slog.Info("Nothing to send")
		return nil
	}

	start := time.Now()
	bar := a.newProgressBar(len(pending), "Converting")
	defer bar.Finish()

	removed, failed := 0, 0
	for i, rec := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := a.processAndRemove(ctx, rec, i+1, len(pending))
		if err != nil {
			return err
		}
		if ok {
			removed++
		} else {
			failed++
		}
		bar.Add(1)
	}

	slog.Info("Wait run completed", "removed", removed, "skipped", failed, "elapsed", FormatElapsed(start))
	return nil
}

// processAndRemove handles one file. It returns false when the original
// was kept and an error only when the run must stop.
func (a *App) processAndRemove(ctx context.Context, rec DuplicateRecord, n, total int) (bool, error) {
	if !exists(rec.Path) {
		slog.Info("File vanished before processing, skipping", "file", rec.Path)
		return false, nil
	}

	fmt.Fprintf(a.Out, "[%d/%d] Enqueueing %s and waiting (timeout %s)\n",
		n, total, rec.Path, FormatDuration(a.Config.WaitTimeout.Seconds()))
	if err := a.Processor.Enqueue(ctx, rec.Path); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		slog.Error("Failed to enqueue file", "file", rec.Path, "error", err)
		return false, nil
	}

	if err := a.Processor.StartQueueAndWait(ctx, a.Config.WaitTimeout); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		slog.Error("Conversion did not complete, keeping original", "file", rec.Path, "error", err)
		return false, nil
	}

	// Interrupts arriving while the queue finished still cancel the removal.
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !exists(rec.Path) {
		slog.Debug("Original already gone", "file", rec.Path)
		return true, nil
	}
	fmt.Fprintf(a.Out, "Removing %s\n", rec.Path)
	if err := a.Remover.Remove(ctx, rec.Path); err != nil {
		slog.Error("Failed to remove original", "file", rec.Path, "error", err)
		return false, nil
	}
	return true, nil
}

func (a *App) confirmAndRemove(ctx context.Context, records []DuplicateRecord) error {
	if a.Config.DryRun {
		if len(records) == 0 {
			fmt.Fprintln(a.Out, "No files to delete.")
			return nil
		}
		a.Gate.Show(records)
		fmt.Fprintf(a.Out, "DRY-RUN: would delete %d file(s)\n", len(records))
		return nil
	}

	outcome, err := a.Gate.Confirm(ctx, records)
	if err != nil {
		return err
	}
	if outcome != Proceed {
		slog.Debug("Deletion not confirmed")
		return nil
	}

	removed, failed := 0, 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !exists(rec.Path) {
			slog.Debug("File already gone, skipping", "file", rec.Path)
			continue
		}
		fmt.Fprintf(a.Out, "Removing %s (keeping %s)\n", rec.Path, rec.Sibling())
		if err := a.Remover.Remove(ctx, rec.Path); err != nil {
			slog.Error("Failed to remove file", "file", rec.Path, "error", err)
			failed++
			continue
		}
		removed++
	}

	if failed > 0 {
		slog.Warn("Some files could not be removed", "removed", removed, "failed", failed)
	} else {
		slog.Info("Removal completed", "removed", removed)
	}
	return nil
}

func (a *App) newProgressBar(total int, description string) *progressbar.ProgressBar {
	out := a.ProgressOut
	if out == nil {
		out = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
