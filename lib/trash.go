package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mkvnmp4/lib/osa"
)

// Remover deletes a file. Removing a path that no longer exists is not an error.
type Remover interface {
	Remove(ctx context.Context, path string) error
}

// NewRemover picks the remover for this host: Finder's trash on macOS, the
// XDG trash elsewhere, os.Remove when trash is disabled.
// Dry runs report to out.
func NewRemover(trash, dryRun bool, runner *osa.Runner, out io.Writer) Remover {
	switch {
	case dryRun:
		return DryRunRemover{Out: out}
	case !trash:
		return PermanentRemover{}
	case runtime.GOOS == "darwin":
		return &FinderTrash{Runner: runner}
	default:
		return &XDGTrash{}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

type PermanentRemover struct{}

func (PermanentRemover) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

type DryRunRemover struct {
	Out io.Writer // default os.Stdout
}

func (r DryRunRemover) Remove(ctx context.Context, path string) error {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "DRY-RUN: would remove %s\n", path)
	return nil
}

// FinderTrash asks Finder to move files to the user's Trash.
type FinderTrash struct {
	Runner *osa.Runner
}

func (f *FinderTrash) Remove(ctx context.Context, path string) error {
	if !exists(path) {
		return nil
	}
	var b strings.Builder
	b.WriteString(osa.FileRef(path))
	b.WriteString("tell application \"Finder\"\n")
	b.WriteString("  if exists file filePath then\n")
	b.WriteString("    delete file filePath\n")
	b.WriteString("  end if\n")
	b.WriteString("end tell\n")
	if err := f.Runner.Run(ctx, b.String()); err != nil {
		return fmt.Errorf("failed to trash %s: %w", path, err)
	}
	return nil
}

// XDGTrash implements the freedesktop.org home trash. Files on another
// filesystem cannot be renamed into it and are removed permanently.
type XDGTrash struct {
	Dir string // default $XDG_DATA_HOME/Trash
	now func() time.Time
}

func (x *XDGTrash) dir() (string, error) {
	if x.Dir != "" {
		return x.Dir, nil
	}
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

func (x *XDGTrash) Remove(ctx context.Context, path string) error {
	if !exists(path) {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir, err := x.dir()
	if err != nil {
		return fmt.Errorf("failed to locate trash: %w", err)
	}
	filesDir := filepath.Join(dir, "files")
	infoDir := filepath.Join(dir, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	name, info, err := reserveTrashName(infoDir, filepath.Base(abs))
	if err != nil {
		return err
	}
	if _, err := info.WriteString(x.trashInfo(abs)); err != nil {
		info.Close()
		os.Remove(info.Name())
		return fmt.Errorf("failed to write trash info: %w", err)
	}
	info.Close()

	if err := os.Rename(abs, filepath.Join(filesDir, name)); err != nil {
		os.Remove(info.Name())
		if errors.Is(err, syscall.EXDEV) {
			slog.Warn("Trash is on another filesystem, removing permanently", "file", abs)
			return PermanentRemover{}.Remove(ctx, abs)
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to move %s to trash: %w", abs, err)
	}
	return nil
}

func (x *XDGTrash) trashInfo(abs string) string {
	now := time.Now
	if x.now != nil {
		now = x.now
	}
	u := url.URL{Path: abs}
	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		u.EscapedPath(), now().Format("2006-01-02T15:04:05"))
}

// reserveTrashName claims a unique name by exclusively creating its
// .trashinfo file.
func reserveTrashName(infoDir, base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 1000; i++ {
		name := base
		if i > 0 {
			name = stem + "." + strconv.Itoa(i) + ext
		}
		f, err := os.OpenFile(filepath.Join(infoDir, name+".trashinfo"), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			return name, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("failed to create trash info: %w", err)
		}
	}
	return "", nil, fmt.Errorf("no free trash name for %s", base)
}
