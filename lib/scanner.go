package lib

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultMaxDepth        = 4
	DefaultIgnoreSubstring = "recycle"
)

// FileScanner walks a root directory looking for files with one extension.
// The walk is physical: symlinks are neither followed nor reported.
type FileScanner struct {
	MaxDepth        int
	IgnoreSubstring string
}

func NewFileScanner(maxDepth int, ignore string) *FileScanner {
	return &FileScanner{MaxDepth: maxDepth, IgnoreSubstring: ignore}
}

// Scan is ScanContext without cancellation.
func (s *FileScanner) Scan(root, ext string) iter.Seq[string] {
	return s.ScanContext(context.Background(), root, ext)
}

// ScanContext returns a lazy sequence of regular files under root whose name
// ends in "."+ext. Each range re-walks the tree. A missing root yields nothing.
// A root that is itself a symlink is resolved; paths are still reported under
// root as configured.
func (s *FileScanner) ScanContext(ctx context.Context, root, ext string) iter.Seq[string] {
	return func(yield func(string) bool) {
		root := filepath.Clean(root)
		walkRoot := resolveRoot(root)
		stop := errors.New("stop")

		err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			path = underRoot(root, walkRoot, path)
			if err != nil {
				if path == root && errors.Is(err, os.ErrNotExist) {
					slog.Debug("Root directory missing", "root", root)
					return nil
				}
				slog.Warn("Error accessing path", "path", path, "error", err)
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if s.ignored(path) {
				if d.IsDir() {
					slog.Debug("Skipping ignored directory", "path", path)
					return filepath.SkipDir
				}
				return nil
			}

			depth := depthOf(root, path)
			if d.IsDir() {
				if path != root && depth >= s.maxDepth() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || depth > s.maxDepth() {
				return nil
			}
			if !HasSuffixExt(d.Name(), ext) {
				return nil
			}

			slog.Debug("Found candidate", "path", path, "ext", ext)
			if !yield(path) {
				return stop
			}
			return nil
		})

		if err != nil && !errors.Is(err, stop) && !errors.Is(err, context.Canceled) {
			slog.Warn("Directory walk ended early", "root", root, "error", err)
		}
	}
}

// resolveRoot follows symlinks in root itself. The walk below it stays physical.
func resolveRoot(root string) string {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	if resolved != root {
		slog.Debug("Resolved root", "root", root, "target", resolved)
	}
	return resolved
}

// underRoot maps a path found below walkRoot back under root.
func underRoot(root, walkRoot, path string) string {
	if root == walkRoot {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

func (s *FileScanner) maxDepth() int {
	if s.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}

func (s *FileScanner) ignored(path string) bool {
	if s.IgnoreSubstring == "" {
		return false
	}
	return strings.Contains(strings.ToLower(path), strings.ToLower(s.IgnoreSubstring))
}

// depthOf counts path components below root; root's children are depth 1.
func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
