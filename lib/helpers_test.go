package lib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

// writeTree creates each relative path under root with some content.
func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte("test content "+p), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
}

// relPaths converts absolute paths under root to sorted slash paths.
func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("Failed to relativize %s: %v", p, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func recordPaths(records []DuplicateRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fataler is the part of testing.T that GinkgoT also provides.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// snapshot hashes every path and file body under root.
func snapshot(t fataler, root string) string {
	t.Helper()
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		fmt.Fprintf(h, "%s|%v\n", filepath.ToSlash(rel), d.IsDir())
		if d.Type().IsRegular() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			h.Write(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", root, err)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fakeProcessor records calls. waitFn decides each StartQueueAndWait result
// from the most recently enqueued path.
type fakeProcessor struct {
	mu         sync.Mutex
	enqueued   []string
	starts     int
	waits      int
	enqueueErr map[string]error
	waitFn     func(ctx context.Context, path string, timeout time.Duration) error
}

func (f *fakeProcessor) Enqueue(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enqueueErr[path]; err != nil {
		return err
	}
	f.enqueued = append(f.enqueued, path)
	return nil
}

func (f *fakeProcessor) StartQueue(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeProcessor) StartQueueAndWait(ctx context.Context, timeout time.Duration) error {
	f.mu.Lock()
	f.waits++
	var last string
	if len(f.enqueued) > 0 {
		last = f.enqueued[len(f.enqueued)-1]
	}
	fn := f.waitFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, last, timeout)
}

// neverFinishes blocks until the per-item timeout or ctx ends.
func neverFinishes(ctx context.Context, timeout time.Duration) error {
	select {
	case <-time.After(timeout):
		return errors.New("timed out waiting for queue")
	case <-ctx.Done():
		return ctx.Err()
	}
}
