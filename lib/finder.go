package lib

import (
	"context"
	"log/slog"
)

// ExtPair maps a tracked source extension to the output extension that
// marks it as already processed.
type ExtPair struct {
	Source string
	Target string
}

// TrackedPairs is scanned in order; mkv records always precede m4v records.
var TrackedPairs = []ExtPair{
	{Source: "mkv", Target: "mp4"},
	{Source: "m4v", Target: "mp4"},
}

// DuplicateRecord is a source file and the pair it was evaluated against.
type DuplicateRecord struct {
	Path      string
	SourceExt string
	TargetExt string
}

// Sibling returns the path of the target-format file next to r.Path.
func (r DuplicateRecord) Sibling() string {
	return SiblingPath(r.Path, r.SourceExt, r.TargetExt)
}

// Classification splits one scan into files that already have a sibling
// and files that still need processing.
type Classification struct {
	Duplicates []DuplicateRecord
	Pending    []DuplicateRecord
}

type Finder struct {
	scanner *FileScanner
	pairs   []ExtPair
}

func NewFinder(scanner *FileScanner) *Finder {
	return &Finder{scanner: scanner, pairs: TrackedPairs}
}

// Classify walks root once per tracked pair and sorts every candidate into
// exactly one of the two views.
func (f *Finder) Classify(ctx context.Context, root string) Classification {
	var c Classification
	for _, pair := range f.pairs {
		for path := range f.scanner.ScanContext(ctx, root, pair.Source) {
			rec := DuplicateRecord{Path: path, SourceExt: pair.Source, TargetExt: pair.Target}
			if SiblingExists(path, pair.Source, pair.Target) {
				c.Duplicates = append(c.Duplicates, rec)
			} else {
				c.Pending = append(c.Pending, rec)
			}
		}
	}
	slog.Debug("Classified root", "root", root, "duplicates", len(c.Duplicates), "pending", len(c.Pending))
	return c
}

// FindDuplicates returns the records under root whose sibling exists.
func (f *Finder) FindDuplicates(ctx context.Context, root string) []DuplicateRecord {
	return f.Classify(ctx, root).Duplicates
}

// FindPending returns the records under root with no sibling yet.
func (f *Finder) FindPending(ctx context.Context, root string) []DuplicateRecord {
	return f.Classify(ctx, root).Pending
}

// ClassifyAll concatenates Classify over roots in configured order.
func (f *Finder) ClassifyAll(ctx context.Context, roots []string) Classification {
	var all Classification
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}
		c := f.Classify(ctx, root)
		all.Duplicates = append(all.Duplicates, c.Duplicates...)
		all.Pending = append(all.Pending, c.Pending...)
	}
	return all
}
