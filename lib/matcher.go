package lib

import (
	"os"
	"strings"
)

// HasSuffixExt reports whether path ends in "."+ext, ignoring case.
// Only the literal suffix counts: "a.mkv.bak" does not end in mkv.
// The comparison is on the trailing bytes of path, the same span SiblingPath cuts.
func HasSuffixExt(path, ext string) bool {
	suffix := "." + ext
	return len(path) > len(suffix) && strings.EqualFold(path[len(path)-len(suffix):], suffix)
}

// SiblingPath replaces the trailing ".<sourceExt>" of path with ".<targetExt>".
// The stem keeps its original case. Callers filter with HasSuffixExt first.
func SiblingPath(path, sourceExt, targetExt string) string {
	stem := path[:len(path)-len(sourceExt)-1]
	return stem + "." + targetExt
}

// SiblingExists reports whether the targetExt sibling of path is a regular
// file right now. Nothing is cached; deletions earlier in the same run are seen.
func SiblingExists(path, sourceExt, targetExt string) bool {
	if !HasSuffixExt(path, sourceExt) {
		return false
	}
	info, err := os.Stat(SiblingPath(path, sourceExt, targetExt))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
