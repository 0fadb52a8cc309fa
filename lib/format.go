package lib

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration formats a duration in seconds to a human-readable string.
// Returns format like "2:12:55" for hours:minutes:seconds or "12:55" for minutes:seconds
func FormatDuration(seconds float64) string {
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatSize renders a byte count like "1.5 GiB". Negative sizes mean unknown.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatElapsed renders time since start as minutes:seconds.
func FormatElapsed(start time.Time) string {
	return FormatDuration(time.Since(start).Seconds())
}
