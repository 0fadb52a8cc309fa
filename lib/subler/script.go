package subler

import (
	"fmt"
	"strings"
	"time"

	"mkvnmp4/lib/osa"
)

func (c *Client) enqueueScript(path string) string {
	var b strings.Builder
	b.WriteString(osa.FileRef(path))
	fmt.Fprintf(&b, "tell application %s\n", osa.Quote(c.app()))
	b.WriteString("  add to queue filePath\n")
	b.WriteString("end tell\n")
	return b.String()
}

func (c *Client) startScript() string {
	return fmt.Sprintf("tell application %s to start queue\n", osa.Quote(c.app()))
}

func (c *Client) waitScript(timeout time.Duration) string {
	secs := int(timeout.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "with timeout of %d seconds\n", secs)
	fmt.Fprintf(&b, "  tell application %s\n", osa.Quote(c.app()))
	b.WriteString("    start queue and wait\n")
	b.WriteString("  end tell\n")
	b.WriteString("end timeout\n")
	return b.String()
}
