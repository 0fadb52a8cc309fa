package lib

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Outcome is the operator's answer at the confirmation gate.
type Outcome int

const (
	Abort Outcome = iota
	Proceed
)

func (o Outcome) String() string {
	if o == Proceed {
		return "proceed"
	}
	return "abort"
}

// Gate shows pending deletions and asks twice before anything is removed.
type Gate struct {
	In    io.Reader
	Out   io.Writer
	Width int // terminal width, 0 when unknown
}

func NewGate(in io.Reader, out io.Writer, width int) *Gate {
	return &Gate{In: in, Out: out, Width: width}
}

// Show prints the deletion table without asking anything.
func (g *Gate) Show(records []DuplicateRecord) {
	fmt.Fprintln(g.Out, "Files queued for deletion:")
	fmt.Fprintln(g.Out, g.render(records))
}

type answer struct {
	line string
	err  error
}

// Confirm renders records and waits for two affirmative answers. An empty
// set aborts without prompting. If ctx ends while waiting, Confirm returns
// Abort together with ctx.Err().
func (g *Gate) Confirm(ctx context.Context, records []DuplicateRecord) (Outcome, error) {
	if len(records) == 0 {
		fmt.Fprintln(g.Out, "No files to delete.")
		return Abort, nil
	}

	g.Show(records)

	answers := make(chan answer)
	done := make(chan struct{})
	defer close(done)
	go readAnswers(g.In, answers, done)

	prompts := []string{
		fmt.Sprintf("Proceed with deletion of %d file(s)? [y/N]: ", len(records)),
		fmt.Sprintf("Really remove %d file(s)? This cannot be undone from here. [y/N]: ", len(records)),
	}
	for _, prompt := range prompts {
		fmt.Fprint(g.Out, prompt)
		ok, err := g.ask(ctx, answers)
		if err != nil {
			fmt.Fprintln(g.Out)
			fmt.Fprintln(g.Out, "Interrupted, nothing was deleted.")
			return Abort, err
		}
		if !ok {
			fmt.Fprintln(g.Out, "Canceling.")
			return Abort, nil
		}
	}
	return Proceed, nil
}

func (g *Gate) ask(ctx context.Context, answers <-chan answer) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a, ok := <-answers:
		if !ok || a.err != nil {
			return false, nil
		}
		return isYes(a.line), nil
	}
}

// readAnswers forwards lines from r until EOF or done. A read blocked on
// the terminal outlives an interrupted Confirm; the process exits right after.
func readAnswers(r io.Reader, answers chan<- answer, done <-chan struct{}) {
	defer close(answers)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		a := answer{line: line}
		if err != nil && line == "" {
			a = answer{err: err}
		}
		select {
		case answers <- a:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}

// render draws the records as a table. When the table is wider than the
// terminal it falls back to a plain list, so every path is printed whole.
func (g *Gate) render(records []DuplicateRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Action", "Path", "Size"})

	for i, rec := range records {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), "remove", rec.Path, FormatSize(fileSize(rec.Path))})
		tw.AppendRow(table.Row{"", "keep", rec.Sibling(), FormatSize(fileSize(rec.Sibling()))})
		if i < len(records)-1 {
			tw.AppendSeparator()
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	rendered := tw.Render()
	if g.Width > 0 && widestLine(rendered) > g.Width {
		return renderList(records)
	}
	return rendered
}

func renderList(records []DuplicateRecord) string {
	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%3d  remove  %s (%s)\n", i+1, rec.Path, FormatSize(fileSize(rec.Path)))
		fmt.Fprintf(&b, "     keep    %s (%s)", rec.Sibling(), FormatSize(fileSize(rec.Sibling())))
	}
	return b.String()
}

func widestLine(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		widest = max(widest, text.RuneWidthWithoutEscSequences(line))
	}
	return widest
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
