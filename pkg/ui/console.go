package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Console prints the user facing progress lines of a backup. Colour is
// only used when the writer is a terminal and colour was not disabled.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	quiet  bool
	styles styles
}

// Options configure a Console
type Options struct {
	NoColor bool
	// Quiet suppresses everything except errors
	Quiet bool
}

// NewConsole creates a Console writing to out
func NewConsole(out io.Writer, opts Options) *Console {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:    out,
		color:  !opts.NoColor && IsTerminal(out),
		quiet:  opts.Quiet,
		styles: newStyles(r),
	}
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (c *Console) render(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}

func (c *Console) println(s lipgloss.Style, text string, force bool) {
	if c.quiet && !force {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.render(s, text))
}

// Info prints a plain progress line
func (c *Console) Info(msg string) {
	c.println(c.styles.progress, msg, false)
}

// CSVMode announces that rows go to a single CSV file
func (c *Console) CSVMode(path string) {
	c.println(c.styles.notice, "CSV mode activated.", false)
	c.println(c.styles.notice, "Data will be saved to "+path, false)
}

// PageRange announces the page about to be requested
func (c *Console) PageRange(from, to int) {
	c.Info(fmt.Sprintf("Getting posts %d to %d.", from, to))
}

// Downloading announces a media download. kind is "photo" or "video".
func (c *Console) Downloading(kind string) {
	c.println(c.styles.notice, fmt.Sprintf("Downloading a %s. This may take a moment.", kind), false)
}

// Warn prints a warning line
func (c *Console) Warn(msg string) {
	c.println(c.styles.warning, msg, false)
}

// Error prints an error line, even in quiet mode
func (c *Console) Error(msg string) {
	c.println(c.styles.err, msg, true)
}

// Complete prints the completion line
func (c *Console) Complete() {
	c.println(c.styles.success, "Backup Complete", false)
}

// Summary prints label/value pairs, boxed when colour is on
func (c *Console) Summary(title string, rows [][2]string) {
	if c.quiet || len(rows) == 0 {
		return
	}

	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, c.render(c.styles.label, title))
	for _, row := range rows {
		label := fmt.Sprintf("%-*s", width, row[0])
		lines = append(lines, fmt.Sprintf("  %s  %s", c.render(c.styles.label, label), c.render(c.styles.value, row[1])))
	}

	block := strings.Join(lines, "\n")
	if c.color {
		block = c.styles.panel.Render(block)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, block)
}
