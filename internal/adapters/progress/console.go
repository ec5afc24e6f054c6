package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Console renders a single-line terminal progress bar of the form
// |=====     | message, rewriting the line in place.
type Console struct {
	width int
	out   io.Writer
	paint *color.Color
}

// NewConsole creates a console reporter with the given bar width.
func NewConsole(width int) *Console {
	if width < 10 {
		width = 10
	}
	return &Console{
		width: width,
		out:   os.Stdout,
		paint: color.New(color.FgYellow),
	}
}

// Report renders the current position. Never returns an error and
// never panics: a rendering problem is not allowed to disturb a run.
func (c *Console) Report(current, total int, message string) {
	defer func() {
		_ = recover()
	}()

	if total < 1 {
		total = 1
	}
	if current > total {
		current = total
	}
	if current < 0 {
		current = 0
	}

	filled := c.width * current / total
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", c.width-filled)

	// Cap the message so the line never wraps. Cut on a rune boundary,
	// never mid-sequence.
	maxMsg := c.width * 2
	if runes := []rune(message); len(runes) > maxMsg {
		message = string(runes[:maxMsg])
	}
	c.paint.Fprintf(c.out, "\r|%s| %-*s", bar, maxMsg, message)
}

// Finish terminates the progress line so following output starts clean.
func (c *Console) Finish() {
	fmt.Fprintln(c.out)
}

// Noop discards all progress reports.
type Noop struct{}

// Report does nothing.
func (Noop) Report(current, total int, message string) {
	_ = current
	_ = total
	_ = message
}
