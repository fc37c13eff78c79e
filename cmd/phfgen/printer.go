package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printer writes status lines of the form "<label> <message>", with the
// label colored by outcome.
type printer struct {
	w io.Writer

	green, cyan, yellow, red *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:      w,
		green:  color.New(color.FgGreen, color.Bold),
		cyan:   color.New(color.FgCyan),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.green, p.cyan, p.yellow, p.red} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) line(c *color.Color, label, format string, args ...any) {
	c.Fprintf(p.w, "%-9s", label)
	fmt.Fprintf(p.w, " "+format+"\n", args...)
}

func (p *printer) ok(label, format string, args ...any)   { p.line(p.green, label, format, args...) }
func (p *printer) info(label, format string, args ...any) { p.line(p.cyan, label, format, args...) }
func (p *printer) warn(label, format string, args ...any) { p.line(p.yellow, label, format, args...) }
func (p *printer) fail(label, format string, args ...any) { p.line(p.red, label, format, args...) }
