package ui

import (
	"fmt"
	"io"
	"strings"
)

// Printer renders deployment progress and summaries to a writer. It
// implements the deploy package's Reporter.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Stage prints a stage header.
func (p *Printer) Stage(name string) {
	fmt.Fprintf(p.w, "\n%s %s\n", HeaderStyle.Render("==>"), HeaderStyle.Render(name))
}

// Resource prints one reconciled resource with its adopt marker.
func (p *Printer) Resource(kind, name string, adopted bool) {
	if adopted {
		fmt.Fprintf(p.w, "  %s %s %s %s\n",
			AdoptedStyle.Render("○"), MutedStyle.Render(kind), NameStyle.Render(name), AdoptedStyle.Render("(exists)"))
		return
	}
	fmt.Fprintf(p.w, "  %s %s %s %s\n",
		CreatedStyle.Render("●"), MutedStyle.Render(kind), NameStyle.Render(name), CreatedStyle.Render("(created)"))
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", CreatedStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", ErrorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

// Infof prints a plain line.
func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Row is one line of a summary or status table.
type Row struct {
	Label string
	Value string
	Muted bool
}

// Table prints rows in a styled box table.
func (p *Printer) Table(rows []Row) {
	labelWidth, valueWidth := 0, 0
	for _, r := range rows {
		if w := len(r.Label); w > labelWidth {
			labelWidth = w
		}
		if w := len(r.Value); w > valueWidth {
			valueWidth = w
		}
	}
	if valueWidth > 64 {
		valueWidth = 64
	}

	border := func(left, mid, right string) string {
		return BorderStyle.Render(left+strings.Repeat(Horizontal, labelWidth+2)+mid+strings.Repeat(Horizontal, valueWidth+2)+right) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(border(TopLeft, TopT, TopRight))
	for _, r := range rows {
		style := ValueStyle
		if r.Muted {
			style = MutedStyle
		}
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(MutedStyle.Render(" " + padRight(r.Label, labelWidth) + " "))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(style.Render(" " + padRight(r.Value, valueWidth) + " "))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")
	}
	sb.WriteString(border(BottomLeft, BottomT, BottomRight))

	fmt.Fprint(p.w, sb.String())
}
