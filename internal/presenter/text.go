package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mcncl/kompare/internal/models"
)

// ColorMode decides whether terminal output is colored
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// TextRenderer renders diffs as terminal lines:
//
//	+ path: value
//	- path: value
//	~ path: left → right
type TextRenderer struct {
	added   lipgloss.Style
	removed lipgloss.Style
	changed lipgloss.Style
	arrow   lipgloss.Style
}

// NewTextRenderer creates a renderer for output written to w. In auto mode
// colors are used only when w is a color capable terminal.
func NewTextRenderer(w io.Writer, mode ColorMode) *TextRenderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	return &TextRenderer{
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
		changed: r.NewStyle().Foreground(lipgloss.Color("4")),
		arrow:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Render returns one line per diff, or NoDiffMessage
func (t *TextRenderer) Render(diffs []models.Diff) string {
	if len(diffs) == 0 {
		return NoDiffMessage + "\n"
	}

	var b strings.Builder
	for _, d := range diffs {
		path := DisplayPath(d.Path)
		switch d.Kind {
		case models.DiffAdded:
			b.WriteString(t.added.Render(fmt.Sprintf("+ %s: %s", path, PlainValue(d.Right))))
		case models.DiffRemoved:
			b.WriteString(t.removed.Render(fmt.Sprintf("- %s: %s", path, PlainValue(d.Left))))
		case models.DiffChanged:
			b.WriteString(t.changed.Render(fmt.Sprintf("~ %s: %s", path, PlainValue(d.Left))))
			b.WriteString(" " + t.arrow.Render("→") + " ")
			b.WriteString(t.changed.Render(PlainValue(d.Right)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderStats returns the colored summary line
func (t *TextRenderer) RenderStats(s models.Stats) string {
	return fmt.Sprintf("%s  %s  %s\n",
		t.added.Render(fmt.Sprintf("+%d added", s.Added)),
		t.removed.Render(fmt.Sprintf("-%d removed", s.Removed)),
		t.changed.Render(fmt.Sprintf("~%d changed", s.Changed)),
	)
}
