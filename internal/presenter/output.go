package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/mcncl/kompare/internal/errors"
	"github.com/mcncl/kompare/internal/formatter"
	"github.com/mcncl/kompare/internal/models"
)

// Format names an output representation
type Format string

const (
	FormatText    Format = "text"
	FormatHTML    Format = "html"
	FormatJSON    Format = "json"
	FormatUnified Format = "unified"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatHTML, FormatJSON, FormatUnified}

// ParseFormat accepts a format name in any case, e.g. "HTML" or "Unified"
func ParseFormat(name string) (Format, error) {
	normalized := Format(strcase.ToKebab(strings.TrimSpace(name)))
	for _, f := range Formats {
		if f == normalized {
			return f, nil
		}
	}
	return "", errors.NewRenderError(fmt.Sprintf("unknown output format '%s'", name), errors.ErrUnknownFormat)
}

// Presenter writes a comparison result in one of the supported formats
type Presenter struct {
	Format    Format
	Color     ColorMode
	Formatter *formatter.Formatter
	// ShowStats appends the per-kind summary to text and HTML output
	ShowStats bool
}

// Write renders diffs between left and right to w
func (p *Presenter) Write(w io.Writer, left, right models.Document, diffs []models.Diff) error {
	var out string
	switch p.Format {
	case FormatText, "":
		tr := NewTextRenderer(w, p.Color)
		out = tr.Render(diffs)
		if p.ShowStats && len(diffs) > 0 {
			out += tr.RenderStats(Stats(diffs))
		}
	case FormatHTML:
		out = RenderHTML(diffs)
		if p.ShowStats {
			out = "<div class=\"diff-stats\">\n" + StatsHTML(Stats(diffs)) + "</div>\n" + out
		}
	case FormatJSON:
		return RenderJSON(w, diffs)
	case FormatUnified:
		f := p.Formatter
		if f == nil {
			f = formatter.NewFormatter()
		}
		u, err := Unified(left, right, f)
		if err != nil {
			return err
		}
		out = u
	default:
		return errors.NewRenderError(fmt.Sprintf("unknown output format '%s'", p.Format), errors.ErrUnknownFormat)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return errors.NewOutputError("failed to write result", err)
	}
	return nil
}

type jsonReport struct {
	Diffs []models.Diff `json:"diffs"`
	Stats models.Stats  `json:"stats"`
}

// RenderJSON writes {"diffs": [...], "stats": {...}} to w
func RenderJSON(w io.Writer, diffs []models.Diff) error {
	if diffs == nil {
		diffs = []models.Diff{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Diffs: diffs, Stats: Stats(diffs)}); err != nil {
		return errors.NewOutputError("failed to write JSON report", err)
	}
	return nil
}

// Unified returns a line based unified diff of the indented forms of both
// documents. Identical documents give an empty string.
func Unified(left, right models.Document, f *formatter.Formatter) (string, error) {
	a, err := f.Format(left.Root)
	if err != nil {
		return "", err
	}
	b, err := f.Format(right.Root)
	if err != nil {
		return "", err
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.TrimSuffix(a, "\n")),
		B:        difflib.SplitLines(strings.TrimSuffix(b, "\n")),
		FromFile: left.Name,
		ToFile:   right.Name,
		Context:  3,
	})
	if err != nil {
		return "", errors.NewRenderError("failed to build unified diff", err)
	}
	return out, nil
}
