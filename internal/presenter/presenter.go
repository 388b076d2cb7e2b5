// Package presenter turns diffs into markup, terminal text, JSON or a unified
// diff, and tallies them.
package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/mcncl/kompare/internal/formatter"
	"github.com/mcncl/kompare/internal/models"
)

// RootPath is shown in place of the empty path of the document root
const RootPath = "(root)"

// NoDiffMessage is shown when two documents are identical
const NoDiffMessage = "No differences found! JSONs are identical."

// Undefined is shown for a side that has no value
const Undefined = "undefined"

// EscapeHTML replaces the characters HTML reserves with entities
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// DisplayPath returns path, or RootPath for the document root
func DisplayPath(path string) string {
	if path == "" {
		return RootPath
	}
	return path
}

// FormatValue renders a value for HTML output. nil means the side has no
// value. Strings are quoted, containers are minified, and everything that can
// carry document text is escaped.
func FormatValue(v *models.Value) string {
	if v == nil {
		return Undefined
	}
	switch v.Type() {
	case models.TypeNull:
		return "null"
	case models.TypeString:
		return `"` + EscapeHTML(v.StringValue()) + `"`
	case models.TypeArray, models.TypeObject:
		return EscapeHTML(formatter.Minify(*v))
	case models.TypeBool:
		return fmt.Sprintf("%t", v.BoolValue())
	case models.TypeNumber:
		return EscapeHTML(v.NumberLiteral())
	}
	return Undefined
}

// PlainValue renders a value as JSON text without any escaping
func PlainValue(v *models.Value) string {
	if v == nil {
		return Undefined
	}
	return formatter.Minify(*v)
}

// Stats counts diffs per kind
func Stats(diffs []models.Diff) models.Stats {
	var s models.Stats
	for _, d := range diffs {
		switch d.Kind {
		case models.DiffAdded:
			s.Added++
		case models.DiffRemoved:
			s.Removed++
		case models.DiffChanged:
			s.Changed++
		}
	}
	return s
}

// FormatStats returns a one-line summary such as "+1 added  -0 removed  ~2 changed"
func FormatStats(s models.Stats) string {
	return fmt.Sprintf("+%d added  -%d removed  ~%d changed", s.Added, s.Removed, s.Changed)
}

// StatsHTML returns the summary as markup
func StatsHTML(s models.Stats) string {
	return fmt.Sprintf(
		`<span class="stat-added">+%d added</span>`+"\n"+
			`<span class="stat-removed">-%d removed</span>`+"\n"+
			`<span class="stat-changed">~%d changed</span>`+"\n",
		s.Added, s.Removed, s.Changed,
	)
}

// RenderHTML renders one block per diff
func RenderHTML(diffs []models.Diff) string {
	if len(diffs) == 0 {
		return "<div class=\"no-diff\">\n" +
			"  <div class=\"no-diff-icon\">✓</div>\n" +
			"  <p>" + NoDiffMessage + "</p>\n" +
			"</div>\n"
	}

	var b strings.Builder
	for _, d := range diffs {
		var value string
		switch d.Kind {
		case models.DiffAdded:
			value = FormatValue(d.Right)
		case models.DiffRemoved:
			value = FormatValue(d.Left)
		case models.DiffChanged:
			value = FormatValue(d.Left) + ` <span class="diff-arrow">→</span> ` + FormatValue(d.Right)
		}

		fmt.Fprintf(&b, "<div class=\"diff-line %s\">\n", d.Kind)
		fmt.Fprintf(&b, "  <div class=\"diff-path\">%s %s</div>\n", marker(d.Kind), EscapeHTML(DisplayPath(d.Path)))
		fmt.Fprintf(&b, "  <div class=\"diff-value\">%s</div>\n", value)
		b.WriteString("</div>\n")
	}
	return b.String()
}

func marker(k models.DiffKind) string {
	switch k {
	case models.DiffAdded:
		return "+"
	case models.DiffRemoved:
		return "-"
	default:
		return "~"
	}
}
