package formatter

import (
	"github.com/tidwall/pretty"

	"github.com/mcncl/kompare/internal/errors"
	"github.com/mcncl/kompare/internal/models"
)

// DefaultIndent is used when no indent is configured
const DefaultIndent = "  "

// Formatter serializes JSON values back to text
type Formatter struct {
	indent string
}

// NewFormatter creates a Formatter using the default indent
func NewFormatter() *Formatter {
	return &Formatter{indent: DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter using the given indent string.
// An empty indent falls back to the default.
func NewFormatterWithIndent(indent string) *Formatter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Formatter{indent: indent}
}

// Format returns the indented form of v with one element per line and a
// trailing newline. Object keys keep their order.
func (f *Formatter) Format(v models.Value) (string, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return "", errors.NewFormatError("failed to serialize value", err)
	}

	out := pretty.PrettyOptions(compact, &pretty.Options{
		Width:    0, // never collapse arrays onto one line
		Prefix:   "",
		Indent:   f.indent,
		SortKeys: false,
	})
	return string(out), nil
}

// Minify returns the compact form of v
func (f *Formatter) Minify(v models.Value) (string, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return "", errors.NewFormatError("failed to serialize value", err)
	}
	return string(compact), nil
}

// Minify is a convenience wrapper for callers that only need compact output
func Minify(v models.Value) string {
	out, err := NewFormatter().Minify(v)
	if err != nil {
		return ""
	}
	return out
}
