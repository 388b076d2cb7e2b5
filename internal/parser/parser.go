package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mcncl/kompare/internal/errors"
	"github.com/mcncl/kompare/internal/log"
	"github.com/mcncl/kompare/internal/models"
)

// SyntaxError describes where a document stopped being valid JSON
type SyntaxError struct {
	Msg    string
	Offset int64 // bytes read before the error
	Line   int   // 1-based
	Column int   // 1-based
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

// Unwrap lets errors.Is match ErrInvalidJSON
func (e *SyntaxError) Unwrap() error {
	return errors.ErrInvalidJSON
}

// Parse reads a single JSON document from reader
func Parse(reader io.Reader) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON document. Object keys keep their source
// order; when a key repeats, the last value wins.
func ParseBytes(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	if !gjson.ValidBytes(data) {
		serr := locateSyntaxError(data)
		return models.Value{}, errors.NewParsingError(
			fmt.Sprintf("syntax error at line %d, column %d", serr.Line, serr.Column),
			serr,
		)
	}

	root := convert(gjson.ParseBytes(data))
	log.Debugf("parsed %d bytes, root is %s", len(data), root.Type())
	return root, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString))
}

// ReadDocument parses the document read from r and names it name
func ReadDocument(name string, r io.Reader) (models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("failed to read '%s'", name), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("input '%s' is empty", name), errors.ErrEmptyInput)
	}
	root, err := ParseBytes(data)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return models.Document{}, errors.NewParsingError(name+": "+appErr.Message, appErr.Err)
		}
		return models.Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return models.Document{Name: name, Root: root}, nil
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warnf("error closing %s: %v", filePath, err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	// Pipes and process substitutions report a size of zero until read
	if stat.Mode().IsRegular() && stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return ReadDocument(filePath, file)
}

// convert turns a validated gjson result into a Value
func convert(r gjson.Result) models.Value {
	switch r.Type {
	case gjson.Null:
		return models.Null()
	case gjson.False:
		return models.Bool(false)
	case gjson.True:
		return models.Bool(true)
	case gjson.Number:
		return models.Number(strings.TrimSpace(r.Raw))
	case gjson.String:
		return models.String(r.Str)
	}

	if r.IsArray() {
		items := make([]models.Value, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, convert(value))
			return true
		})
		return models.Array(items...)
	}

	obj := models.NewObject()
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.Str, convert(value))
		return true
	})
	return models.FromObject(obj)
}

// locateSyntaxError runs the standard decoder over invalid input to find the
// offset of the first error, then turns it into a line and column.
func locateSyntaxError(data []byte) *SyntaxError {
	var discard json.RawMessage
	err := json.Unmarshal(data, &discard)

	serr := &SyntaxError{Msg: "invalid JSON", Offset: int64(len(data))}
	var jsonErr *json.SyntaxError
	if stderrors.As(err, &jsonErr) {
		serr.Offset = jsonErr.Offset
		serr.Msg = jsonErr.Error()
	}
	if serr.Offset > int64(len(data)) {
		serr.Offset = int64(len(data))
	}

	// Offset counts the offending byte itself unless the input simply ended.
	pos := int(serr.Offset)
	if pos > 0 && pos <= len(data) && !strings.HasPrefix(serr.Msg, "unexpected end") {
		pos--
	}

	prefix := data[:pos]
	serr.Line = bytes.Count(prefix, []byte("\n")) + 1
	serr.Column = pos - bytes.LastIndexByte(prefix, '\n')
	return serr
}
