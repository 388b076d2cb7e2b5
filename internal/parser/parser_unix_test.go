//go:build unix

package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/kompare/internal/errors"
)

// writeFIFO creates a named pipe and feeds content into it from a goroutine
func writeFIFO(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fifo")
	require.NoError(t, syscall.Mkfifo(path, 0o600))

	go func() {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.WriteString(content)
	}()
	return path
}

func TestParseFile_NamedPipe(t *testing.T) {
	path := writeFIFO(t, `{"a":1}`)

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Name)
	a, ok := doc.Root.Object().Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", a.NumberLiteral())
}

func TestParseFile_EmptyNamedPipe(t *testing.T) {
	path := writeFIFO(t, "  \n")

	_, err := ParseFile(path)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrEmptyInput), "err = %v", err)
	assert.False(t, stderrors.Is(err, errors.ErrFileEmpty))
}
