package dump_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysqlkit/internal/dump"
)

func TestExtension(t *testing.T) {
	assert.Equal(t, ".gz", dump.Extension("gzip -1"))
	assert.Equal(t, ".gz", dump.Extension("pigz"))
	assert.Equal(t, ".bz2", dump.Extension("bzip2"))
	assert.Equal(t, ".xz", dump.Extension("xz -9"))
	assert.Equal(t, "", dump.Extension(""))
	assert.Equal(t, "", dump.Extension("cat"))
}

func TestOutputWriterPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.sql")

	w, err := dump.NewOutputWriter(context.Background(), path, "", false)
	require.NoError(t, err)
	require.NoError(t, w.WriteString("hello\n"))
	require.NoError(t, w.WriteString("world\n"))
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(content))
}

func TestOutputWriterAppendsWithoutTruncating(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.sql")

	w1, err := dump.NewOutputWriter(context.Background(), path, "", false)
	require.NoError(t, err)
	require.NoError(t, w1.WriteString("first\n"))
	require.NoError(t, w1.Close())

	w2, err := dump.NewOutputWriter(context.Background(), path, "", true)
	require.NoError(t, err)
	require.NoError(t, w2.WriteString("second\n"))
	require.NoError(t, w2.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestOutputWriterPipesThroughFilterCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.sql")

	w, err := dump.NewOutputWriter(context.Background(), path, "cat", false)
	require.NoError(t, err)
	require.NoError(t, w.WriteString("piped\n"))
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "piped\n", string(content))
}
