package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ld")
	require.NoError(t, os.WriteFile(path, []byte("program p; main { } end;"), 0644))

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "program p; main { } end;", src)
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "missing.ld"))
	require.Error(t, err)
}

func TestReadSourceNoPathAndNoStdinTimesOut(t *testing.T) {
	_, err := ReadSource("")
	require.Error(t, err)
}

func TestWriterBuffersUntilFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := NewWriter(f)
	w.Write("exit code: %d\n", 0)
	w.WriteString("done\n")
	require.NoError(t, w.Flush())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "exit code: 0\ndone\n", string(b))
}
