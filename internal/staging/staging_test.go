package staging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_WritesContentUnderUniqueName(t *testing.T) {
	s := New(t.TempDir())

	first, err := s.Stage("script.lua", []byte("print('a')"))
	require.NoError(t, err)
	second, err := s.Stage("script.lua", []byte("print('b')"))
	require.NoError(t, err)

	// Same filename, concurrent-delivery safe: distinct paths.
	assert.NotEqual(t, first, second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "print('a')", string(data))
}

func TestStage_StripsPathElementsFromFilename(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	path, err := s.Stage("../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.Contains(t, path, dir, "staged file must stay inside the scratch dir")
}

func TestRemove(t *testing.T) {
	s := New(t.TempDir())
	path, err := s.Stage("script.lua", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
