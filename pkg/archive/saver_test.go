package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSaver(t *testing.T) {
	dir := t.TempDir()

	saver, err := NewFileSaver(filepath.Join(dir, "archives"))
	require.NoError(t, err)
	assert.DirExists(t, saver.Dir())

	t.Run("saves the bundle", func(t *testing.T) {
		path, err := saver.Save("alice_123.zip", []byte("bundle-bytes"))
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "archives", "alice_123.zip"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("bundle-bytes"), data)
	})

	t.Run("overwrites an existing bundle", func(t *testing.T) {
		_, err := saver.Save("alice_123.zip", []byte("first"))
		require.NoError(t, err)

		path, err := saver.Save("alice_123.zip", []byte("second"))
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("leaves no temp file behind", func(t *testing.T) {
		path, err := saver.Save("bob_456.zip", []byte("data"))
		require.NoError(t, err)
		assert.NoFileExists(t, path+".tmp")
	})
}
