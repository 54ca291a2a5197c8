package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveFile(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	t.Run("saves file and creates parent directories", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "run-1", "source.xlsx")
		content := []byte("xlsx bytes")

		n, err := fs.SaveFile(fullPath, bytes.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), n)

		saved, err := os.ReadFile(fullPath)
		require.NoError(t, err)
		assert.Equal(t, content, saved)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "overwrite", "source.xlsx")
		_, err := fs.SaveFile(fullPath, bytes.NewReader([]byte("original")))
		require.NoError(t, err)
		_, err = fs.SaveFile(fullPath, bytes.NewReader([]byte("updated")))
		require.NoError(t, err)

		saved, _ := os.ReadFile(fullPath)
		assert.Equal(t, []byte("updated"), saved)
	})

	t.Run("rejects paths outside base", func(t *testing.T) {
		_, err := fs.SaveFile(filepath.Join(tempDir, "..", "escape.xlsx"), bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrPathEscapesBase)
	})
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	base := t.TempDir()
	fs := NewLocalFileStorage(base, zap.NewNop())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "inside base", path: filepath.Join(base, "a", "b.xlsx")},
		{name: "base itself", path: base},
		{name: "traversal", path: filepath.Join(base, "a", "..", "..", "x"), wantErr: true},
		{name: "sibling with shared prefix", path: base + "-other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathEscapesBase)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
