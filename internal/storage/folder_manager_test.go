package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFolderManager_RunFolders(t *testing.T) {
	base := t.TempDir()
	m := NewFolderManager(base, zap.NewNop())

	path, err := m.CreateRunFolder("2f1c6a1e-run")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "2f1c6a1e-run"), path)
	assert.DirExists(t, path)
	assert.Equal(t, path, m.RunFolderPath("2f1c6a1e-run"))

	// creating twice is fine
	_, err = m.CreateRunFolder("2f1c6a1e-run")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(path, "out.xlsx"), []byte("x"), 0644))
	require.NoError(t, m.DeleteRunFolder("2f1c6a1e-run"))
	assert.NoDirExists(t, path)

	// deleting a missing folder is not an error
	assert.NoError(t, m.DeleteRunFolder("2f1c6a1e-run"))
}

func TestFolderManager_EmptyRunID(t *testing.T) {
	m := NewFolderManager(t.TempDir(), zap.NewNop())

	_, err := m.CreateRunFolder("../..")
	assert.ErrorIs(t, err, ErrEmptyRunID)
	assert.ErrorIs(t, m.DeleteRunFolder(""), ErrEmptyRunID)
}

func TestFolderManager_SanitizeFolderName(t *testing.T) {
	m := NewFolderManager("", zap.NewNop())

	tests := []struct {
		input    string
		expected string
	}{
		{"abc-123_x", "abc-123_x"},
		{"../etc/passwd", "etcpasswd"},
		{"run 1!", "run1"},
		{"考勤", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, m.SanitizeFolderName(tt.input), tt.input)
	}
}
