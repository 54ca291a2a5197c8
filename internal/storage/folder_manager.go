package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// FolderManager manages one folder per run under a base directory
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateRunFolder creates {baseDir}/{runID}/ and returns its path
func (m *FolderManager) CreateRunFolder(runID string) (string, error) {
	safeName := m.SanitizeFolderName(runID)
	if safeName == "" {
		return "", ErrEmptyRunID
	}

	folderPath := filepath.Join(m.baseDir, safeName)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create run folder",
			zap.String("run_id", runID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created run folder",
		zap.String("run_id", runID),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// RunFolderPath returns the folder of a run without creating it
func (m *FolderManager) RunFolderPath(runID string) string {
	return filepath.Join(m.baseDir, m.SanitizeFolderName(runID))
}

// DeleteRunFolder removes a run folder and its contents; missing folders are fine
func (m *FolderManager) DeleteRunFolder(runID string) error {
	safeName := m.SanitizeFolderName(runID)
	if safeName == "" {
		return ErrEmptyRunID
	}

	folderPath := filepath.Join(m.baseDir, safeName)
	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete run folder",
			zap.String("run_id", runID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// SanitizeFolderName keeps only alphanumerics, hyphens and underscores
func (m *FolderManager) SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}
