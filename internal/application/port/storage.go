package port

import "io"

// FileStorage defines file storage operations for uploaded exports
type FileStorage interface {
	SaveFile(fullPath string, r io.Reader) (int64, error)
	ValidatePath(fullPath string) error
}

// FolderManager defines per-run folder operations
type FolderManager interface {
	CreateRunFolder(runID string) (string, error)
	RunFolderPath(runID string) string
	DeleteRunFolder(runID string) error
}
