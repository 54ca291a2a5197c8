package storage

import "errors"

var (
	// ErrPathEscapesBase is returned for paths outside the storage root
	ErrPathEscapesBase = errors.New("path escapes base directory")
	// ErrEmptyRunID is returned when a run folder is requested without an ID
	ErrEmptyRunID = errors.New("empty run ID")
)
