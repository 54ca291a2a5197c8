package dingtalk

import "errors"

var (
	// ErrSheetNotFound is returned when the export lacks a required sheet
	ErrSheetNotFound = errors.New("sheet not found in source export")
	// ErrMissingHeader is returned when a required header row or column is absent
	ErrMissingHeader = errors.New("required header missing in source export")
)
