package repository

import "errors"

// ErrRunNotFound is returned when updating a run that was never created
var ErrRunNotFound = errors.New("run not found")
