package services

import "errors"

// Analysis service errors
var (
	ErrNoSources       = errors.New("no data sources configured")
	ErrStorageDisabled = errors.New("storage is disabled")
	ErrStudentNotFound = errors.New("student not found")
)
