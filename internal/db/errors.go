package db

import "errors"

// Domain-level database error sentinels.
var (
	// Target errors
	ErrTargetNotFound      = errors.New("target not found")
	ErrDuplicateTargetName = errors.New("target name already exists")

	// Alert errors
	ErrAlertNotFound = errors.New("alert not found")
)
