package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task does not exist in the owner's
	// partition. A task owned by someone else is indistinguishable from an
	// absent one.
	ErrTaskNotFound = errors.New("task not found")
)
