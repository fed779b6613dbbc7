package repository

import "errors"

// Sentinel errors shared by both backends. The service layer translates
// them into apperr kinds; handlers never see them directly.
var (
	// ErrNotFound is returned when no record matches an id or index key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique index, such
	// as a second tenant with the same slug.
	ErrDuplicate = errors.New("duplicate key")
)
