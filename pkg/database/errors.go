package database

import "github.com/pkg/errors"

var (
	// ErrActivityNotFound is returned when an update targets an id with no row
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidActivity is returned when a row would break the stored invariants
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrStoreLocked is returned when another process owns the database file
	ErrStoreLocked = errors.New("database is in use by another process")
)
