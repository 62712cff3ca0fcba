package reportdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRowsAffected indicates a write matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
