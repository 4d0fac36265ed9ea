package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned by stores for missing records.  Missing state
	// keys are not an error: snapshots report them as nil values.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
)
