package storage

import "errors"

// Errors for storages.
var (
	ErrNotFound   = errors.New("storage entry not found")
	ErrInvalidKey = errors.New("invalid key")
)
