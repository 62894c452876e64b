package storage

import "errors"

// Common local store errors
var (
	// ErrPresetNotFound indicates that the preset does not exist locally.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrOperationNotFound indicates that the queued operation was not found.
	ErrOperationNotFound = errors.New("pending operation not found")

	// ErrStorageClosed indicates that the store has been closed.
	ErrStorageClosed = errors.New("storage is closed")
)
