package storage

import "errors"

// Backend is a durable key-value store holding text blobs
type Backend interface {
	// Name returns the backend identifier (e.g., "sqlite", "file")
	Name() string

	// Get returns the value stored under key and whether it exists
	Get(key string) (string, bool, error)

	// Set overwrites the value stored under key
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the backend's resources
	Close() error
}

// Factory opens a backend at the given location. Backends that keep no
// durable state ignore path.
type Factory func(path string) (Backend, error)

// ErrClosed is returned by operations on a closed backend
var ErrClosed = errors.New("storage backend closed")
