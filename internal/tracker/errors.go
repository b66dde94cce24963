package tracker

import (
	"errors"
	"fmt"
)

// Reason identifies which input a ValidationError rejects
type Reason string

const (
	MissingTitle       Reason = "missing title"
	MissingArea        Reason = "missing area"
	MissingResponsible Reason = "missing responsible"
	UnknownArea        Reason = "unknown area"
	InvalidPriority    Reason = "invalid priority"
)

// ValidationError is returned when caller input cannot be accepted.
// The caller is expected to correct the input and retry.
type ValidationError struct {
	Reason Reason
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation failed: %s %q", e.Reason, e.Value)
	}
	return "validation failed: " + string(e.Reason)
}

// NotFoundError is returned by mutations that reference an unknown task id
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// ErrStorageCorrupt marks a stored entry that could not be parsed
var ErrStorageCorrupt = errors.New("storage entry corrupt")

// StorageCorruptError describes a discarded storage entry. It is only
// logged by the loader, never returned to callers.
type StorageCorruptError struct {
	Key string
	Err error
}

func (e *StorageCorruptError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrStorageCorrupt, e.Key, e.Err)
}

func (e *StorageCorruptError) Unwrap() []error {
	return []error{ErrStorageCorrupt, e.Err}
}

// ErrAttachmentTooLarge is returned when a file exceeds the attachment limit
var ErrAttachmentTooLarge = errors.New("attachment too large")

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
