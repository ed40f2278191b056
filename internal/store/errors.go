package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable wraps backend failures. It is never fatal: the
	// in-memory list stays usable, it just won't survive a restart.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorruptEntry means a stored list failed validation. The entry is left
	// as is rather than overwritten with a fresh list.
	ErrCorruptEntry = errors.New("stored list is corrupt")

	ErrNoList = errors.New("no list is open")
)

// ValidationError rejects user input. The list is unchanged when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
