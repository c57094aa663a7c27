package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is returned when an upload carries no bytes.
	ErrEmptyFile = errors.New("empty file")
	// ErrEmptyFilename is returned when an upload has a blank name.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrPathEscape is returned when a name resolves outside the root location.
	ErrPathEscape = errors.New("path escapes storage root")
	// ErrReservedName is returned when a name collides with the in-flight upload naming scheme.
	ErrReservedName = errors.New("filename is reserved")
	// ErrFileNotFound is returned when a file does not exist or cannot be read.
	ErrFileNotFound = errors.New("file not found")
)

// Error is a storage failure: a rejected upload, an I/O error or an
// unusable root location.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound returns true when the error indicates a file was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

func notFound(name string) error {
	return fmt.Errorf("could not read file: %s: %w", name, ErrFileNotFound)
}
