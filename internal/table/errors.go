package table

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why a dataset could not be loaded or written.
var (
	// ErrUnsupportedFormat indicates the file extension has no codec.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrEmptyHeader indicates the dataset has no header row.
	ErrEmptyHeader = errors.New("table has no header row")

	// ErrMissingKeyColumn indicates the configured key column is not in the header.
	ErrMissingKeyColumn = errors.New("key column not found in header")

	// ErrDuplicateKey indicates two rows share a key value under DuplicateReject.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrRaggedRow indicates a data row has more cells than the header.
	ErrRaggedRow = errors.New("row has more cells than header")

	// ErrDuplicateColumn indicates the header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column in header")
)

// LoadError is returned when the input dataset is missing or malformed.
// It is the only fatal error of a run.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading table %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistError is returned when a checkpoint could not be written. The
// previous snapshot on disk is left untouched.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting table %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
