package bundle

import (
	"errors"
	"fmt"
)

// ErrMissingRequirement is returned when either requirement token is empty.
var ErrMissingRequirement = errors.New("both a primary and a secondary requirement are required")

// SourceMissingError reports a demo whose source directory is absent or is
// not a directory.
type SourceMissingError struct {
	Demo string // empty when the tree is not a named demo
	Path string
	Err  error
}

func (e *SourceMissingError) Error() string {
	return fmt.Sprintf("source directory %s: %v", e.Path, e.Err)
}

func (e *SourceMissingError) Unwrap() error { return e.Err }

// ManifestWriteError reports a manifest that could not be written.
type ManifestWriteError struct {
	Path string
	Err  error
}

func (e *ManifestWriteError) Error() string {
	return fmt.Sprintf("writing manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestWriteError) Unwrap() error { return e.Err }
