// Package demolist loads the curated list of demo directory names that make
// up a release bundle.
package demolist

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// DefaultPath is where the demo list lives relative to the repository root.
const DefaultPath = ".github/demo-bundle.json"

// List is an ordered sequence of demo directory names. Duplicates are kept.
type List []string

// ReadError reports a demo list file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading demo list %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports a demo list file whose content is not a JSON array of strings.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing demo list %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads path from fsys and decodes it as a JSON array of strings.
// An empty array is valid and yields an empty List.
func Load(fsys afero.Fs, path string) (List, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var demos []string
	if err := json.Unmarshal(data, &demos); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	// "null" decodes without error into a nil slice.
	if demos == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("expected a JSON array, got null")}
	}
	return List(demos), nil
}
