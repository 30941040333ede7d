package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound   = errors.New("dataset file not found")
	ErrEmptyFile      = errors.New("dataset file is empty")
	ErrMissingColumns = errors.New("dataset is missing required columns")
	ErrMalformedRow   = errors.New("malformed dataset row")
)

// LoadError describes why a dataset could not be loaded.
// Line is the 1-based CSV record number (the header is line 1), 0 when the
// failure is not tied to a row.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "<reader>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
