package models

import "fmt"

// RetrievalError reports a transport failure or an unusable response at the
// page-fetch boundary.
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ParseError reports a payload that could not be decoded into the expected
// shape.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SnapshotError reports an unreadable or corrupt checkpoint.
type SnapshotError struct {
	Name string
	Err  error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %q: %v", e.Name, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
