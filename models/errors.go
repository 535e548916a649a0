package models

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a stage has no records to work with.
var ErrEmptyBatch = errors.New("empty batch")

// FetchError reports a page request that failed. It ends the current region only.
type FetchError struct {
	Region     string
	Page       int
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s page %d (%s): %v", e.Region, e.Page, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s page %d (%s): unexpected status %d", e.Region, e.Page, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a listing element whose structure could not be read.
// It skips that listing only.
type ParseError struct {
	Index   int
	Element string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("listing %d: missing element %q", e.Index, e.Element)
}

// MissingInputError reports an input file that a previous stage should have produced.
type MissingInputError struct {
	Path         string
	Prerequisite string
	Err          error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input file %q not found: run the %q stage first", e.Path, e.Prerequisite)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// CoercionError reports a field that could not be converted and has no defined default.
type CoercionError struct {
	Field  string
	Value  string
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s %q: %s", e.Field, e.Value, e.Reason)
}
