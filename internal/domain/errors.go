package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateURL is returned when an article URL is already stored.
	ErrDuplicateURL = errors.New("article url already stored")
	// ErrConflict is returned when a unique source or category field is taken.
	ErrConflict = errors.New("already exists")
)

// FetchErrorKind classifies fetch failures.
type FetchErrorKind string

const (
	FetchTimeout   FetchErrorKind = "timeout"
	FetchNetwork   FetchErrorKind = "network"
	FetchBadStatus FetchErrorKind = "bad-status"
)

// FetchError reports a failed HTTP GET.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchBadStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionErrorKind names the mandatory field that could not be extracted.
type ExtractionErrorKind string

const (
	MissingTitle   ExtractionErrorKind = "missing-title"
	MissingContent ExtractionErrorKind = "missing-content"
)

// ExtractionError reports an article page that lacks a mandatory field.
type ExtractionError struct {
	Kind ExtractionErrorKind
}

func (e *ExtractionError) Error() string {
	return "extract article: " + string(e.Kind)
}

// IntegrityError signals a broken reference between stored records.
type IntegrityError struct {
	ArticleID int64
	SourceID  int64
	Detail    string
}

func (e *IntegrityError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("referential violation: article %d source %d: %s", e.ArticleID, e.SourceID, e.Detail)
	}
	return fmt.Sprintf("referential violation: article %d references missing source %d", e.ArticleID, e.SourceID)
}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsIntegrity reports whether err wraps an IntegrityError.
func IsIntegrity(err error) bool {
	var i *IntegrityError
	return errors.As(err, &i)
}
