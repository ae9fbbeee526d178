package csvfeed

import (
	"errors"
	"fmt"
)

// Feed error codes
const (
	ErrCodeFeedInvalidFile     = "ERR_FEED_INVALID_FILE"
	ErrCodeFeedEmptyFile       = "ERR_FEED_EMPTY_FILE"
	ErrCodeFeedInvalidEncoding = "ERR_FEED_INVALID_ENCODING"
	ErrCodeFeedMissingHeader   = "ERR_FEED_MISSING_HEADER"
	ErrCodeFeedMissingColumn   = "ERR_FEED_MISSING_COLUMN"
	ErrCodeFeedMalformedRow    = "ERR_FEED_MALFORMED_ROW"
)

// Common feed errors. All of these are fatal pre-flight conditions: they
// abort the run before any order is written.
var (
	// ErrEmptyFile is returned when the feed file is empty
	ErrEmptyFile = errors.New("feed file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the feed file has no header row
	ErrMissingHeader = errors.New("feed file missing header row")

	// ErrNoDataRows is returned when the feed file has no data rows
	ErrNoDataRows = errors.New("feed file contains no data rows")
)

// MissingColumnError is returned when a required logical column cannot be
// resolved against the file's headers.
type MissingColumnError struct {
	Column     string
	Candidates []string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found (accepted names: %v)", e.Column, e.Candidates)
}
