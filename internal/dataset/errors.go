package dataset

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrEmptyDataset      = errors.New("dataset has no examples")
	ErrInvalidFeature    = errors.New("invalid feature")
	ErrLabelMismatch     = errors.New("number of labels does not match number of features")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrBadHeader         = errors.New("malformed header")
)

// ParseError describes a malformed line in a text data file.
type ParseError struct {
	Line  int    // 1-based line number
	Token string // Offending token, if any
	Err   error  // Underlying cause
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: token %q: %v", e.Line, e.Token, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
