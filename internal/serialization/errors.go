package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrMissingChecksum    = errors.New("model file has no checksum")
	ErrInvalidMagic       = errors.New("invalid magic line")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrBadFormat          = errors.New("malformed model file")
	ErrWeightCount        = errors.New("weight count does not match header")
	ErrTooManyWeights     = errors.New("too many weights in file")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "bad_name", "non_finite")
	Field   string // Header field or weight position involved
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Field, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// LineError reports a malformed line of a model file.
type LineError struct {
	Line int    // 1-based line number
	Text string // Offending line
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}
