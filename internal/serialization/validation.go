package serialization

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Validation limits for security and resource protection.
const (
	MaxFeatures   = 1 << 28     // Maximum feature dimension
	MaxClasses    = 1 << 16     // Maximum number of classes
	MaxWeights    = 1 << 30     // Maximum total number of weights
	MaxNameLen    = 256         // Maximum algorithm, loss and parameter name length
	MaxHeaderLine = 1024 * 1024 // Maximum header line length in bytes
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default, recommended for production).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal performs basic validation checks only.
	ValidationNormal
	// ValidationNone skips validation (dangerous! Use only with trusted input).
	ValidationNone
)

// ValidateName checks algorithm, loss and parameter names. Names are single
// header tokens, so whitespace and control characters are rejected.
func ValidateName(field, name string) error {
	if name == "" {
		return &ValidationError{Type: "bad_name", Field: field, Details: "empty"}
	}
	if len(name) > MaxNameLen {
		return &ValidationError{
			Type:    "bad_name",
			Field:   field,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxNameLen),
		}
	}
	if strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return &ValidationError{
			Type:    "bad_name",
			Field:   field,
			Details: fmt.Sprintf("%q contains whitespace or control characters", name),
		}
	}
	return nil
}

// ValidateHeader performs comprehensive header validation.
func ValidateHeader(h *Header, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, h.Version, FormatVersion)
	}
	if err := ValidateName(keyAlgorithm, h.Algorithm); err != nil {
		return err
	}
	if h.NumFeatures <= 0 || h.NumFeatures > MaxFeatures {
		return &ValidationError{
			Type:    "bad_dimension",
			Field:   keyFeatures,
			Details: fmt.Sprintf("got %d, want 1..%d", h.NumFeatures, MaxFeatures),
		}
	}
	if len(h.Classes) == 1 || len(h.Classes) > MaxClasses {
		return &ValidationError{
			Type:    "bad_classes",
			Field:   keyClasses,
			Details: fmt.Sprintf("got %d, want 0 or 2..%d", len(h.Classes), MaxClasses),
		}
	}
	if total := h.Rows() * h.RowLen(); total > MaxWeights {
		return fmt.Errorf("%w: %d > %d", ErrTooManyWeights, total, MaxWeights)
	}

	// Names and label uniqueness (strict only).
	if level == ValidationStrict {
		if h.Loss != "" {
			if err := ValidateName(keyLoss, h.Loss); err != nil {
				return err
			}
		}
		for _, k := range h.sortedParams() {
			if err := ValidateName(keyParam, k); err != nil {
				return err
			}
			if strings.ContainsAny(h.Params[k], "\r\n") {
				return &ValidationError{Type: "bad_param", Field: k, Details: "value contains a line break"}
			}
		}
		seen := make(map[float64]bool, len(h.Classes))
		for _, c := range h.Classes {
			if seen[c] {
				return &ValidationError{Type: "bad_classes", Field: keyClasses, Details: fmt.Sprintf("duplicate label %g", c)}
			}
			seen[c] = true
		}
	}

	return nil
}

// ValidateWeights checks that every weight is finite.
func ValidateWeights(rows [][]float64) error {
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &ValidationError{
					Type:    "non_finite",
					Field:   fmt.Sprintf("w[%d][%d]", i, j),
					Details: fmt.Sprintf("value %v", v),
				}
			}
		}
	}
	return nil
}
