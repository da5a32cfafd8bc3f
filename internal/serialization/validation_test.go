package serialization

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validHeader() Header {
	return Header{
		Version:     FormatVersion,
		Algorithm:   "lbfgs",
		Loss:        "logistic",
		Classes:     []float64{-1, 1},
		NumFeatures: 3,
		Params:      map[string]string{"lambda": "1"},
	}
}

// TestValidateHeader_Valid verifies that a well-formed header passes all levels.
func TestValidateHeader_Valid(t *testing.T) {
	h := validHeader()
	for _, level := range []ValidationLevel{ValidationStrict, ValidationNormal, ValidationNone} {
		if err := ValidateHeader(&h, level); err != nil {
			t.Errorf("level %d: expected no error, got: %v", level, err)
		}
	}

	regression := validHeader()
	regression.Classes = nil
	if err := ValidateHeader(&regression, ValidationStrict); err != nil {
		t.Errorf("Expected regression header to pass, got: %v", err)
	}
}

// TestValidateHeader_Invalid detects malformed headers.
func TestValidateHeader_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(h *Header)
		wantType string // ValidationError type, empty for sentinel errors
		wantErr  error
	}{
		{
			name:    "wrong version",
			mutate:  func(h *Header) { h.Version = 7 },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:     "empty algorithm",
			mutate:   func(h *Header) { h.Algorithm = "" },
			wantType: "bad_name",
		},
		{
			name:     "algorithm with space",
			mutate:   func(h *Header) { h.Algorithm = "gd line" },
			wantType: "bad_name",
		},
		{
			name:     "algorithm too long",
			mutate:   func(h *Header) { h.Algorithm = strings.Repeat("a", MaxNameLen+1) },
			wantType: "bad_name",
		},
		{
			name:     "zero features",
			mutate:   func(h *Header) { h.NumFeatures = 0 },
			wantType: "bad_dimension",
		},
		{
			name:     "single class",
			mutate:   func(h *Header) { h.Classes = []float64{1} },
			wantType: "bad_classes",
		},
		{
			name:     "duplicate class",
			mutate:   func(h *Header) { h.Classes = []float64{0, 1, 1} },
			wantType: "bad_classes",
		},
		{
			name:     "param value with newline",
			mutate:   func(h *Header) { h.Params["note"] = "a\nb" },
			wantType: "bad_param",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			tt.mutate(&h)
			err := ValidateHeader(&h, ValidationStrict)
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s error, got %s", tt.wantType, validationErr.Type)
			}
		})
	}
}

// TestValidateHeader_NormalSkipsNameChecks verifies the levels differ.
func TestValidateHeader_NormalSkipsNameChecks(t *testing.T) {
	h := validHeader()
	h.Classes = []float64{0, 1, 1}
	if err := ValidateHeader(&h, ValidationNormal); err != nil {
		t.Errorf("Expected normal validation to skip label checks, got: %v", err)
	}
	if err := ValidateHeader(&h, ValidationStrict); err == nil {
		t.Error("Expected strict validation to reject duplicate labels")
	}
}

// TestValidateWeights detects non-finite weights.
func TestValidateWeights(t *testing.T) {
	if err := ValidateWeights([][]float64{{1, -2, 0}}); err != nil {
		t.Errorf("Expected finite weights to pass, got: %v", err)
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := ValidateWeights([][]float64{{0, 0}, {1, v}})
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Expected ValidationError for %v, got %v", v, err)
		}
		if validationErr.Field != "w[1][1]" {
			t.Errorf("Expected field w[1][1], got %s", validationErr.Field)
		}
	}
}

// TestValidationError_Error verifies message formatting.
func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Type: "bad_name", Field: "algorithm", Details: "empty"}
	if got := err.Error(); got != "bad_name: algorithm: empty" {
		t.Errorf("Unexpected message %q", got)
	}
	err = &ValidationError{Type: "non_finite", Details: "x"}
	if got := err.Error(); got != "non_finite: x" {
		t.Errorf("Unexpected message %q", got)
	}
}
