package serialization

import (
	"fmt"
	"sort"
)

// Format constants.
const (
	MagicWord     = "convex-model"
	FormatVersion = 1 // v1: text header, SHA-256 checksum over the weight section
)

// Header keywords.
const (
	keyAlgorithm = "algorithm"
	keyLoss      = "loss"
	keyClasses   = "classes"
	keyFeatures  = "features"
	keyBias      = "bias"
	keyParam     = "param"
	keyChecksum  = "checksum"
	keyWeights   = "w"
)

// Header describes a model file.
type Header struct {
	Version     int               // Format version
	Algorithm   string            // Solver name (e.g., "lbfgs", "cd")
	Loss        string            // Objective loss name (e.g., "logistic")
	Classes     []float64         // Class labels in decision-row order; empty for regression
	NumFeatures int               // Feature dimension, bias excluded
	Bias        bool              // Every row carries a trailing bias weight
	Params      map[string]string // Training parameters (e.g., "lambda")
}

// Rows returns the number of weight rows the header implies: one for
// regression and binary classification, one per class otherwise.
func (h *Header) Rows() int {
	if len(h.Classes) > 2 {
		return len(h.Classes)
	}
	return 1
}

// RowLen returns the number of weights per row.
func (h *Header) RowLen() int {
	if h.Bias {
		return h.NumFeatures + 1
	}
	return h.NumFeatures
}

// sortedParams returns the parameter keys in a stable order.
func (h *Header) sortedParams() []string {
	keys := make([]string, 0, len(h.Params))
	for k := range h.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Model is a header plus its weight rows.
type Model struct {
	Header
	Weights [][]float64
}

// checkShape verifies that the weight rows match the header.
func (m *Model) checkShape() error {
	if len(m.Weights) != m.Rows() {
		return fmt.Errorf("%w: %d rows, header implies %d", ErrWeightCount, len(m.Weights), m.Rows())
	}
	for i, row := range m.Weights {
		if len(row) != m.RowLen() {
			return fmt.Errorf("%w: row %d has %d weights, want %d", ErrWeightCount, i, len(row), m.RowLen())
		}
	}
	return nil
}
