package classifier

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm selects the solver used to train a model.
//
// The numeric codes 0-12 are stable: they are accepted on the command line
// and by ParseAlgorithm.
type Algorithm int

// Supported algorithms.
const (
	LBFGS Algorithm = iota
	GDLineSearch
	BarzilaiBorwein
	Nesterov
	ConjugateGradient
	SGD
	SGDDecaying
	AdaGrad
	OWLQN
	GD
	RDA
	RDAAdaGrad
	TRON
	CoordinateDescent
	SGDLineSearch
	SAG
)

var algorithmNames = [...]string{
	LBFGS:             "lbfgs",
	GDLineSearch:      "gd-linesearch",
	BarzilaiBorwein:   "bb",
	Nesterov:          "nesterov",
	ConjugateGradient: "cg",
	SGD:               "sgd",
	SGDDecaying:       "sgd-decaying",
	AdaGrad:           "adagrad",
	OWLQN:             "owlqn",
	GD:                "gd",
	RDA:               "rda",
	RDAAdaGrad:        "rda-adagrad",
	TRON:              "tron",
	CoordinateDescent: "cd",
	SGDLineSearch:     "sgd-linesearch",
	SAG:               "sag",
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if a >= 0 && int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Algorithms returns every supported algorithm in code order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithmNames))
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}

// ParseAlgorithm accepts an algorithm name ("lbfgs", "tron", ...) or its
// numeric code.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range algorithmNames {
		if s == name {
			return Algorithm(i), nil
		}
	}
	if code, err := strconv.Atoi(s); err == nil && code >= 0 && code < len(algorithmNames) {
		return Algorithm(code), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// stochastic reports whether the algorithm samples minibatches.
func (a Algorithm) stochastic() bool {
	switch a {
	case SGD, SGDDecaying, AdaGrad, RDA, RDAAdaGrad, SGDLineSearch, SAG:
		return true
	}
	return false
}

// defaultAlpha returns the step length the algorithm starts from when the
// config leaves Alpha at zero.
func (a Algorithm) defaultAlpha() float64 {
	switch a {
	case GD:
		return 1e-5
	case SGD:
		return 1e-4
	case SGDDecaying:
		return 0.05
	case AdaGrad:
		return 1e-2
	case RDA, RDAAdaGrad:
		return 0.1
	}
	return 1
}

// defaultGamma returns the Armijo factor of the line-search methods.
func (a Algorithm) defaultGamma() float64 {
	switch a {
	case GDLineSearch, BarzilaiBorwein, Nesterov, ConjugateGradient:
		return 1e-5
	}
	return 1e-4
}

// Penalty selects the regularizer added to the training loss.
type Penalty int

// Supported penalties.
const (
	L2 Penalty = iota // λ/2 ‖w‖²
	L1                // λ ‖w‖₁
)

// String implements fmt.Stringer.
func (p Penalty) String() string {
	switch p {
	case L2:
		return "l2"
	case L1:
		return "l1"
	}
	return fmt.Sprintf("Penalty(%d)", int(p))
}

// ParsePenalty accepts "l1" or "l2".
func ParsePenalty(s string) (Penalty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2":
		return L2, nil
	case "l1":
		return L1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPenalty, s)
}
