// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linalg provides the dense vector type shared by the objectives and
// solvers, and the correction-pair history used by the quasi-Newton methods.
//
// Vector arithmetic returns new vectors; the InPlace variants mutate the
// receiver. Length mismatches panic.
//
// Example:
//
//	x := linalg.Vector{1, -2, 0}
//	y := x.AddScaled(0.5, linalg.Fill(3, 1))
//	fmt.Println(y.Norm(2), y.NNZ())
package linalg

import "github.com/born-ml/convex/internal/linalg"

// Vector is a dense real vector.
type Vector = linalg.Vector

// History is a fixed-capacity buffer of (s, y) correction pairs.
type History = linalg.History

// NewVector returns a zero vector of length n.
func NewVector(n int) Vector {
	return linalg.NewVector(n)
}

// Fill returns a vector of length n with every entry set to v.
func Fill(n int, v float64) Vector {
	return linalg.Fill(n, v)
}

// NewHistory creates an empty history holding up to memory pairs of
// dimension dim.
func NewHistory(memory, dim int) *History {
	return linalg.NewHistory(memory, dim)
}

// Sign returns -1, 0 or 1 according to the sign of x.
func Sign(x float64) float64 {
	return linalg.Sign(x)
}
