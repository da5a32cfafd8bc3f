// Package linalg provides the small dense linear-algebra layer shared by the
// solvers: a value-semantics Vector backed by gonum/floats and the correction
// History used by the quasi-Newton methods.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a dense real vector.
//
// Arithmetic methods (Add, Sub, Scale, AddScaled, ...) return a new Vector and
// leave their operands untouched. The *InPlace variants mutate the receiver and
// are meant for solver hot loops working on their own copies.
//
// Operations on vectors of different lengths panic.
type Vector []float64

// NewVector returns a zero vector of length n.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Fill returns a vector of length n with every element set to v.
func Fill(n int, v float64) Vector {
	out := make(Vector, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Len returns the number of elements.
func (v Vector) Len() int {
	return len(v)
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	mustSameLen("Add", v, w)
	out := make(Vector, len(v))
	floats.AddTo(out, v, w)
	return out
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	mustSameLen("Sub", v, w)
	out := make(Vector, len(v))
	floats.SubTo(out, v, w)
	return out
}

// Mul returns the element-wise product of v and w.
func (v Vector) Mul(w Vector) Vector {
	mustSameLen("Mul", v, w)
	out := make(Vector, len(v))
	floats.MulTo(out, v, w)
	return out
}

// Scale returns a*v.
func (v Vector) Scale(a float64) Vector {
	out := v.Clone()
	floats.Scale(a, out)
	return out
}

// AddScaled returns v + a*w.
func (v Vector) AddScaled(a float64, w Vector) Vector {
	mustSameLen("AddScaled", v, w)
	out := make(Vector, len(v))
	floats.AddScaledTo(out, v, a, w)
	return out
}

// AddScaledInPlace performs v += a*w.
func (v Vector) AddScaledInPlace(a float64, w Vector) {
	mustSameLen("AddScaledInPlace", v, w)
	floats.AddScaled(v, a, w)
}

// ScaleInPlace performs v *= a.
func (v Vector) ScaleInPlace(a float64) {
	floats.Scale(a, v)
}

// CopyFrom overwrites v with the contents of w.
func (v Vector) CopyFrom(w Vector) {
	mustSameLen("CopyFrom", v, w)
	copy(v, w)
}

// Zero sets every element of v to 0.
func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) float64 {
	mustSameLen("Dot", v, w)
	return floats.Dot(v, w)
}

// Norm returns the L-norm of v.
//
// L = 0 counts the non-zero elements, L = 1, 2 and math.Inf(1) are the usual
// norms. Any other positive L is the general p-norm.
func (v Vector) Norm(L float64) float64 {
	if len(v) == 0 {
		return 0
	}
	if L == 0 {
		return float64(v.NNZ())
	}
	return floats.Norm(v, L)
}

// SquaredNorm returns v·v.
func (v Vector) SquaredNorm() float64 {
	return floats.Dot(v, v)
}

// NNZ returns the number of non-zero elements.
func (v Vector) NNZ() int {
	n := 0
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return n
}

// Sign returns the element-wise sign of v (-1, 0 or 1).
func (v Vector) Sign() Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = Sign(x)
	}
	return out
}

// Abs returns the element-wise absolute value of v.
func (v Vector) Abs() Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

// IsFinite reports whether every element of v is finite.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Sign returns -1, 0 or 1 according to the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func mustSameLen(op string, v, w Vector) {
	if len(v) != len(w) {
		panic(fmt.Sprintf("linalg.Vector.%s: length mismatch %d != %d", op, len(v), len(w)))
	}
}
