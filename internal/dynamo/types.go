package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Mat2 is a 2x2 matrix stored row-major: m[row][col].
type Mat2 [2][2]float64

// Diag returns the diagonal matrix diag(x, y).
func Diag(x, y float64) Mat2 {
	return Mat2{{x, 0}, {0, y}}
}

// Outer returns the outer product a ⊗ b, i.e. m[i][j] = a_i * b_j.
func Outer(a, b r2.Vec) Mat2 {
	return Mat2{
		{a.X * b.X, a.X * b.Y},
		{a.Y * b.X, a.Y * b.Y},
	}
}

func (m Mat2) MulVec(v r2.Vec) r2.Vec {
	return r2.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y,
		Y: m[1][0]*v.X + m[1][1]*v.Y,
	}
}

func (m Mat2) Add(o Mat2) Mat2 {
	return Mat2{
		{m[0][0] + o[0][0], m[0][1] + o[0][1]},
		{m[1][0] + o[1][0], m[1][1] + o[1][1]},
	}
}

func (m Mat2) Scale(f float64) Mat2 {
	return Mat2{
		{m[0][0] * f, m[0][1] * f},
		{m[1][0] * f, m[1][1] * f},
	}
}

func (m Mat2) Trace() float64 { return m[0][0] + m[1][1] }

func (m Mat2) IsFinite() bool {
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// VecFinite reports whether both components of v are finite.
func VecFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Clamp limits each component of v to [lo, hi].
func Clamp(v r2.Vec, lo, hi float64) r2.Vec {
	return r2.Vec{
		X: math.Min(math.Max(v.X, lo), hi),
		Y: math.Min(math.Max(v.Y, lo), hi),
	}
}
