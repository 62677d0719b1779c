package ciarlet

import (
	"github.com/notargets/defelement/utils"
)

// Functional is a degree of freedom: a linear map from the polynomial span
// to the reals.
type Functional interface {
	Apply(v VPoly) float64
}

// PointEval evaluates the first component at X.
type PointEval struct {
	X []float64
}

func (f PointEval) Apply(v VPoly) float64 { return v[0].Eval(f.X) }

// PointDeriv evaluates the derivative of the first component in direction
// Dir at X.
type PointDeriv struct {
	X   []float64
	Dir int
}

func (f PointDeriv) Apply(v VPoly) float64 { return v[0].Deriv(f.Dir).Eval(f.X) }

// IntegralMoment is Σ_n W[n] v(X[n])·Q[n], a quadrature of v against a
// vector test function.
type IntegralMoment struct {
	X [][]float64
	W []float64
	Q [][]float64
}

func (f IntegralMoment) Apply(v VPoly) (sum float64) {
	for n, x := range f.X {
		sum += f.W[n] * utils.Dot(v.Eval(x), f.Q[n])
	}
	return
}
