package ciarlet

import (
	"github.com/notargets/defelement/points"
	"github.com/notargets/defelement/reference"
)

var (
	xPoly = Monomial(1, 0, 0)
	yPoly = Monomial(0, 1, 0)
)

// rtSpan is [P_{k-1}]² ⊕ x P̃_{k-1}, the lowest order being k = 1.
func rtSpan(k int) (vs []VPoly) {
	vs = vectorSpan(simplexMonomials(2, k-1, false), 2)
	for _, p := range simplexMonomials(2, k-1, true) {
		vs = append(vs, VPoly{xPoly.Mul(p), yPoly.Mul(p)})
	}
	return
}

// nedelecSpan is [P_{k-1}]² ⊕ (-y, x) P̃_{k-1}.
func nedelecSpan(k int) (vs []VPoly) {
	vs = vectorSpan(simplexMonomials(2, k-1, false), 2)
	for _, p := range simplexMonomials(2, k-1, true) {
		vs = append(vs, VPoly{yPoly.Mul(p).Scale(-1), xPoly.Mul(p)})
	}
	return
}

// edgeMoments adds n moments of the normal (or tangential) component on
// every edge of the triangle, against s^m for m < n.
func edgeMoments(b *builder, n int, normal bool) (err error) {
	var (
		rule points.Rule
	)
	if rule, err = points.Quadrature("interval", 2*n+2); err != nil {
		return
	}
	for e := 0; e < b.cell.SubEntityCount(1); e++ {
		var (
			se  = b.cell.SubEntity(1, e)
			t   = se.Axes[0]
			dir = []float64{t[0], t[1]}
			X   = make([][]float64, rule.Len())
			W   = make([]float64, rule.Len())
		)
		if normal {
			dir = []float64{t[1], -t[0]}
		}
		for q, s := range rule.Points {
			X[q] = se.Map(s)
			W[q] = rule.Weights[q] * se.Scale()
		}
		for m := 0; m < n; m++ {
			Q := make([][]float64, rule.Len())
			for q, s := range rule.Points {
				sm := Monomial(m, 0, 0).Eval(s)
				Q[q] = []float64{sm * dir[0], sm * dir[1]}
			}
			b.add(1, e, IntegralMoment{X: X, W: W, Q: Q})
		}
	}
	return
}

// interiorMoments adds a moment against each test function on the cell.
func interiorMoments(b *builder, tests []VPoly, degree int) (err error) {
	var (
		rule points.Rule
	)
	if len(tests) == 0 {
		return
	}
	if rule, err = points.Quadrature(b.cell.Name, degree); err != nil {
		return
	}
	for _, v := range tests {
		Q := make([][]float64, rule.Len())
		for q, x := range rule.Points {
			Q[q] = v.Eval(x)
		}
		b.add(b.cell.TDim, 0, IntegralMoment{X: rule.Points, W: rule.Weights, Q: Q})
	}
	return
}

func createHdivHcurl(family string, c *reference.Cell, k int, variant string,
	span []VPoly, nEdge int, normal bool, tests []VPoly) (el *Element, err error) {
	if c.Type != reference.Triangle || k < 1 || (variant != "" && variant != "legendre") {
		return nil, notImplemented(family, c, k, variant)
	}
	b := newBuilder(c)
	if err = edgeMoments(b, nEdge, normal); err != nil {
		return
	}
	if err = interiorMoments(b, tests, 2*k+2); err != nil {
		return
	}
	return b.build(family, k, 2, span)
}

func createRaviartThomas(c *reference.Cell, k int, variant string) (*Element, error) {
	var tests []VPoly
	if k >= 2 {
		tests = vectorSpan(simplexMonomials(2, k-2, false), 2)
	}
	return createHdivHcurl("raviart-thomas", c, k, variant, rtSpan(k), k, true, tests)
}

func createNedelec1(c *reference.Cell, k int, variant string) (*Element, error) {
	var tests []VPoly
	if k >= 2 {
		tests = vectorSpan(simplexMonomials(2, k-2, false), 2)
	}
	return createHdivHcurl("nedelec1", c, k, variant, nedelecSpan(k), k, false, tests)
}

// createBDM builds the full [P_k]² H(div) element, with interior moments
// against the first kind Nédélec space of degree k-1.
func createBDM(c *reference.Cell, k int, variant string) (*Element, error) {
	var tests []VPoly
	if k >= 2 {
		tests = nedelecSpan(k - 1)
	}
	return createHdivHcurl("bdm", c, k, variant,
		vectorSpan(simplexMonomials(2, k, false), 2), k+1, true, tests)
}

func createNedelec2(c *reference.Cell, k int, variant string) (*Element, error) {
	var tests []VPoly
	if k >= 2 {
		tests = rtSpan(k - 1)
	}
	return createHdivHcurl("nedelec2", c, k, variant,
		vectorSpan(simplexMonomials(2, k, false), 2), k+1, false, tests)
}
