package ciarlet

import (
	"github.com/notargets/defelement/utils"
)

type term struct {
	coeff float64
	exp   [3]int
}

// Poly is a scalar polynomial in up to three variables, as a sum of monomials.
type Poly []term

// Monomial returns x^a y^b z^c.
func Monomial(a, b, c int) Poly { return Poly{{coeff: 1, exp: [3]int{a, b, c}}} }

func (p Poly) Eval(x []float64) (v float64) {
	for _, t := range p {
		m := t.coeff
		for i, e := range t.exp {
			if e == 0 {
				continue
			}
			m *= utils.POW(x[i], e)
		}
		v += m
	}
	return
}

func (p Poly) Deriv(dir int) (d Poly) {
	for _, t := range p {
		if t.exp[dir] == 0 {
			continue
		}
		nt := t
		nt.coeff *= float64(t.exp[dir])
		nt.exp[dir]--
		d = append(d, nt)
	}
	return
}

func (p Poly) Mul(q Poly) (r Poly) {
	for _, a := range p {
		for _, b := range q {
			r = append(r, term{
				coeff: a.coeff * b.coeff,
				exp:   [3]int{a.exp[0] + b.exp[0], a.exp[1] + b.exp[1], a.exp[2] + b.exp[2]},
			})
		}
	}
	return
}

func (p Poly) Scale(s float64) (r Poly) {
	r = make(Poly, len(p))
	for i, t := range p {
		r[i] = term{coeff: t.coeff * s, exp: t.exp}
	}
	return
}

// VPoly is a vector valued polynomial, one Poly per component.
type VPoly []Poly

func (v VPoly) Eval(x []float64) (vals []float64) {
	vals = make([]float64, len(v))
	for c, p := range v {
		vals[c] = p.Eval(x)
	}
	return
}

// monomials of total degree at most k, or exactly k when homogeneous is set,
// in tdim variables. The last variable varies fastest.
func simplexMonomials(tdim, k int, homogeneous bool) (ps []Poly) {
	switch tdim {
	case 1:
		for a := 0; a <= k; a++ {
			if !homogeneous || a == k {
				ps = append(ps, Monomial(a, 0, 0))
			}
		}
	case 2:
		for a := 0; a <= k; a++ {
			for b := 0; a+b <= k; b++ {
				if !homogeneous || a+b == k {
					ps = append(ps, Monomial(a, b, 0))
				}
			}
		}
	case 3:
		for a := 0; a <= k; a++ {
			for b := 0; a+b <= k; b++ {
				for c := 0; a+b+c <= k; c++ {
					if !homogeneous || a+b+c == k {
						ps = append(ps, Monomial(a, b, c))
					}
				}
			}
		}
	}
	return
}

// boxMonomials spans Q_k: every exponent at most k.
func boxMonomials(tdim, k int) (ps []Poly) {
	var (
		kb = k
		kc = k
	)
	if tdim < 2 {
		kb = 0
	}
	if tdim < 3 {
		kc = 0
	}
	for a := 0; a <= k; a++ {
		for b := 0; b <= kb; b++ {
			for c := 0; c <= kc; c++ {
				ps = append(ps, Monomial(a, b, c))
			}
		}
	}
	return
}

func scalarSpan(ps []Poly) (vs []VPoly) {
	vs = make([]VPoly, len(ps))
	for i, p := range ps {
		vs[i] = VPoly{p}
	}
	return
}

// vectorSpan returns [span(ps)]^dim, component by component.
func vectorSpan(ps []Poly, dim int) (vs []VPoly) {
	for c := 0; c < dim; c++ {
		for _, p := range ps {
			v := make(VPoly, dim)
			v[c] = p
			vs = append(vs, v)
		}
	}
	return
}
