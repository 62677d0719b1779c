package points

import (
	"fmt"
	"math"

	"github.com/notargets/defelement/reference"
)

// Rule is a quadrature rule on a reference cell or on a sub-entity embedded
// in one.
type Rule struct {
	Points  [][]float64
	Weights []float64
}

func (r Rule) Len() int { return len(r.Weights) }

// gaussJacobi01 maps the N point Gauss-Jacobi(alpha,0) rule onto [0,1], so
// that Σ w f(u) ≈ ∫ f(u) (1-u)^alpha du.
func gaussJacobi01(alpha float64, n int) (u, w []float64) {
	var (
		scale = math.Pow(0.5, alpha+1)
	)
	r, wr := JacobiGQ(alpha, 0, n-1)
	u = make([]float64, n)
	w = make([]float64, n)
	for i := range r {
		u[i] = 0.5 * (r[i] + 1)
		w[i] = wr[i] * scale
	}
	return
}

// Quadrature returns a rule on the named reference cell that integrates
// polynomials of total degree up to degree exactly. Tensor products of Gauss
// rules are used on the boxes and collapsed (Duffy) products on the simplices
// and the pyramid, with the collapse Jacobian absorbed into Gauss-Jacobi
// weights.
func Quadrature(cell string, degree int) (rule Rule, err error) {
	var (
		ct reference.CellType
		n  = degree/2 + 1
	)
	if degree < 0 {
		err = fmt.Errorf("negative quadrature degree %d", degree)
		return
	}
	if ct, _, err = reference.ParseCellType(cell); err != nil {
		return
	}
	u0, w0 := gaussJacobi01(0, n)
	switch ct {
	case reference.Point:
		rule = Rule{Points: [][]float64{{0}}, Weights: []float64{1}}
	case reference.Interval:
		for i := range u0 {
			rule.add(w0[i], u0[i])
		}
	case reference.Quadrilateral:
		for i := range u0 {
			for j := range u0 {
				rule.add(w0[i]*w0[j], u0[i], u0[j])
			}
		}
	case reference.Hexahedron:
		for i := range u0 {
			for j := range u0 {
				for k := range u0 {
					rule.add(w0[i]*w0[j]*w0[k], u0[i], u0[j], u0[k])
				}
			}
		}
	case reference.Triangle:
		u1, w1 := gaussJacobi01(1, n)
		for i := range u1 {
			for j := range u0 {
				rule.add(w1[i]*w0[j], u1[i], u0[j]*(1-u1[i]))
			}
		}
	case reference.Tetrahedron:
		u1, w1 := gaussJacobi01(1, n)
		u2, w2 := gaussJacobi01(2, n)
		for i := range u2 {
			for j := range u1 {
				for k := range u0 {
					x := u2[i]
					y := u1[j] * (1 - x)
					z := u0[k] * (1 - x - y)
					rule.add(w2[i]*w1[j]*w0[k], x, y, z)
				}
			}
		}
	case reference.Prism:
		u1, w1 := gaussJacobi01(1, n)
		for i := range u1 {
			for j := range u0 {
				for k := range u0 {
					rule.add(w1[i]*w0[j]*w0[k], u1[i], u0[j]*(1-u1[i]), u0[k])
				}
			}
		}
	case reference.Pyramid:
		u2, w2 := gaussJacobi01(2, n)
		for k := range u2 {
			for i := range u0 {
				for j := range u0 {
					z := u2[k]
					rule.add(w2[k]*w0[i]*w0[j], u0[i]*(1-z), u0[j]*(1-z), z)
				}
			}
		}
	default:
		err = fmt.Errorf("%w: no quadrature on %q", reference.ErrUnsupportedCellType, cell)
	}
	return
}

func (r *Rule) add(w float64, x ...float64) {
	r.Points = append(r.Points, x)
	r.Weights = append(r.Weights, w)
}

// EntityQuadratureRules returns a rule of the given degree on every
// sub-entity of dimension below the cell's, with weights scaled to the
// measure of the sub-entity inside the cell.
func EntityQuadratureRules(cell string, degree int) (rules [][]Rule, err error) {
	var (
		c *reference.Cell
	)
	if c, err = reference.New(cell); err != nil {
		return
	}
	rules = make([][]Rule, c.TDim)
	for dim := 0; dim < c.TDim; dim++ {
		rules[dim] = make([]Rule, c.SubEntityCount(dim))
		for i := range rules[dim] {
			se := c.SubEntity(dim, i)
			var local Rule
			if local, err = Quadrature(se.Type.String(), degree); err != nil {
				return
			}
			scale := se.Scale()
			mapped := Rule{
				Points:  make([][]float64, local.Len()),
				Weights: make([]float64, local.Len()),
			}
			for n, p := range local.Points {
				mapped.Points[n] = se.Map(p)
				mapped.Weights[n] = local.Weights[n] * scale
			}
			rules[dim][i] = mapped
		}
	}
	return
}
