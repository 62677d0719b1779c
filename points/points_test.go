package points

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/defelement/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints(t *testing.T) {
	{ // Lattice sizes
		sizes := map[string]int{
			"point":         1,
			"interval":      21,
			"quadrilateral": 256,
			"triangle":      136,
			"hexahedron":    1331,
			"tetrahedron":   286,
			"prism":         726,
			"pyramid":       506,
		}
		for cell, n := range sizes {
			pts, err := Points(cell)
			require.NoError(t, err)
			assert.Lenf(t, pts, n, cell)
		}
	}
	{ // Ordering is i outermost
		pts, _ := Points("triangle")
		assert.Equal(t, []float64{0, 0}, pts[0])
		assert.Equal(t, []float64{0, 1. / 15}, pts[1])
		assert.Equal(t, []float64{1, 0}, pts[len(pts)-1])
	}
	{ // Points lie inside the pyramid
		pts, _ := Points("pyramid")
		for _, p := range pts {
			assert.True(t, p[2] <= 1-math.Max(p[0], p[1])+1e-14)
		}
	}
	{ // Unsupported
		_, err := Points("dual polygon(5)")
		assert.True(t, errors.Is(err, reference.ErrUnsupportedCellType))
		_, err = Points("circle")
		assert.True(t, errors.Is(err, reference.ErrUnsupportedCellType))
	}
}

func TestEntityPoints(t *testing.T) {
	{
		epts, err := EntityPoints("triangle")
		require.NoError(t, err)
		require.Len(t, epts, 2)
		assert.Equal(t, [][]float64{{0, 1}}, epts[0][2])
		// Edge 0 runs from vertex 1 to vertex 2
		require.Len(t, epts[1][0], 21)
		for _, p := range epts[1][0] {
			assert.InDelta(t, 1, p[0]+p[1], 1e-14)
		}
	}
	{
		epts, err := EntityPoints("hexahedron")
		require.NoError(t, err)
		assert.Len(t, epts[2], 6)
		assert.Len(t, epts[2][5], 256)
		for _, p := range epts[2][5] {
			assert.Equal(t, 1., p[2])
		}
	}
	{
		epts, err := EntityPoints("interval")
		require.NoError(t, err)
		assert.Equal(t, [][][][]float64{{{{0}}, {{1}}}}, epts)
	}
}

func TestJacobi(t *testing.T) {
	{ // Gauss-Legendre, 3 points
		X, W := JacobiGQ(0, 0, 2)
		assert.InDeltaSlice(t, []float64{-math.Sqrt(0.6), 0, math.Sqrt(0.6)}, X, 1e-14)
		assert.InDeltaSlice(t, []float64{5. / 9, 8. / 9, 5. / 9}, W, 1e-14)
	}
	{ // Lobatto points include the endpoints
		X := JacobiGL(0, 0, 4)
		assert.InDeltaSlice(t, []float64{-1, -math.Sqrt(3. / 7), 0, math.Sqrt(3. / 7), 1}, X, 1e-14)
	}
	{ // Unequal exponents: nodes are the roots of P_2^(1,0), (-1±√6)/5
		X, W := JacobiGQ(1, 0, 1)
		assert.InDeltaSlice(t, []float64{(-1 - math.Sqrt(6)) / 5, (-1 + math.Sqrt(6)) / 5}, X, 1e-14)
		assert.InDelta(t, 2., W[0]+W[1], 1e-14)
		// ∫ (1-r) r dr on [-1,1]
		assert.InDelta(t, -2./3, W[0]*X[0]+W[1]*X[1], 1e-14)
		X, W = JacobiGQ(2, 0, 2)
		var m3 float64
		for i := range X {
			m3 += W[i] * X[i] * X[i] * X[i]
		}
		// ∫ (1-r)^2 r^3 dr on [-1,1]
		assert.InDelta(t, -0.8, m3, 1e-13)
	}
	{ // Collapsed rules integrate x on the simplices
		rule, err := Quadrature("triangle", 2)
		require.NoError(t, err)
		var q float64
		for n, p := range rule.Points {
			q += rule.Weights[n] * p[0]
		}
		assert.InDelta(t, 1./6, q, 1e-14)
		rule, err = Quadrature("tetrahedron", 2)
		require.NoError(t, err)
		q = 0
		for n, p := range rule.Points {
			q += rule.Weights[n] * p[0]
		}
		assert.InDelta(t, 1./24, q, 1e-14)
	}
	{ // Orthonormality of JacobiP under its own quadrature
		X, W := JacobiGQ(1, 0, 6)
		for m := 0; m < 4; m++ {
			for n := 0; n < 4; n++ {
				pm, pn := JacobiP(X, 1, 0, m), JacobiP(X, 1, 0, n)
				var sum float64
				for i := range W {
					sum += W[i] * pm[i] * pn[i]
				}
				if m == n {
					assert.InDeltaf(t, 1, sum, 1e-12, "m=n=%d", m)
				} else {
					assert.InDeltaf(t, 0, sum, 1e-12, "m=%d n=%d", m, n)
				}
			}
		}
	}
}

// monomialIntegral integrates x^a y^b z^c exactly over the reference cells
func monomialIntegral(cell string, a, b, c int) float64 {
	fact := func(n int) float64 { return math.Gamma(float64(n + 1)) }
	switch cell {
	case "interval":
		return 1 / float64(a+1)
	case "quadrilateral":
		return 1 / float64((a+1)*(b+1))
	case "hexahedron":
		return 1 / float64((a+1)*(b+1)*(c+1))
	case "triangle":
		return fact(a) * fact(b) / fact(a+b+2)
	case "tetrahedron":
		return fact(a) * fact(b) * fact(c) / fact(a+b+c+3)
	case "prism":
		return fact(a) * fact(b) / fact(a+b+2) / float64(c+1)
	case "pyramid":
		// ∫ z^c (1-z)^(a+b+2) / ((a+1)(b+1)) dz
		return fact(c) * fact(a+b+2) / fact(a+b+c+3) / float64((a+1)*(b+1))
	}
	return math.NaN()
}

func TestQuadrature(t *testing.T) {
	cells := []string{"interval", "quadrilateral", "hexahedron", "triangle", "tetrahedron", "prism", "pyramid"}
	for _, cell := range cells {
		c, _ := reference.New(cell)
		for degree := 0; degree <= 6; degree++ {
			rule, err := Quadrature(cell, degree)
			require.NoError(t, err)
			var sum float64
			for _, w := range rule.Weights {
				sum += w
			}
			assert.InDeltaf(t, c.ReferenceVolume(), sum, 1e-13, "%s degree %d", cell, degree)
			for a := 0; a <= degree; a++ {
				for b := 0; b <= degree-a; b++ {
					for cc := 0; cc <= degree-a-b; cc++ {
						if c.TDim < 2 && b > 0 || c.TDim < 3 && cc > 0 {
							continue
						}
						var q float64
						for n, p := range rule.Points {
							v := math.Pow(p[0], float64(a))
							if c.TDim > 1 {
								v *= math.Pow(p[1], float64(b))
							}
							if c.TDim > 2 {
								v *= math.Pow(p[2], float64(cc))
							}
							q += rule.Weights[n] * v
						}
						assert.InDeltaf(t, monomialIntegral(cell, a, b, cc), q, 1e-13,
							"%s degree %d monomial (%d,%d,%d)", cell, degree, a, b, cc)
					}
				}
			}
		}
	}
	_, err := Quadrature("dual polygon(4)", 2)
	assert.True(t, errors.Is(err, reference.ErrUnsupportedCellType))
}

func TestEntityQuadratureRules(t *testing.T) {
	for _, cell := range []string{"triangle", "tetrahedron", "prism", "pyramid", "hexahedron"} {
		c, _ := reference.New(cell)
		rules, err := EntityQuadratureRules(cell, 4)
		require.NoError(t, err)
		require.Len(t, rules, c.TDim)
		for dim := range rules {
			for i, r := range rules[dim] {
				var sum float64
				for _, w := range r.Weights {
					sum += w
				}
				assert.InDeltaf(t, c.SubEntity(dim, i).Volume(), sum, 1e-13, "%s (%d,%d)", cell, dim, i)
			}
		}
	}
}
