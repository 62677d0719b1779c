package ciarlet

import (
	"fmt"

	"github.com/notargets/defelement/points"
	"github.com/notargets/defelement/reference"
	"github.com/notargets/defelement/types"
)

type familyFunc func(c *reference.Cell, degree int, variant string) (*Element, error)

var (
	families = map[string]familyFunc{
		"lagrange":               createLagrange,
		"discontinuous-lagrange": createDiscontinuousLagrange,
		"hermite":                createHermite,
		"crouzeix-raviart":       createCrouzeixRaviart,
		"raviart-thomas":         createRaviartThomas,
		"nedelec1":               createNedelec1,
		"bdm":                    createBDM,
		"nedelec2":               createNedelec2,
	}
)

// Families lists the element family names Create understands.
func Families() (names []string) {
	for name := range families {
		names = append(names, name)
	}
	return
}

// Create builds the named element. Combinations of family, cell, degree and
// variant that are not available return an error wrapping
// types.ErrNotImplemented.
func Create(family, cell string, degree int, variant string) (el *Element, err error) {
	var (
		c  *reference.Cell
		ff familyFunc
		ok bool
	)
	if ff, ok = families[family]; !ok {
		err = fmt.Errorf("family %q: %w", family, types.ErrNotImplemented)
		return
	}
	if c, err = reference.New(cell); err != nil {
		return
	}
	if degree < 0 {
		err = fmt.Errorf("negative degree %d", degree)
		return
	}
	return ff(c, degree, variant)
}

func notImplemented(family string, c *reference.Cell, degree int, variant string) error {
	if variant != "" {
		return fmt.Errorf("%s degree %d variant %s on %s: %w", family, degree, variant, c.Name, types.ErrNotImplemented)
	}
	return fmt.Errorf("%s degree %d on %s: %w", family, degree, c.Name, types.ErrNotImplemented)
}

// polyset is P_k on simplices and Q_k on boxes.
func polyset(c *reference.Cell, k int) (ps []Poly, ok bool) {
	switch c.Type {
	case reference.Interval, reference.Triangle, reference.Tetrahedron:
		return simplexMonomials(c.TDim, k, false), true
	case reference.Quadrilateral, reference.Hexahedron:
		return boxMonomials(c.TDim, k), true
	}
	return nil, false
}

// lattice1D returns the k+1 node coordinates on [0,1] for a variant.
func lattice1D(k int, variant string) (x []float64, ok bool) {
	switch variant {
	case "", "equispaced":
		x = make([]float64, k+1)
		for i := range x {
			x[i] = float64(i) / float64(k)
		}
		return x, true
	case "gll":
		r := points.JacobiGL(0, 0, k)
		x = make([]float64, k+1)
		for i := range r {
			x[i] = 0.5 * (r[i] + 1)
		}
		return x, true
	}
	return nil, false
}

// interiorLattice returns the lattice points strictly inside a reference
// cell of the given type, in that cell's own coordinates.
func interiorLattice(ct reference.CellType, x []float64) (pts [][]float64) {
	var (
		k = len(x) - 1
	)
	switch ct {
	case reference.Point:
		pts = [][]float64{{}}
	case reference.Interval:
		for i := 1; i < k; i++ {
			pts = append(pts, []float64{x[i]})
		}
	case reference.Triangle:
		for j := 1; j < k; j++ {
			for i := 1; i+j < k; i++ {
				pts = append(pts, []float64{x[i], x[j]})
			}
		}
	case reference.Quadrilateral:
		for j := 1; j < k; j++ {
			for i := 1; i < k; i++ {
				pts = append(pts, []float64{x[i], x[j]})
			}
		}
	case reference.Tetrahedron:
		for l := 1; l < k; l++ {
			for j := 1; j+l < k; j++ {
				for i := 1; i+j+l < k; i++ {
					pts = append(pts, []float64{x[i], x[j], x[l]})
				}
			}
		}
	case reference.Hexahedron:
		for l := 1; l < k; l++ {
			for j := 1; j < k; j++ {
				for i := 1; i < k; i++ {
					pts = append(pts, []float64{x[i], x[j], x[l]})
				}
			}
		}
	}
	return
}

func isSimplex(c *reference.Cell) bool {
	switch c.Type {
	case reference.Interval, reference.Triangle, reference.Tetrahedron:
		return true
	}
	return false
}

func centroid(c *reference.Cell) (x []float64) {
	x = make([]float64, c.TDim)
	for _, v := range c.Vertices {
		for n := range x {
			x[n] += v[n] / float64(len(c.Vertices))
		}
	}
	return
}

func createLagrange(c *reference.Cell, k int, variant string) (el *Element, err error) {
	var (
		ps []Poly
		x  []float64
		ok bool
	)
	if ps, ok = polyset(c, k); !ok || k == 0 {
		return nil, notImplemented("lagrange", c, k, variant)
	}
	if x, ok = lattice1D(k, variant); !ok || (variant == "gll" && isSimplex(c) && c.TDim > 1) {
		return nil, notImplemented("lagrange", c, k, variant)
	}
	b := newBuilder(c)
	for dim := 0; dim <= c.TDim; dim++ {
		for e := 0; e < c.SubEntityCount(dim); e++ {
			se := c.SubEntity(dim, e)
			for _, p := range interiorLattice(se.Type, x) {
				b.add(dim, e, PointEval{X: se.Map(p)})
			}
		}
	}
	return b.build("lagrange", k, 1, scalarSpan(ps))
}

func createDiscontinuousLagrange(c *reference.Cell, k int, variant string) (el *Element, err error) {
	var (
		ps []Poly
		x  []float64
		ok bool
	)
	if ps, ok = polyset(c, k); !ok {
		return nil, notImplemented("discontinuous-lagrange", c, k, variant)
	}
	b := newBuilder(c)
	if k == 0 {
		b.add(c.TDim, 0, PointEval{X: centroid(c)})
		return b.build("discontinuous-lagrange", k, 1, scalarSpan(ps))
	}
	if x, ok = lattice1D(k, variant); !ok || (variant == "gll" && isSimplex(c) && c.TDim > 1) {
		return nil, notImplemented("discontinuous-lagrange", c, k, variant)
	}
	for dim := 0; dim <= c.TDim; dim++ {
		for e := 0; e < c.SubEntityCount(dim); e++ {
			se := c.SubEntity(dim, e)
			for _, p := range interiorLattice(se.Type, x) {
				b.add(c.TDim, 0, PointEval{X: se.Map(p)})
			}
		}
	}
	return b.build("discontinuous-lagrange", k, 1, scalarSpan(ps))
}

// createHermite builds the cubic Hermite element: value and gradient at each
// vertex, plus values at the centroids of the triangles.
func createHermite(c *reference.Cell, k int, variant string) (el *Element, err error) {
	if k != 3 || !isSimplex(c) || variant != "" {
		return nil, notImplemented("hermite", c, k, variant)
	}
	b := newBuilder(c)
	for v, x := range c.Vertices {
		b.add(0, v, PointEval{X: x})
		for dir := 0; dir < c.TDim; dir++ {
			b.add(0, v, PointDeriv{X: x, Dir: dir})
		}
	}
	if c.TDim >= 2 {
		for e := 0; e < c.SubEntityCount(2); e++ {
			se := c.SubEntity(2, e)
			b.add(2, e, PointEval{X: se.Map([]float64{1. / 3., 1. / 3.})})
		}
	}
	return b.build("hermite", k, 1, scalarSpan(simplexMonomials(c.TDim, 3, false)))
}

func createCrouzeixRaviart(c *reference.Cell, k int, variant string) (el *Element, err error) {
	if k != 1 || (c.Type != reference.Triangle && c.Type != reference.Tetrahedron) || variant != "" {
		return nil, notImplemented("crouzeix-raviart", c, k, variant)
	}
	var (
		fdim = c.TDim - 1
	)
	b := newBuilder(c)
	for e := 0; e < c.SubEntityCount(fdim); e++ {
		se := c.SubEntity(fdim, e)
		mid := make([]float64, fdim)
		for n := range mid {
			mid[n] = 1 / float64(fdim+1)
		}
		b.add(fdim, e, PointEval{X: se.Map(mid)})
	}
	return b.build("crouzeix-raviart", k, 1, scalarSpan(simplexMonomials(c.TDim, 1, false)))
}
