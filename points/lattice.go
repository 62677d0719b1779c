package points

import (
	"fmt"

	"github.com/notargets/defelement/reference"
)

// Points returns the verification lattice of a reference cell. The lattices
// are dense enough to determine every polynomial space DefElement verifies
// and their ordering is deterministic: i outermost, then j, then k.
func Points(cell string) (pts [][]float64, err error) {
	var (
		ct reference.CellType
	)
	if ct, _, err = reference.ParseCellType(cell); err != nil {
		return
	}
	switch ct {
	case reference.Point:
		pts = [][]float64{{0}}
	case reference.Interval:
		for i := 0; i <= 20; i++ {
			pts = append(pts, []float64{float64(i) / 20})
		}
	case reference.Quadrilateral:
		for i := 0; i < 16; i++ {
			for j := 0; j < 16; j++ {
				pts = append(pts, []float64{float64(i) / 15, float64(j) / 15})
			}
		}
	case reference.Triangle:
		for i := 0; i < 16; i++ {
			for j := 0; j < 16-i; j++ {
				pts = append(pts, []float64{float64(i) / 15, float64(j) / 15})
			}
		}
	case reference.Hexahedron:
		for i := 0; i < 11; i++ {
			for j := 0; j < 11; j++ {
				for k := 0; k < 11; k++ {
					pts = append(pts, []float64{float64(i) / 10, float64(j) / 10, float64(k) / 10})
				}
			}
		}
	case reference.Tetrahedron:
		for i := 0; i < 11; i++ {
			for j := 0; j < 11-i; j++ {
				for k := 0; k < 11-i-j; k++ {
					pts = append(pts, []float64{float64(i) / 10, float64(j) / 10, float64(k) / 10})
				}
			}
		}
	case reference.Prism:
		for i := 0; i < 11; i++ {
			for j := 0; j < 11-i; j++ {
				for k := 0; k < 11; k++ {
					pts = append(pts, []float64{float64(i) / 10, float64(j) / 10, float64(k) / 10})
				}
			}
		}
	case reference.Pyramid:
		for i := 0; i < 11; i++ {
			for j := 0; j < 11; j++ {
				for k := 0; k < 11-max(i, j); k++ {
					pts = append(pts, []float64{float64(i) / 10, float64(j) / 10, float64(k) / 10})
				}
			}
		}
	default:
		err = fmt.Errorf("%w: %q has no verification lattice", reference.ErrUnsupportedCellType, cell)
	}
	return
}

// EntityPoints returns, for every dimension below the cell's and every
// sub-entity of that dimension, the sub-entity's own lattice mapped into the
// cell.
func EntityPoints(cell string) (epts [][][][]float64, err error) {
	var (
		c *reference.Cell
	)
	if c, err = reference.New(cell); err != nil {
		return
	}
	epts = make([][][][]float64, c.TDim)
	for dim := 0; dim < c.TDim; dim++ {
		epts[dim] = make([][][]float64, c.SubEntityCount(dim))
		for i := range epts[dim] {
			se := c.SubEntity(dim, i)
			var local [][]float64
			if local, err = Points(se.Type.String()); err != nil {
				return
			}
			mapped := make([][]float64, len(local))
			for n, p := range local {
				mapped[n] = se.Map(p)
			}
			epts[dim][i] = mapped
		}
	}
	return
}
