package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary-of-keys sparse matrix used while assembling, converted to
// CSR once for row traversal.
type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{sparse.NewDOK(nr, nc)}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m DOK) NNZ() int { return m.M.NNZ() }

// CSR is a compressed sparse row matrix.
type CSR struct {
	M *sparse.CSR
}

func (m DOK) ToCSR() CSR { return CSR{m.M.ToCSR()} }

func (m CSR) Dims() (r, c int) { return m.M.Dims() }

// RowNonZeros returns the column indices of the non-zero entries of row i.
func (m CSR) RowNonZeros(i int) (cols Index) {
	m.M.DoRowNonZero(i, func(_, j int, v float64) {
		if v != 0 {
			cols = append(cols, j)
		}
	})
	return cols.Sorted()
}
