package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major dense matrix. Unlike mat.Dense it may have zero rows or
// columns, which happens routinely when a DOF selection is empty.
type Matrix struct {
	M      *mat.Dense
	nr, nc int
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	if nr < 0 || nc < 0 {
		panic(fmt.Errorf("negative matrix dimensions: %d x %d", nr, nc))
	}
	R = Matrix{nr: nr, nc: nc}
	if len(dataO) != 0 && len(dataO[0]) != nr*nc {
		err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v",
			nr, nc, len(dataO[0]))
		panic(err)
	}
	if nr == 0 || nc == 0 {
		return
	}
	if len(dataO) != 0 {
		R.M = mat.NewDense(nr, nc, dataO[0])
	} else {
		R.M = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)    { return m.nr, m.nc }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix       { return m.M.T() }

func (m Matrix) IsEmpty() bool { return m.nr == 0 || m.nc == 0 }

// Data returns the backing row-major storage, nil for an empty matrix.
func (m Matrix) Data() []float64 {
	if m.IsEmpty() {
		return nil
	}
	return m.M.RawMatrix().Data
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		data  = m.Data()
		dataR = make([]float64, len(data))
	)
	copy(dataR, data)
	R = NewMatrix(m.nr, m.nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
	)
	R = NewMatrix(nc, nr)
	dataR := R.Data()
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			dataR[j*nr+i] = data[i*nc+j]
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, ncM = m.Dims()
		nrA, ncA = A.Dims()
	)
	if ncM != nrA {
		panic(fmt.Errorf("dimension mismatch in Mul: %dx%d times %dx%d", nrM, ncM, nrA, ncA))
	}
	R = NewMatrix(nrM, ncA)
	if R.IsEmpty() || ncM == 0 {
		return
	}
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) Subtract(A Matrix) Matrix { // Changes receiver
	var (
		data  = m.Data()
		dataA = A.Data()
	)
	for i := range data {
		data[i] -= dataA[i]
	}
	return m
}

// ScaleRows multiplies row i by s[i].
func (m Matrix) ScaleRows(s []float64) Matrix { // Changes receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
	)
	if len(s) != nr {
		panic(fmt.Errorf("ScaleRows: %d scale factors for %d rows", len(s), nr))
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			data[i*nc+j] *= s[i]
		}
	}
	return m
}

// StackRows returns [A; B].
func StackRows(A, B Matrix) (R Matrix) {
	var (
		nrA, ncA = A.Dims()
		nrB, ncB = B.Dims()
	)
	if ncA != ncB {
		panic(fmt.Errorf("StackRows: column mismatch %d != %d", ncA, ncB))
	}
	R = NewMatrix(nrA+nrB, ncA)
	dataR := R.Data()
	copy(dataR, A.Data())
	copy(dataR[nrA*ncA:], B.Data())
	return
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("unable to invert a %d x %d matrix", nr, nc)
		return
	}
	R = m.Copy()
	if R.IsEmpty() {
		return
	}
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.M.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.M.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
	}
	return
}

func (m Matrix) FrobeniusNorm() float64 {
	var sum float64
	for _, val := range m.Data() {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// AllClose mirrors numpy.allclose: |a-b| <= atol + rtol*|b| elementwise.
func AllClose(A, B Matrix, rtol, atol float64) bool {
	var (
		nrA, ncA = A.Dims()
		nrB, ncB = B.Dims()
	)
	if nrA != nrB || ncA != ncB {
		return false
	}
	dataB := B.Data()
	for i, a := range A.Data() {
		if math.Abs(a-dataB[i]) > atol+rtol*math.Abs(dataB[i]) {
			return false
		}
	}
	return true
}

func (m Matrix) Determinant() float64 {
	if m.IsEmpty() {
		return 1
	}
	return mat.Det(m.M)
}
