package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SingularValues returns all singular values in descending order.
func (m Matrix) SingularValues() (values []float64) {
	if m.IsEmpty() {
		return
	}
	var svd mat.SVD
	if !svd.Factorize(m.M, mat.SVDNone) {
		return
	}
	values = svd.Values(nil)
	return
}

// RankTolerance is the threshold numpy.linalg.matrix_rank uses by default,
// S.max() * max(M, N) * eps, raised to floor when floor is larger.
func RankTolerance(values []float64, nr, nc int, floor float64) (tol float64) {
	if len(values) != 0 {
		tol = values[0] * float64(max(nr, nc)) * eps
	}
	if floor > tol {
		tol = floor
	}
	return
}

const eps = 2.220446049250313e-16

// NumericalRank counts singular values above tol. A negative tol selects
// RankTolerance with no floor.
func (m Matrix) NumericalRank(tol float64) (rank int) {
	var (
		values = m.SingularValues()
		nr, nc = m.Dims()
	)
	if tol < 0 {
		tol = RankTolerance(values, nr, nc, 0)
	}
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return
}

// OrthonormalColumnBasis returns Q whose columns are an orthonormal basis of the
// numerical column space of m, together with that rank.
func (m Matrix) OrthonormalColumnBasis(tol float64) (Q Matrix, rank int) {
	var (
		nr, nc = m.Dims()
		svd    mat.SVD
		u      mat.Dense
	)
	if m.IsEmpty() {
		Q = NewMatrix(nr, 0)
		return
	}
	if !svd.Factorize(m.M, mat.SVDThin) {
		Q = NewMatrix(nr, 0)
		return
	}
	values := svd.Values(nil)
	if tol < 0 {
		tol = RankTolerance(values, nr, nc, 0)
	}
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	svd.UTo(&u)
	Q = NewMatrix(nr, rank)
	dataQ := Q.Data()
	for i := 0; i < nr; i++ {
		for j := 0; j < rank; j++ {
			dataQ[i*rank+j] = u.At(i, j)
		}
	}
	return
}

// ProjectionResidual is the Frobenius norm of (I - QQ^T)A for orthonormal Q.
func ProjectionResidual(Q, A Matrix) float64 {
	if A.IsEmpty() {
		return 0
	}
	R := A.Copy()
	_, rank := Q.Dims()
	if rank != 0 {
		R.Subtract(Q.Mul(Q.Transpose().Mul(A)))
	}
	return R.FrobeniusNorm()
}

// ConditionNumber is σ_max/σ_min, +Inf when the matrix is numerically singular.
func (m Matrix) ConditionNumber() float64 {
	values := m.SingularValues()
	if len(values) == 0 || values[len(values)-1] < 1e-16 {
		return math.Inf(1)
	}
	return values[0] / values[len(values)-1]
}
