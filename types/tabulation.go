package types

import (
	"fmt"

	"github.com/notargets/defelement/utils"
)

// Tabulation holds basis function values indexed (point, component, dof).
// Storage is row-major in that order.
type Tabulation struct {
	NumPoints, NumComponents, NumDOFs int
	Data                              []float64
}

// Tabulator evaluates every basis function of an element at a set of points.
type Tabulator func(pts [][]float64) (Tabulation, error)

func NewTabulation(np, nc, nd int, dataO ...[]float64) (t Tabulation) {
	t = Tabulation{NumPoints: np, NumComponents: nc, NumDOFs: nd}
	if len(dataO) != 0 {
		if len(dataO[0]) != np*nc*nd {
			panic(fmt.Errorf("mismatch in allocation: NewTabulation %dx%dx%d, len(data) = %d",
				np, nc, nd, len(dataO[0])))
		}
		t.Data = dataO[0]
		return
	}
	t.Data = make([]float64, np*nc*nd)
	return
}

func (t Tabulation) index(p, c, d int) int {
	return (p*t.NumComponents+c)*t.NumDOFs + d
}

func (t Tabulation) At(p, c, d int) float64 { return t.Data[t.index(p, c, d)] }

func (t Tabulation) Set(p, c, d int, val float64) { t.Data[t.index(p, c, d)] = val }

func (t Tabulation) Shape() [3]int { return [3]int{t.NumPoints, t.NumComponents, t.NumDOFs} }

// SelectDOFs returns the table restricted to the listed dofs, in that order.
func (t Tabulation) SelectDOFs(dofs []int) (R Tabulation) {
	R = NewTabulation(t.NumPoints, t.NumComponents, len(dofs))
	for p := 0; p < t.NumPoints; p++ {
		for c := 0; c < t.NumComponents; c++ {
			for j, d := range dofs {
				R.Set(p, c, j, t.At(p, c, d))
			}
		}
	}
	return
}

// Matrix flattens the table DOF-major: row d holds the values of basis
// function d at every (point, component) pair.
func (t Tabulation) Matrix() (M utils.Matrix) {
	var (
		ncol = t.NumPoints * t.NumComponents
	)
	M = utils.NewMatrix(t.NumDOFs, ncol)
	data := M.Data()
	for pc := 0; pc < ncol; pc++ {
		for d := 0; d < t.NumDOFs; d++ {
			data[d*ncol+pc] = t.Data[pc*t.NumDOFs+d]
		}
	}
	return
}

// WeightedMatrix is the transpose of Matrix with each point's rows scaled by
// w[p]; columns are dofs.
func (t Tabulation) WeightedMatrix(w []float64) (M utils.Matrix) {
	var (
		nrow = t.NumPoints * t.NumComponents
	)
	M = utils.NewMatrix(nrow, t.NumDOFs, append([]float64(nil), t.Data...))
	scale := make([]float64, nrow)
	for p := 0; p < t.NumPoints; p++ {
		for c := 0; c < t.NumComponents; c++ {
			scale[p*t.NumComponents+c] = w[p]
		}
	}
	M.ScaleRows(scale)
	return
}

func (t Tabulation) MaxAbs() (max float64) {
	for _, val := range t.Data {
		if val > max {
			max = val
		} else if -val > max {
			max = -val
		}
	}
	return
}
