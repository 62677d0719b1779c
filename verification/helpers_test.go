package verification

import (
	"errors"

	"github.com/notargets/defelement/types"
)

type scalarFunc func(x []float64) float64

// tabulatorOf builds a scalar tabulator from explicit basis functions
func tabulatorOf(basis ...scalarFunc) types.Tabulator {
	return func(pts [][]float64) (tab types.Tabulation, err error) {
		tab = types.NewTabulation(len(pts), 1, len(basis))
		for p, x := range pts {
			for d, f := range basis {
				tab.Set(p, 0, d, f(x))
			}
		}
		return
	}
}

// combine returns the basis ψ_i = Σ_j B[i][j] φ_j
func combine(B [][]float64, basis ...scalarFunc) (out []scalarFunc) {
	out = make([]scalarFunc, len(B))
	for i := range B {
		row := B[i]
		out[i] = func(x []float64) (v float64) {
			for j, f := range basis {
				v += row[j] * f(x)
			}
			return
		}
	}
	return
}

var (
	p1Triangle      = []scalarFunc{
		func(x []float64) float64 { return 1 - x[0] - x[1] },
		func(x []float64) float64 { return x[0] },
		func(x []float64) float64 { return x[1] },
	}
	p1TriangleDOFs  = types.EntityDOFs{{{0}, {1}, {2}}, {{}, {}, {}}, {{}}}
	dp1TriangleDOFs = types.EntityDOFs{{{}, {}, {}}, {{}, {}, {}}, {{0, 1, 2}}}
	p1Interval      = []scalarFunc{
		func(x []float64) float64 { return 1 - x[0] },
		func(x []float64) float64 { return x[0] },
	}
	p1IntervalDOFs  = types.EntityDOFs{{{0}, {1}}, {{}}}
	errTabulate     = errors.New("tabulation failed")
)

func failingTabulator(pts [][]float64) (types.Tabulation, error) {
	return types.Tabulation{}, errTabulate
}
