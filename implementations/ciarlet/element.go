package ciarlet

import (
	"fmt"

	"github.com/notargets/defelement/reference"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/utils"
)

// Element is a finite element defined by Ciarlet's triple: a cell, a
// polynomial span and one functional per degree of freedom. The basis is
// dual to the functionals.
type Element struct {
	Family     string
	Cell       *reference.Cell
	Degree     int
	ValueSize  int
	Span       []VPoly
	DOFs       []Functional
	EntityDOFs types.EntityDOFs
	coeffs     utils.Matrix // span coefficients of each basis function, (len(Span), len(DOFs))
}

// builder accumulates functionals entity by entity
type builder struct {
	cell  *reference.Cell
	dofs  []Functional
	edofs types.EntityDOFs
}

func newBuilder(c *reference.Cell) (b *builder) {
	b = &builder{cell: c, edofs: make(types.EntityDOFs, c.TDim+1)}
	for dim := 0; dim <= c.TDim; dim++ {
		b.edofs[dim] = make([][]int, c.SubEntityCount(dim))
		for i := range b.edofs[dim] {
			b.edofs[dim][i] = []int{}
		}
	}
	return
}

func (b *builder) add(dim, entity int, fs ...Functional) {
	for _, f := range fs {
		b.edofs[dim][entity] = append(b.edofs[dim][entity], len(b.dofs))
		b.dofs = append(b.dofs, f)
	}
}

func (b *builder) build(family string, degree, valueSize int, span []VPoly) (el *Element, err error) {
	var (
		n = len(span)
	)
	if len(b.dofs) != n {
		err = fmt.Errorf("%s degree %d on %s: %d functionals for a span of dimension %d",
			family, degree, b.cell.Name, len(b.dofs), n)
		return
	}
	el = &Element{
		Family:     family,
		Cell:       b.cell,
		Degree:     degree,
		ValueSize:  valueSize,
		Span:       span,
		DOFs:       b.dofs,
		EntityDOFs: b.edofs,
	}
	// D[i][j] = l_i(p_j); the basis φ_k = Σ_j C[j][k] p_j satisfies D·C = I
	D := utils.NewMatrix(n, n)
	for i, l := range b.dofs {
		for j, p := range span {
			D.Set(i, j, l.Apply(p))
		}
	}
	if el.coeffs, err = D.Inverse(); err != nil {
		err = fmt.Errorf("%s degree %d on %s: functionals are not unisolvent (condition number %.3g): %w",
			family, degree, b.cell.Name, D.ConditionNumber(), err)
	}
	return
}

func (el *Element) NumDOFs() int { return len(el.DOFs) }

// Tabulate evaluates every basis function at every point.
func (el *Element) Tabulate(pts [][]float64) (tab types.Tabulation, err error) {
	var (
		ns = len(el.Span)
		nd = el.NumDOFs()
		vc = el.ValueSize
	)
	for _, p := range pts {
		if len(p) != el.Cell.TDim {
			err = fmt.Errorf("point %v does not belong to a %s", p, el.Cell.Name)
			return
		}
	}
	V := utils.NewMatrix(len(pts)*vc, ns)
	for i, x := range pts {
		for j, p := range el.Span {
			vals := p.Eval(x)
			for c := 0; c < vc; c++ {
				V.Set(i*vc+c, j, vals[c])
			}
		}
	}
	tab = types.NewTabulation(len(pts), vc, nd, V.Mul(el.coeffs).Data())
	return
}
