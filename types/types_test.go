package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabulation(t *testing.T) {
	T := NewTabulation(2, 2, 3)
	for p := 0; p < 2; p++ {
		for c := 0; c < 2; c++ {
			for d := 0; d < 3; d++ {
				T.Set(p, c, d, float64(100*p+10*c+d))
			}
		}
	}
	assert.Equal(t, [3]int{2, 2, 3}, T.Shape())
	assert.Equal(t, 112., T.At(1, 1, 2))
	{ // DOF-major flattening
		M := T.Matrix()
		nr, nc := M.Dims()
		assert.Equal(t, 3, nr)
		assert.Equal(t, 4, nc)
		assert.Equal(t, []float64{0, 10, 100, 110}, M.Data()[0:4])
		assert.Equal(t, []float64{2, 12, 102, 112}, M.Data()[8:12])
	}
	{ // Selection keeps the requested order
		S := T.SelectDOFs([]int{2, 0})
		assert.Equal(t, [3]int{2, 2, 2}, S.Shape())
		assert.Equal(t, 12., S.At(0, 1, 0))
		assert.Equal(t, 10., S.At(0, 1, 1))
		E := T.SelectDOFs(nil)
		assert.Equal(t, 0, E.NumDOFs)
		assert.True(t, E.Matrix().IsEmpty())
	}
	{ // Weighted rows are (point, component) pairs
		W := T.WeightedMatrix([]float64{1, 2})
		nr, nc := W.Dims()
		assert.Equal(t, 4, nr)
		assert.Equal(t, 3, nc)
		assert.Equal(t, 224., W.At(3, 2))
		assert.Equal(t, 1., T.At(0, 0, 1))
	}
	assert.Equal(t, 112., T.MaxAbs())
	assert.Panics(t, func() { NewTabulation(2, 1, 2, []float64{1, 2, 3}) })
}

func TestEntityDOFs(t *testing.T) {
	e := EntityDOFs{{{0}, {1}, {2}}, {{3}, {4}, {5}}, {{}}}
	assert.Equal(t, 6, e.NumDOFs())
	assert.Equal(t, [][]int{{1, 1, 1}, {1, 1, 1}, {0}}, e.Counts())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, e.All())
	require.NoError(t, e.Validate())

	c := e.Clone()
	c[0][0][0] = 9
	assert.Equal(t, 0, e[0][0][0])
	assert.Error(t, c.Validate())

	assert.Error(t, EntityDOFs{{{0}, {0}}, {{}}}.Validate())

	p := e.Permuted([]int{5, 4, 3, 2, 1, 0})
	assert.Equal(t, []int{5}, p[0][0])
	assert.NoError(t, p.Validate())
}

func TestStatus(t *testing.T) {
	for label, s := range StatusNameMap {
		assert.Equal(t, label, s.String())
		parsed, err := NewStatus(label)
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := NewStatus("skipped")
	assert.Error(t, err)
	assert.True(t, errors.Is(ErrVariantNotImplemented, ErrNotImplemented))
	assert.False(t, errors.Is(ErrLibraryMissing, ErrNotImplemented))
}
