package ciarlet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/implementations/ciarlet"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/verification"
)

func info(t *testing.T, family, cell string, degree int, variant string) verification.Info {
	el, err := ciarlet.Create(family, cell, degree, variant)
	require.NoError(t, err)
	return verification.Info{EntityDOFs: el.EntityDOFs, Tabulate: el.Tabulate}
}

func TestVerifyElements(t *testing.T) {
	modes := []verification.ContinuityMode{verification.ContinuityProjection, verification.ContinuityPoints}
	for _, mode := range modes {
		verify := func(cell string, i0, i1 verification.Info, degree int) verification.Result {
			res, err := verification.Verify(cell, i0, i1,
				verification.WithContinuity(mode), verification.WithDegree(degree))
			require.NoError(t, err)
			return res
		}
		{ // Same element
			p1 := info(t, "lagrange", "triangle", 1, "")
			assert.True(t, verify("triangle", p1, p1, 1).OK, mode.String())
			rt := info(t, "raviart-thomas", "triangle", 2, "")
			assert.True(t, verify("triangle", rt, rt, 2).OK, mode.String())
		}
		{ // Different node placements define the same element
			res := verify("interval", info(t, "lagrange", "interval", 3, "equispaced"),
				info(t, "lagrange", "interval", 3, "gll"), 3)
			assert.True(t, res.OK, "%s: %s", mode, res.Reason)
			res = verify("quadrilateral", info(t, "lagrange", "quadrilateral", 3, "equispaced"),
				info(t, "lagrange", "quadrilateral", 3, "gll"), 3)
			assert.True(t, res.OK, "%s: %s", mode, res.Reason)
		}
		{ // Lagrange and Hermite share a span but not DOF placement
			res := verify("triangle", info(t, "lagrange", "triangle", 3, ""),
				info(t, "hermite", "triangle", 3, ""), 3)
			assert.False(t, res.OK)
			assert.Equal(t, verification.CheckEntityCount, res.Check)
			assert.Equal(t, 0, res.Dim)
			assert.Equal(t, 0, res.Entity)
		}
		{ // BDM and second kind Nédélec differ only in which trace is continuous
			res := verify("triangle", info(t, "bdm", "triangle", 1, ""),
				info(t, "nedelec2", "triangle", 1, ""), 1)
			assert.False(t, res.OK)
			assert.Equal(t, verification.CheckContinuity, res.Check)
			assert.Equal(t, "continuity mismatch at (1, 0)", res.Reason)
		}
		{ // Raviart-Thomas and first kind Nédélec have different spans
			res := verify("triangle", info(t, "raviart-thomas", "triangle", 1, ""),
				info(t, "nedelec1", "triangle", 1, ""), 1)
			assert.False(t, res.OK)
			assert.Equal(t, verification.CheckSpan, res.Check)
			assert.Equal(t, "polysets do not span the same space", res.Reason)
		}
		{ // Continuous and discontinuous Lagrange
			res := verify("triangle", info(t, "lagrange", "triangle", 2, ""),
				info(t, "discontinuous-lagrange", "triangle", 2, ""), 2)
			assert.False(t, res.OK)
			assert.Equal(t, verification.CheckEntityCount, res.Check)
		}
	}
}

func TestLibrary(t *testing.T) {
	var (
		ctx = context.Background()
	)
	cat, err := elements.LoadEmbedded()
	require.NoError(t, err)
	impl, err := implementations.New(ciarlet.ID, implementations.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, impl.Verification())
	assert.Contains(t, implementations.VerificationIDs(), ciarlet.ID)
	{ // Lagrange with a variant parameter
		el, ok := cat.Get("lagrange")
		require.True(t, ok)
		ex, err := implementations.ParseExample("interval,3,gll")
		require.NoError(t, err)
		edofs, tab, err := impl.EntityDOFsAndTabulator(ctx, el, ex)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1, 1}, {2}}, edofs.Counts())
		T, err := tab([][]float64{{0}, {1}})
		require.NoError(t, err)
		assert.InDelta(t, 1, T.At(0, 0, 0), 1e-12)
		assert.InDelta(t, 1, T.At(1, 0, 1), 1e-12)
	}
	{ // Hermite is only listed on the triangle
		el, _ := cat.Get("hermite")
		_, _, err := impl.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "triangle", Degree: 3})
		assert.NoError(t, err)
		_, _, err = impl.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 3})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // Unlisted variants and keyword arguments
		el, _ := cat.Get("lagrange")
		_, _, err := impl.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "legendre"})
		assert.True(t, errors.Is(err, types.ErrVariantNotImplemented))
		ex, err := implementations.ParseExample("interval,1,equispaced {orders=[1,2]}")
		require.NoError(t, err)
		_, _, err = impl.EntityDOFsAndTabulator(ctx, el, ex)
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // Elements the library does not list
		el, _ := cat.Get("regge")
		_, _, err := impl.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "triangle", Degree: 0})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // Cancelled context
		el, _ := cat.Get("lagrange")
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := impl.EntityDOFsAndTabulator(cctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
		assert.ErrorIs(t, err, context.Canceled)
	}
}
