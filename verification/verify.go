package verification

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/notargets/defelement/points"
	"github.com/notargets/defelement/reference"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/utils"
)

// Info is what one implementation contributes to a verification: its DOF to
// entity association and a way to tabulate its basis.
type Info struct {
	EntityDOFs types.EntityDOFs
	Tabulate   types.Tabulator
}

type CheckKind uint8

const (
	CheckNone CheckKind = iota
	CheckEntityCount
	CheckSpan
	CheckContinuity
)

func (k CheckKind) String() string {
	switch k {
	case CheckNone:
		return "none"
	case CheckEntityCount:
		return "entity count"
	case CheckSpan:
		return "span"
	case CheckContinuity:
		return "continuity"
	}
	return "unknown"
}

// Result is the outcome of a verification. Dim and Entity locate the failure
// for entity count and continuity failures, and are -1 otherwise.
type Result struct {
	OK     bool
	Reason string
	Check  CheckKind
	Dim    int
	Entity int
}

func pass() Result { return Result{OK: true, Dim: -1, Entity: -1} }

func fail(check CheckKind, dim, entity int, format string, args ...interface{}) Result {
	return Result{Reason: fmt.Sprintf(format, args...), Check: check, Dim: dim, Entity: entity}
}

// Verify decides whether info1 defines the same element as info0 on the
// named reference cell, up to a change of basis that preserves the DOF to
// entity association. Failures of the comparison are reported in the
// Result; errors from tabulation or malformed input are returned.
func Verify(cell string, info0, info1 Info, opts ...Option) (res Result, err error) {
	var (
		o              = DefaultOptions()
		c              *reference.Cell
		pts            [][]float64
		tab0, tab1     types.Tabulation
		cdofs0, cdofs1 types.EntityDOFs
	)
	for _, opt := range opts {
		opt(&o)
	}
	if c, err = reference.New(cell); err != nil {
		return
	}

	if res = compareEntityCounts(info0.EntityDOFs, info1.EntityDOFs); !res.OK {
		return
	}
	if cdofs0, err = ClosureDOFs(info0.EntityDOFs, cell); err != nil {
		return
	}
	if cdofs1, err = ClosureDOFs(info1.EntityDOFs, cell); err != nil {
		return
	}

	if pts, err = points.Points(cell); err != nil {
		return
	}
	if tab0, err = info0.Tabulate(pts); err != nil {
		return
	}
	if tab1, err = info1.Tabulate(pts); err != nil {
		return
	}
	sr := CompareSpans(tab0, tab1, true, o.RankTolerance)
	switch sr.Outcome {
	case ShapeMismatch:
		res = fail(CheckSpan, -1, -1, "non-matching table shapes %v and %v", tab0.Shape(), tab1.Shape())
		return
	case RankDeficient:
		res = fail(CheckSpan, -1, -1, "reference table is rank deficient (rank %d, %d dofs)",
			sr.Rank0, sr.NumDOFs)
		return
	case SpanDiffers:
		slog.Debug("global span check failed", "cell", cell,
			"rank0", sr.Rank0, "rank1", sr.Rank1, "rankStacked", sr.RankStacked,
			"maxAbs0", tab0.MaxAbs(), "maxAbs1", tab1.MaxAbs(), "tol", sr.TolStacked,
			"singularValues", sr.SingularValuesStacked)
		res = fail(CheckSpan, -1, -1, "polysets do not span the same space")
		return
	}

	if o.Continuity == ContinuityProjection && o.Degree > 0 {
		res, err = checkContinuityProjection(c, info0, info1, cdofs0, cdofs1, o)
	} else {
		res, err = checkContinuityPoints(c, info0, info1, cdofs0, cdofs1, o)
	}
	return
}

func compareEntityCounts(e0, e1 types.EntityDOFs) Result {
	if len(e0) != len(e1) {
		return fail(CheckEntityCount, -1, -1, "wrong number of entities: %d and %d dimensions", len(e0), len(e1))
	}
	for d := range e0 {
		if len(e0[d]) != len(e1[d]) {
			return fail(CheckEntityCount, d, -1, "wrong number of entities of dimension %d: %d and %d",
				d, len(e0[d]), len(e1[d]))
		}
		for e := range e0[d] {
			if len(e0[d][e]) != len(e1[d][e]) {
				return fail(CheckEntityCount, d, e, "wrong number of DOFs associated with entity (%d, %d): %d and %d",
					d, e, len(e0[d][e]), len(e1[d][e]))
			}
		}
	}
	return pass()
}

// entityVisit calls fn for every sub-entity below the cell dimension whose
// closure owns a DOF, facets first, stopping at the first failure.
func entityVisit(c *reference.Cell, cdofs0 types.EntityDOFs,
	fn func(dim, e int) (Result, error)) (res Result, err error) {
	for dim := c.TDim - 1; dim >= 0; dim-- {
		for e := 0; e < c.SubEntityCount(dim); e++ {
			if len(cdofs0[dim][e]) == 0 {
				continue
			}
			if res, err = fn(dim, e); err != nil || !res.OK {
				return
			}
		}
	}
	return pass(), nil
}

// notInClosure lists, in ascending order, the DOFs outside an entity's closure
func notInClosure(closure []int, ndofs int) []int {
	return utils.Index(closure).Complement(ndofs)
}

func checkContinuityPoints(c *reference.Cell, info0, info1 Info, cdofs0, cdofs1 types.EntityDOFs,
	o Options) (res Result, err error) {
	var (
		epts   [][][][]float64
		ndofs0 = info0.EntityDOFs.NumDOFs()
		ndofs1 = info1.EntityDOFs.NumDOFs()
	)
	if epts, err = points.EntityPoints(c.Name); err != nil {
		return
	}
	return entityVisit(c, cdofs0, func(dim, e int) (r Result, err error) {
		var (
			t0, t1 types.Tabulation
		)
		if t0, err = info0.Tabulate(epts[dim][e]); err != nil {
			return
		}
		if t1, err = info1.Tabulate(epts[dim][e]); err != nil {
			return
		}
		t0 = t0.SelectDOFs(notInClosure(cdofs0[dim][e], ndofs0))
		t1 = t1.SelectDOFs(notInClosure(cdofs1[dim][e], ndofs1))
		if utils.AllClose(t0.Matrix(), t1.Matrix(), o.AllCloseRTol, o.AllCloseATol) {
			return pass(), nil
		}
		sr := CompareSpans(t0, t1, false, o.RankTolerance)
		if sr.Outcome == SpanEqual {
			return pass(), nil
		}
		slog.Debug("traces differ", "cell", c.Name, "dim", dim, "entity", e,
			"rank0", sr.Rank0, "rank1", sr.Rank1, "rankStacked", sr.RankStacked,
			"maxAbs0", t0.MaxAbs(), "maxAbs1", t1.MaxAbs(), "tol", sr.TolStacked)
		return fail(CheckContinuity, dim, e, "continuity mismatch at (%d, %d)", dim, e), nil
	})
}

func checkContinuityProjection(c *reference.Cell, info0, info1 Info, cdofs0, cdofs1 types.EntityDOFs,
	o Options) (res Result, err error) {
	var (
		rules  [][]points.Rule
		ndofs0 = info0.EntityDOFs.NumDOFs()
		ndofs1 = info1.EntityDOFs.NumDOFs()
	)
	if rules, err = points.EntityQuadratureRules(c.Name, 2*o.Degree); err != nil {
		return
	}
	return entityVisit(c, cdofs0, func(dim, e int) (r Result, err error) {
		var (
			rule   = rules[dim][e]
			t0, t1 types.Tabulation
			sqrtW  = make([]float64, rule.Len())
		)
		for i, w := range rule.Weights {
			sqrtW[i] = math.Sqrt(w)
		}
		if t0, err = info0.Tabulate(rule.Points); err != nil {
			return
		}
		if t1, err = info1.Tabulate(rule.Points); err != nil {
			return
		}
		t0 = t0.SelectDOFs(notInClosure(cdofs0[dim][e], ndofs0))
		t1 = t1.SelectDOFs(notInClosure(cdofs1[dim][e], ndofs1))
		if t0.Shape() != t1.Shape() {
			return fail(CheckContinuity, dim, e, "continuity mismatch at (%d, %d)", dim, e), nil
		}
		ok, r01, r10 := projectionMatch(t0.WeightedMatrix(sqrtW), t1.WeightedMatrix(sqrtW), o.ProjectionTolerance)
		if !ok {
			slog.Debug("trace spaces differ", "cell", c.Name, "dim", dim, "entity", e,
				"residual01", r01, "residual10", r10)
			return fail(CheckContinuity, dim, e, "continuity mismatch at (%d, %d)", dim, e), nil
		}
		return pass(), nil
	})
}
