package verification

import (
	"log/slog"

	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/utils"
)

type SpanOutcome uint8

const (
	SpanEqual SpanOutcome = iota
	ShapeMismatch
	RankDeficient
	SpanDiffers
)

func (o SpanOutcome) String() string {
	switch o {
	case SpanEqual:
		return "equal"
	case ShapeMismatch:
		return "shape mismatch"
	case RankDeficient:
		return "rank deficient"
	case SpanDiffers:
		return "spans differ"
	}
	return "unknown"
}

// SpanReport details a comparison of the spaces spanned by two tabulations.
// The three ranks are counted against TolStacked, a cutoff scaled by the
// largest singular value of the stacked table, so a table of rounding noise
// has rank zero next to a nonzero one.
type SpanReport struct {
	Outcome                   SpanOutcome
	NumDOFs                   int
	Rank0, Rank1, RankStacked int
	TolStacked                float64
	SingularValuesStacked     []float64
}

// CompareSpans decides whether two tables span the same space of functions
// on the points they were tabulated at. With complete set, the first table
// must also be linearly independent at its own scale. floor raises the rank
// tolerance to at least that value.
func CompareSpans(t0, t1 types.Tabulation, complete bool, floor float64) (sr SpanReport) {
	if t0.Shape() != t1.Shape() {
		sr.Outcome = ShapeMismatch
		return
	}
	var (
		M0     = t0.Matrix()
		M1     = t1.Matrix()
		S      = utils.StackRows(M0, M1)
		nr, nc = M0.Dims()
	)
	sr.NumDOFs = t0.NumDOFs
	if complete {
		sr.Rank0 = M0.NumericalRank(utils.RankTolerance(M0.SingularValues(), nr, nc, floor))
		if sr.Rank0 != sr.NumDOFs {
			sr.Outcome = RankDeficient
			return
		}
	}
	sr.SingularValuesStacked = S.SingularValues()
	nr, nc = S.Dims()
	sr.TolStacked = utils.RankTolerance(sr.SingularValuesStacked, nr, nc, floor)
	sr.Rank0 = M0.NumericalRank(sr.TolStacked)
	sr.Rank1 = M1.NumericalRank(sr.TolStacked)
	for _, s := range sr.SingularValuesStacked {
		if s > sr.TolStacked {
			sr.RankStacked++
		}
	}
	if sr.RankStacked != sr.Rank0 || sr.RankStacked != sr.Rank1 {
		sr.Outcome = SpanDiffers
	}
	return
}

// SameSpan reports whether t0 and t1 span the same space, using the default
// rank tolerance.
func SameSpan(t0, t1 types.Tabulation, complete bool) bool {
	sr := CompareSpans(t0, t1, complete, 0)
	if sr.Outcome != SpanEqual {
		slog.Debug("spans differ",
			"outcome", sr.Outcome.String(),
			"rank0", sr.Rank0, "rank1", sr.Rank1, "rankStacked", sr.RankStacked,
			"singularValues", sr.SingularValuesStacked)
	}
	return sr.Outcome == SpanEqual
}

// projectionMatch compares the column spaces of two point-weighted tables by
// projecting each onto the other's orthonormal basis. Values below
// rtol·max(1, ‖A‖) are treated as zero.
func projectionMatch(A0, A1 utils.Matrix, rtol float64) (ok bool, r01, r10 float64) {
	var (
		scale = max(1, A0.FrobeniusNorm(), A1.FrobeniusNorm())
		atol  = rtol * scale
	)
	Q0, _ := A0.OrthonormalColumnBasis(atol)
	Q1, _ := A1.OrthonormalColumnBasis(atol)
	r01 = utils.ProjectionResidual(Q0, A1)
	r10 = utils.ProjectionResidual(Q1, A0)
	ok = r01 <= atol && r10 <= atol
	return
}
