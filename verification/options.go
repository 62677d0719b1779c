package verification

import "fmt"

// ContinuityMode selects how traces on sub-entities are compared.
type ContinuityMode uint8

const (
	// ContinuityProjection compares the traces at quadrature points, with
	// rows weighted by √w, by mutual orthogonal projection.
	ContinuityProjection ContinuityMode = iota
	// ContinuityPoints compares the traces on each sub-entity's lattice.
	ContinuityPoints
)

var ContinuityModeNameMap = map[string]ContinuityMode{
	"projection": ContinuityProjection,
	"points":     ContinuityPoints,
}

func (m ContinuityMode) String() string {
	switch m {
	case ContinuityProjection:
		return "projection"
	case ContinuityPoints:
		return "points"
	}
	return "unknown"
}

func ParseContinuityMode(label string) (m ContinuityMode, err error) {
	var ok bool
	if m, ok = ContinuityModeNameMap[label]; !ok {
		err = fmt.Errorf("unknown continuity mode %q, want points or projection", label)
	}
	return
}

type Options struct {
	Continuity ContinuityMode
	// Degree is the Lagrange superdegree of the element. Projection needs it
	// to size its quadrature; when it is unknown the lattice is used.
	Degree int
	// RankTolerance is an absolute floor on the singular value cutoff.
	RankTolerance float64
	// ProjectionTolerance is relative to the norm of the compared traces.
	ProjectionTolerance float64
	// AllCloseRTol and AllCloseATol are the numpy.allclose defaults.
	AllCloseRTol, AllCloseATol float64
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Continuity:          ContinuityProjection,
		ProjectionTolerance: 1e-8,
		AllCloseRTol:        1e-5,
		AllCloseATol:        1e-8,
	}
}

func WithContinuity(m ContinuityMode) Option { return func(o *Options) { o.Continuity = m } }

func WithDegree(degree int) Option { return func(o *Options) { o.Degree = degree } }

func WithRankTolerance(tol float64) Option { return func(o *Options) { o.RankTolerance = tol } }

func WithProjectionTolerance(rtol float64) Option {
	return func(o *Options) { o.ProjectionTolerance = rtol }
}
