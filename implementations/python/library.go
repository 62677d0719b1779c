package python

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/types"
)

// maxLive bounds the elements each interpreter holds on to. Verification
// only tabulates the element it is currently checking.
const maxLive = 4

// Library drives one Python finite element library through a helper
// interpreter, started on first use.
type Library struct {
	spec    librarySpec
	cfg     implementations.Config
	start   func() (*session, error)
	sess    *session
	handles []int
	live    map[int]bool
}

func newLibrary(spec librarySpec, cfg implementations.Config) *Library {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	l := &Library{spec: spec, cfg: cfg, live: make(map[int]bool)}
	l.start = func() (*session, error) { return startSession(cfg.Python) }
	return l
}

func init() {
	for _, spec := range librarySpecs {
		spec := spec
		implementations.Register(spec.id, func(cfg implementations.Config) (implementations.Implementation, error) {
			return newLibrary(spec, cfg), nil
		})
	}
}

func (l *Library) ID() string         { return l.spec.id }
func (l *Library) Name() string       { return l.spec.name }
func (l *Library) Verification() bool { return true }

func (l *Library) session() (s *session, err error) {
	if l.sess == nil {
		if l.sess, err = l.start(); err != nil {
			return
		}
		l.cfg.Logger.Debug("started helper interpreter", "library", l.spec.id, "python", l.cfg.Python)
	}
	return l.sess, nil
}

func (l *Library) EntityDOFsAndTabulator(ctx context.Context, el *elements.Element,
	ex implementations.Example) (edofs types.EntityDOFs, tab types.Tabulator, err error) {
	var (
		name   string
		params map[string]string
		req    request
		resp   response
		s      *session
	)
	if err = ctx.Err(); err != nil {
		return
	}
	if name, params, err = el.ImplementationString(l.spec.id, ex.Cell, ex.Variant); err != nil {
		return
	}
	if name == "" {
		err = fmt.Errorf("%s on %s in %s: %w", el.Filename, ex.Cell, l.spec.id, types.ErrNotImplemented)
		return
	}
	if l.spec.cells != nil && !l.spec.cells[ex.Cell] {
		err = fmt.Errorf("%s does not support %s: %w", l.spec.name, ex.Cell, types.ErrNotImplemented)
		return
	}
	if req, err = l.spec.prepare(name, params, ex); err != nil {
		err = fmt.Errorf("%s %s in %s: %w", el.Filename, ex, l.spec.id, err)
		return
	}
	req.Op, req.Library, req.Family, req.Cell = "create", l.spec.id, name, ex.Cell
	if s, err = l.session(); err != nil {
		return
	}
	if resp, err = s.call(ctx, req); err != nil {
		err = fmt.Errorf("%s %s in %s: %w", el.Filename, ex, l.spec.id, err)
		return
	}
	edofs = types.EntityDOFs(resp.EntityDOFs)
	if l.spec.reorder != nil {
		edofs = l.spec.reorder(ex.Cell, edofs)
	}
	if err = edofs.Validate(); err != nil {
		err = fmt.Errorf("%s %s in %s: %w", el.Filename, ex, l.spec.id, err)
		return
	}
	l.retain(ctx, resp.Handle)
	tab = implementations.CachedTabulator(l.tabulator(resp.Handle), l.cfg.CacheSize)
	return
}

// retain records a new element and releases the oldest beyond maxLive
func (l *Library) retain(ctx context.Context, h int) {
	l.handles = append(l.handles, h)
	l.live[h] = true
	for len(l.handles) > maxLive {
		old := l.handles[0]
		l.handles = l.handles[1:]
		delete(l.live, old)
		if _, err := l.sess.call(ctx, request{Op: "release", Handle: old}); err != nil {
			l.cfg.Logger.Debug("release failed", "library", l.spec.id, "handle", old, "err", err)
		}
	}
}

func (l *Library) tabulator(h int) types.Tabulator {
	return func(pts [][]float64) (T types.Tabulation, err error) {
		var (
			resp response
		)
		if !l.live[h] {
			err = fmt.Errorf("%s element %d has been released", l.spec.id, h)
			return
		}
		if resp, err = l.sess.call(context.Background(), request{Op: "tabulate", Handle: h, Points: pts}); err != nil {
			return
		}
		sh := resp.Shape
		if len(sh) != 3 || sh[0] != len(pts) || sh[0]*sh[1]*sh[2] != len(resp.Data) {
			err = fmt.Errorf("%s returned a table of shape %v with %d values for %d points",
				l.spec.id, sh, len(resp.Data), len(pts))
			return
		}
		return types.NewTabulation(sh[0], sh[1], sh[2], resp.Data), nil
	}
}

// Close stops the helper interpreter, if one was started.
func (l *Library) Close() (err error) {
	if l.sess != nil {
		err = l.sess.Close()
		l.sess = nil
	}
	return
}
