package ciarlet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/types"
)

const ID = "ciarlet"

// Library exposes Create to the verification campaign. It runs in process
// and needs no external interpreter.
type Library struct {
	cfg implementations.Config
}

func init() {
	implementations.Register(ID, func(cfg implementations.Config) (implementations.Implementation, error) {
		if cfg.Logger == nil {
			cfg.Logger = slog.Default()
		}
		return &Library{cfg: cfg}, nil
	})
}

func (l *Library) ID() string         { return ID }
func (l *Library) Name() string       { return "ciarlet" }
func (l *Library) Verification() bool { return true }

func (l *Library) EntityDOFsAndTabulator(ctx context.Context, el *elements.Element,
	ex implementations.Example) (edofs types.EntityDOFs, tab types.Tabulator, err error) {
	var (
		name   string
		params map[string]string
		e      *Element
	)
	if err = ctx.Err(); err != nil {
		return
	}
	if len(ex.Kwargs) != 0 {
		err = fmt.Errorf("%s: keyword arguments %s: %w", el.Filename, ex, types.ErrNotImplemented)
		return
	}
	if name, params, err = el.ImplementationString(ID, ex.Cell, ex.Variant); err != nil {
		return
	}
	if name == "" {
		err = fmt.Errorf("%s on %s: %w", el.Filename, ex.Cell, types.ErrNotImplemented)
		return
	}
	if e, err = Create(name, ex.Cell, ex.Degree, params["variant"]); err != nil {
		return
	}
	l.cfg.Logger.Debug("created element", "library", ID, "family", name,
		"cell", ex.Cell, "degree", ex.Degree, "dofs", e.NumDOFs())
	return e.EntityDOFs.Clone(), implementations.CachedTabulator(e.Tabulate, l.cfg.CacheSize), nil
}
