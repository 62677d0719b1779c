package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/report"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/utils"
	"github.com/notargets/defelement/verification"
)

type Config struct {
	Processes    int
	SkipMissing  bool
	PrintReasons bool
	Reference    string
	// Implementation configures every adapter a worker creates.
	Implementation implementations.Config
	// Verify holds options applied to every comparison. The element's
	// Lagrange superdegree is added per example.
	Verify []verification.Option
	Out    io.Writer
	Logger *slog.Logger
	// NewImplementation creates adapters, implementations.New by default.
	NewImplementation func(id string, cfg implementations.Config) (implementations.Implementation, error)
}

func DefaultConfig() Config {
	return Config{
		Processes:         1,
		SkipMissing:       true,
		Reference:         "symfem",
		Implementation:    implementations.DefaultConfig(),
		Out:               os.Stdout,
		Logger:            slog.Default(),
		NewImplementation: implementations.New,
	}
}

func (cfg *Config) fill() {
	def := DefaultConfig()
	if cfg.Processes < 1 {
		cfg.Processes = 1
	}
	if cfg.Reference == "" {
		cfg.Reference = def.Reference
	}
	if cfg.Out == nil {
		cfg.Out = def.Out
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.NewImplementation == nil {
		cfg.NewImplementation = def.NewImplementation
	}
	if cfg.Implementation.Logger == nil {
		cfg.Implementation.Logger = cfg.Logger
	}
}

// printer serializes status lines from concurrent workers
type printer struct {
	mu                       sync.Mutex
	w                        io.Writer
	pass, fail, notImplement func(a ...interface{}) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:            w,
		pass:         color.New(color.FgGreen).SprintFunc(),
		fail:         color.New(color.FgRed).SprintFunc(),
		notImplement: color.New(color.FgBlue).SprintFunc(),
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) status(prefix, element, lib, example string, st types.Status) {
	var mark string
	switch st {
	case types.Pass:
		mark = p.pass("✓")
	case types.Fail:
		mark = p.fail("✕")
	case types.NotImplemented:
		mark = p.notImplement("–")
	}
	p.printf("%s%s %s %s %s\n", prefix, element, lib, example, mark)
}

// Run verifies every job and returns the merged results. Jobs are split
// into contiguous slices, one per worker; each worker owns its adapters and
// its results. Any worker failure fails the campaign.
func Run(ctx context.Context, jobs []Job, cfg Config) (results report.Results, err error) {
	cfg.fill()
	var (
		pm   = utils.NewPartitionMap(cfg.Processes, len(jobs))
		outs = make([]report.Results, pm.ParallelDegree)
		out  = newPrinter(cfg.Out)
	)
	g, gctx := errgroup.WithContext(ctx)
	for np := 0; np < pm.ParallelDegree; np++ {
		kMin, kMax := pm.GetBucketRange(np)
		prefix := ""
		if pm.ParallelDegree > 1 {
			prefix = fmt.Sprintf("[%d] ", np)
		}
		w := &worker{
			id:      np,
			prefix:  prefix,
			cfg:     &cfg,
			out:     out,
			impls:   make(map[string]implementations.Implementation),
			results: report.Results{},
		}
		outs[np] = w.results
		cfg.Logger.Debug("worker jobs", "worker", np, "jobs", pm.GetBucketDimension(np))
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker %d panicked: %v", np, r)
				}
			}()
			return w.run(gctx, jobs[kMin:kMax])
		})
	}
	if err = g.Wait(); err != nil {
		return
	}
	results = report.Results{}
	for _, r := range outs {
		results.Merge(r)
	}
	results.Sort()
	return
}

type worker struct {
	id      int
	prefix  string
	cfg     *Config
	out     *printer
	impls   map[string]implementations.Implementation
	results report.Results
}

func (w *worker) impl(id string) (impl implementations.Implementation, err error) {
	var ok bool
	if impl, ok = w.impls[id]; ok {
		return
	}
	if impl, err = w.cfg.NewImplementation(id, w.cfg.Implementation); err != nil {
		return
	}
	w.impls[id] = impl
	return
}

func (w *worker) close() {
	for id, impl := range w.impls {
		if c, ok := impl.(io.Closer); ok {
			if err := c.Close(); err != nil {
				w.cfg.Logger.Debug("closing implementation", "worker", w.id, "library", id, "err", err)
			}
		}
	}
}

func (w *worker) info(ctx context.Context, lib string, el *elements.Element,
	ex implementations.Example) (info verification.Info, err error) {
	var (
		impl implementations.Implementation
	)
	if impl, err = w.impl(lib); err != nil {
		return
	}
	info.EntityDOFs, info.Tabulate, err = impl.EntityDOFsAndTabulator(ctx, el, ex)
	return
}

// referenceError marks a failure of the reference library, so that it is not
// recorded against the library being compared with it.
type referenceError struct {
	lib string
	err error
}

func (e *referenceError) Error() string { return fmt.Sprintf("reference %s: %v", e.lib, e.err) }
func (e *referenceError) Unwrap() error { return e.err }

// referenceInfo is info for the reference library, with its errors and those
// of its tabulator wrapped in a referenceError.
func (w *worker) referenceInfo(ctx context.Context, el *elements.Element,
	ex implementations.Example) (info verification.Info, err error) {
	var (
		lib = w.cfg.Reference
	)
	if info, err = w.info(ctx, lib, el, ex); err != nil {
		err = &referenceError{lib: lib, err: err}
		return
	}
	tab := info.Tabulate
	info.Tabulate = func(pts [][]float64) (T types.Tabulation, err error) {
		if T, err = tab(pts); err != nil {
			err = &referenceError{lib: lib, err: err}
		}
		return
	}
	return
}

// referenceFailed decides what a reference failure does to a job. A missing
// reference follows the missing library policy and an example it cannot
// build is skipped. Other errors fail the campaign.
func (w *worker) referenceFailed(job Job, err error) error {
	switch {
	case errors.Is(err, types.ErrLibraryMissing):
		return w.missing(w.cfg.Reference, err)
	case errors.Is(err, types.ErrNotImplemented):
		w.cfg.Logger.Warn("reference cannot build example, skipping", "element", job.Element.Filename,
			"example", job.Example, "reference", w.cfg.Reference, "err", err)
		return nil
	}
	return err
}

func (w *worker) run(ctx context.Context, jobs []Job) (err error) {
	defer w.close()
	for _, job := range jobs {
		if err = ctx.Err(); err != nil {
			return
		}
		if err = w.runJob(ctx, job); err != nil {
			return fmt.Errorf("worker %d: %s %s: %w", w.id, job.Element.Filename, job.Example, err)
		}
	}
	return
}

func (w *worker) missing(lib string, err error) error {
	if !w.cfg.SkipMissing {
		return err
	}
	w.out.printf("%s%s not installed\n", w.prefix, lib)
	w.cfg.Logger.Debug("library missing", "library", lib, "err", err)
	return nil
}

func (w *worker) runJob(ctx context.Context, job Job) (err error) {
	var (
		el      = job.Element
		ex      implementations.Example
		refInfo verification.Info
		opts    []verification.Option
	)
	w.results.Init(el.Filename, job.Libraries)
	if ex, err = implementations.ParseExample(job.Example); err != nil {
		return
	}
	if opts, err = w.options(el, ex); err != nil {
		return
	}
	if refInfo, err = w.referenceInfo(ctx, el, ex); err != nil {
		return w.referenceFailed(job, err)
	}
	for _, lib := range job.Libraries {
		var (
			st     types.Status
			reason string
			start  = time.Now()
		)
		if st, reason, err = w.verifyOne(ctx, el, ex, refInfo, lib, opts); err != nil {
			var re *referenceError
			if errors.As(err, &re) {
				return w.referenceFailed(job, err)
			}
			if errors.Is(err, types.ErrLibraryMissing) {
				if err = w.missing(lib, err); err == nil {
					continue
				}
			}
			return
		}
		w.results.Add(el.Filename, lib, st, job.Example)
		w.out.status(w.prefix, el.Filename, lib, job.Example, st)
		if st == types.Fail && w.cfg.PrintReasons {
			w.out.printf("  %s\n", reason)
		}
		w.cfg.Logger.Debug("verified", "worker", w.id, "element", el.Filename, "library", lib,
			"example", job.Example, "status", st.String(), "elapsed", time.Since(start))
	}
	return
}

func (w *worker) options(el *elements.Element, ex implementations.Example) (opts []verification.Option, err error) {
	var (
		deg int
		ok  bool
	)
	opts = append(opts, w.cfg.Verify...)
	if deg, ok, err = el.LagrangeSuperdegree(ex.Cell, ex.Degree); err != nil {
		err = fmt.Errorf("lagrange superdegree: %w", err)
		return
	}
	if ok {
		opts = append(opts, verification.WithDegree(deg))
	}
	return
}

// verifyOne compares one library with the reference. A library that cannot
// build or tabulate the example is not implemented; any other error, and any
// failure of the reference, is returned.
func (w *worker) verifyOne(ctx context.Context, el *elements.Element, ex implementations.Example,
	refInfo verification.Info, lib string, opts []verification.Option) (st types.Status, reason string, err error) {
	var (
		info verification.Info
		res  verification.Result
	)
	if info, err = w.info(ctx, lib, el, ex); err == nil {
		res, err = verification.Verify(ex.Cell, refInfo, info, opts...)
	}
	var re *referenceError
	switch {
	case errors.As(err, &re):
		return
	case err == nil && res.OK:
		return types.Pass, "", nil
	case err == nil:
		return types.Fail, res.Reason, nil
	case errors.Is(err, types.ErrNotImplemented):
		return types.NotImplemented, err.Error(), nil
	}
	return
}

// Check verifies a single (element, example, library) triple.
func Check(ctx context.Context, el *elements.Element, example, lib string, cfg Config) (st types.Status, reason string, err error) {
	cfg.fill()
	var (
		ex      implementations.Example
		refInfo verification.Info
		opts    []verification.Option
		w       = &worker{cfg: &cfg, out: newPrinter(io.Discard), impls: make(map[string]implementations.Implementation)}
	)
	defer w.close()
	if ex, err = implementations.ParseExample(example); err != nil {
		return
	}
	if opts, err = w.options(el, ex); err != nil {
		return
	}
	if refInfo, err = w.referenceInfo(ctx, el, ex); err != nil {
		return
	}
	return w.verifyOne(ctx, el, ex, refInfo, lib, opts)
}
