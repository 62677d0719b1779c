package python

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/verification"
)

// fakeHelper answers the helper protocol in process
type fakeHelper struct {
	mu       sync.Mutex
	requests []request
	respond  func(req request) response
}

func (f *fakeHelper) session() *session {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	go func() {
		defer respW.Close()
		sc := bufio.NewScanner(reqR)
		sc.Buffer(make([]byte, 1<<16), 1<<24)
		enc := json.NewEncoder(respW)
		for sc.Scan() {
			var req request
			if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
				return
			}
			f.mu.Lock()
			f.requests = append(f.requests, req)
			f.mu.Unlock()
			if err := enc.Encode(f.respond(req)); err != nil {
				return
			}
		}
	}()
	return newSession(respR, reqW)
}

func (f *fakeHelper) ops() (ops []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		ops = append(ops, r.Op)
	}
	return
}

func (f *fakeHelper) request(i int) request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

// p1Interval serves the linear Lagrange element on the interval
func p1Interval() *fakeHelper {
	next := 0
	return &fakeHelper{respond: func(req request) (resp response) {
		switch req.Op {
		case "create":
			resp.Handle = next
			next++
			resp.EntityDOFs = [][][]int{{{0}, {1}}, {{}}}
		case "tabulate":
			resp.Shape = []int{len(req.Points), 1, 2}
			for _, p := range req.Points {
				resp.Data = append(resp.Data, 1-p[0], p[0])
			}
		}
		return
	}}
}

func testLibrary(id string, f *fakeHelper) *Library {
	for _, spec := range librarySpecs {
		if spec.id == id {
			l := newLibrary(spec, implementations.DefaultConfig())
			l.start = func() (*session, error) { return f.session(), nil }
			return l
		}
	}
	panic("no library " + id)
}

func lagrange(t *testing.T) *elements.Element {
	cat, err := elements.LoadEmbedded()
	require.NoError(t, err)
	el, ok := cat.Get("lagrange")
	require.True(t, ok)
	return el
}

func TestLibrary(t *testing.T) {
	var (
		ctx = context.Background()
		el  = lagrange(t)
	)
	{ // Create and tabulate
		f := p1Interval()
		l := testLibrary("basix", f)
		defer l.Close()
		ex := implementations.Example{Cell: "interval", Degree: 1, Variant: "gll"}
		edofs, tab, err := l.EntityDOFsAndTabulator(ctx, el, ex)
		require.NoError(t, err)
		assert.Equal(t, types.EntityDOFs{{{0}, {1}}, {{}}}, edofs)
		req := f.request(0)
		assert.Equal(t, "create", req.Op)
		assert.Equal(t, "basix", req.Library)
		assert.Equal(t, "P", req.Family)
		assert.Equal(t, 1, req.Degree)
		assert.Equal(t, map[string]interface{}{"lagrange_variant": "gll_warped"}, req.Kwargs)

		T, err := tab([][]float64{{0.25}, {1}})
		require.NoError(t, err)
		assert.Equal(t, [3]int{2, 1, 2}, T.Shape())
		assert.Equal(t, []float64{0.75, 0.25, 0, 1}, T.Data)
		// The second identical request is served from the cache
		_, err = tab([][]float64{{0.25}, {1}})
		require.NoError(t, err)
		assert.Equal(t, []string{"create", "tabulate"}, f.ops())

		info := verification.Info{EntityDOFs: edofs, Tabulate: tab}
		res, err := verification.Verify("interval", info, info, verification.WithDegree(1))
		require.NoError(t, err)
		assert.True(t, res.OK)
	}
	{ // Old elements are released
		f := p1Interval()
		l := testLibrary("symfem", f)
		var first types.Tabulator
		for i := 0; i <= maxLive; i++ {
			_, tab, err := l.EntityDOFsAndTabulator(ctx, el,
				implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
			require.NoError(t, err)
			if i == 0 {
				first = tab
			}
		}
		assert.Contains(t, f.ops(), "release")
		_, err := first([][]float64{{0}})
		assert.Error(t, err)
		assert.NoError(t, l.Close())
		assert.NoError(t, l.Close())
	}
	{ // Helper errors map onto the sentinels
		for kind, target := range map[string]error{
			"missing":         types.ErrLibraryMissing,
			"not implemented": types.ErrNotImplemented,
		} {
			f := &fakeHelper{respond: func(request) response { return response{Error: kind, Message: "no"} }}
			l := testLibrary("fiat", f)
			_, _, err := l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
			assert.True(t, errors.Is(err, target), kind)
			l.Close()
		}
		f := &fakeHelper{respond: func(request) response { return response{Error: "failed", Message: "KeyError: 3"} }}
		l := testLibrary("fiat", f)
		_, _, err := l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, types.ErrNotImplemented))
		assert.Contains(t, err.Error(), "KeyError")
		l.Close()
	}
	{ // Malformed entity DOFs are rejected
		f := &fakeHelper{respond: func(request) response {
			return response{EntityDOFs: [][][]int{{{0}, {0}}, {{}}}}
		}}
		l := testLibrary("basix", f)
		_, _, err := l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
		assert.Error(t, err)
		l.Close()
	}
	{ // Decisions made before the helper is asked
		f := p1Interval()
		l := testLibrary("ndelement", f)
		_, _, err := l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 3, Variant: "equispaced"})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
		_, _, err = l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "gll"})
		assert.True(t, errors.Is(err, types.ErrVariantNotImplemented))
		fl := testLibrary("fiat", f)
		_, _, err = fl.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "prism", Degree: 1, Variant: "equispaced"})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
		assert.Empty(t, f.ops())
	}
	{ // A helper that stops answering is abandoned when the context ends
		block := make(chan struct{})
		defer close(block)
		f := &fakeHelper{respond: func(request) response { <-block; return response{} }}
		l := testLibrary("basix", f)
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, _, err := l.EntityDOFsAndTabulator(cctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		_, _, err = l.EntityDOFsAndTabulator(ctx, el, implementations.Example{Cell: "interval", Degree: 1, Variant: "equispaced"})
		assert.Error(t, err)
	}
}

func TestHelperWithoutNumpy(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not on PATH")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "numpy.py"),
		[]byte("raise ImportError('No module named numpy')\n"), 0644))
	t.Setenv("PYTHONPATH", dir)

	cfg := implementations.DefaultConfig()
	cfg.Python = python
	impl, err := implementations.New("basix", cfg)
	require.NoError(t, err)
	l := impl.(*Library)
	defer l.Close()
	ex := implementations.Example{Cell: "interval", Degree: 1, Variant: "gll"}
	for i := 0; i < 2; i++ {
		_, _, err = l.EntityDOFsAndTabulator(context.Background(), lagrange(t), ex)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrLibraryMissing), err.Error())
		assert.Contains(t, err.Error(), "numpy")
	}
}

func TestPrepare(t *testing.T) {
	{ // DEGREEMAP and fixed degrees
		req, err := prepareFIAT("X", map[string]string{"DEGREEMAP": "k+1", "subdegree": "k-1", "variant": "integral"},
			implementations.Example{Cell: "triangle", Degree: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, req.Degree)
		assert.Equal(t, map[string]interface{}{"subdegree": 1, "variant": "integral"}, req.Kwargs)
		_, err = prepareFIAT("X", map[string]string{"degree": "3"}, implementations.Example{Cell: "triangle", Degree: 2})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
		_, err = prepareFIAT("X", map[string]string{"degree": "None"}, implementations.Example{Cell: "triangle", Degree: 2})
		assert.NoError(t, err)
	}
	{ // Keyword arguments only reach symfem
		ex, err := implementations.ParseExample("triangle,2 {reduced=1}")
		require.NoError(t, err)
		req, err := prepareSymfem("P", map[string]string{"variant": "legendre"}, ex)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"variant": "legendre", "reduced": 1}, req.Kwargs)
		for _, prepare := range []func(string, map[string]string, implementations.Example) (request, error){
			prepareBasix, prepareFIAT, prepareNDElement,
		} {
			_, err = prepare("P", nil, ex)
			assert.True(t, errors.Is(err, types.ErrNotImplemented))
		}
	}
	{ // Basix booleans
		req, err := prepareBasix("P", map[string]string{"discontinuous": "True", "lagrange_variant": "equispaced"},
			implementations.Example{Cell: "triangle", Degree: 1})
		require.NoError(t, err)
		assert.Equal(t, true, req.Kwargs["discontinuous"])
		_, err = prepareBasix("P", map[string]string{"discontinuous": "yes"}, implementations.Example{Cell: "triangle", Degree: 1})
		assert.Error(t, err)
	}
	{ // ndelement orders
		_, err := prepareNDElement("Lagrange", map[string]string{"orders": "1,2"}, implementations.Example{Cell: "triangle", Degree: 2})
		assert.NoError(t, err)
		_, err = prepareNDElement("Lagrange", map[string]string{"orders": "1,2"}, implementations.Example{Cell: "triangle", Degree: 3})
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // FIAT box entity order
		edofs := types.EntityDOFs{{{0}, {1}, {2}, {3}}, {{4}, {5}, {6}, {7}}, {{8}}}
		assert.Equal(t, types.EntityDOFs{{{0}, {2}, {1}, {3}}, {{6}, {4}, {5}, {7}}, {{8}}},
			reorderFIAT("quadrilateral", edofs))
		assert.Equal(t, edofs, reorderFIAT("triangle", edofs))
	}
}
