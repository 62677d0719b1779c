package python

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/defelement/elements"
	"github.com/notargets/defelement/implementations"
	"github.com/notargets/defelement/types"
)

type librarySpec struct {
	id, name string
	// cells lists the supported reference cells, nil for all of them
	cells   map[string]bool
	prepare func(name string, params map[string]string, ex implementations.Example) (request, error)
	reorder func(cell string, edofs types.EntityDOFs) types.EntityDOFs
}

var (
	librarySpecs = []librarySpec{
		{id: "symfem", name: "Symfem", prepare: prepareSymfem},
		{id: "basix", name: "Basix", prepare: prepareBasix},
		{
			id:   "fiat",
			name: "FIAT",
			cells: map[string]bool{
				"interval": true, "triangle": true, "tetrahedron": true,
				"quadrilateral": true, "hexahedron": true,
			},
			prepare: prepareFIAT,
			reorder: reorderFIAT,
		},
		{id: "ndelement", name: "NDElement", prepare: prepareNDElement},
	}
	// FIAT numbers the sub-entities of boxes lexicographically
	fiatEntityOrder = map[string][][]int{
		"quadrilateral": {
			{0, 2, 1, 3},
			{2, 0, 1, 3},
			{0},
		},
		"hexahedron": {
			{0, 4, 2, 6, 1, 5, 3, 7},
			{8, 4, 0, 6, 2, 10, 1, 3, 9, 5, 7, 11},
			{4, 2, 0, 1, 3, 5},
			{0},
		},
	}
)

// inputDegree applies the library's DEGREEMAP, a formula in k, when it has one
func inputDegree(params map[string]string, k int) (int, error) {
	if expr, ok := params["DEGREEMAP"]; ok {
		return elements.EvaluateDegree(expr, k)
	}
	return k, nil
}

func noKwargs(ex implementations.Example) error {
	if len(ex.Kwargs) != 0 {
		return fmt.Errorf("keyword arguments: %w", types.ErrNotImplemented)
	}
	return nil
}

func prepareSymfem(_ string, params map[string]string, ex implementations.Example) (req request, err error) {
	req.Degree = ex.Degree
	req.Kwargs = make(map[string]interface{})
	for k, v := range params {
		req.Kwargs[k] = v
	}
	for _, kw := range ex.Kwargs {
		req.Kwargs[kw.Key] = kw.Value
	}
	return
}

func prepareBasix(_ string, params map[string]string, ex implementations.Example) (req request, err error) {
	if err = noKwargs(ex); err != nil {
		return
	}
	if req.Degree, err = inputDegree(params, ex.Degree); err != nil {
		return
	}
	req.Kwargs = make(map[string]interface{})
	for _, key := range []string{"lagrange_variant", "dpc_variant"} {
		if v, ok := params[key]; ok {
			req.Kwargs[key] = v
		}
	}
	if v, ok := params["discontinuous"]; ok {
		switch v {
		case "True":
			req.Kwargs["discontinuous"] = true
		case "False":
			req.Kwargs["discontinuous"] = false
		default:
			err = fmt.Errorf("discontinuous=%s, want True or False", v)
		}
	}
	return
}

func prepareFIAT(_ string, params map[string]string, ex implementations.Example) (req request, err error) {
	if err = noKwargs(ex); err != nil {
		return
	}
	if req.Degree, err = inputDegree(params, ex.Degree); err != nil {
		return
	}
	if d, ok := params["degree"]; ok && d != "None" {
		var fixed int
		if fixed, err = strconv.Atoi(d); err != nil {
			err = fmt.Errorf("degree=%s: %w", d, err)
			return
		}
		if fixed != ex.Degree {
			err = fmt.Errorf("only degree %d: %w", fixed, types.ErrNotImplemented)
			return
		}
	}
	req.Kwargs = make(map[string]interface{})
	if expr, ok := params["subdegree"]; ok {
		var sub int
		if sub, err = elements.EvaluateDegree(expr, ex.Degree); err != nil {
			return
		}
		req.Kwargs["subdegree"] = sub
	}
	if v, ok := params["variant"]; ok {
		req.Kwargs["variant"] = v
	}
	return
}

func reorderFIAT(cell string, edofs types.EntityDOFs) types.EntityDOFs {
	order, ok := fiatEntityOrder[cell]
	if !ok || len(edofs) != len(order) {
		return edofs
	}
	out := make(types.EntityDOFs, len(order))
	for dim, perm := range order {
		if len(edofs[dim]) != len(perm) {
			return edofs
		}
		out[dim] = make([][]int, len(perm))
		for i, j := range perm {
			out[dim][i] = edofs[dim][j]
		}
	}
	return out
}

func prepareNDElement(_ string, params map[string]string, ex implementations.Example) (req request, err error) {
	if err = noKwargs(ex); err != nil {
		return
	}
	req.Degree = ex.Degree
	req.Kwargs = make(map[string]interface{})
	if v, ok := params["continuity"]; ok {
		req.Kwargs["continuity"] = v
	}
	if orders, ok := params["orders"]; ok {
		supported := false
		for _, o := range strings.Split(orders, ",") {
			if n, cerr := strconv.Atoi(strings.TrimSpace(o)); cerr == nil && n == ex.Degree {
				supported = true
			}
		}
		if !supported {
			err = fmt.Errorf("degree %d not in orders %s: %w", ex.Degree, orders, types.ErrNotImplemented)
		}
	}
	return
}
