package elements

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	celtypes "github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// DegreeFormula is an embedded degree written in terms of the element's
// degree k, either one expression for every cell or one per cell. The
// expression "none" means the degree is undefined.
type DegreeFormula struct {
	All    string
	ByCell map[string]string
}

func (f *DegreeFormula) UnmarshalJSON(b []byte) (err error) {
	var (
		raw interface{}
	)
	if err = json.Unmarshal(b, &raw); err != nil {
		return
	}
	switch v := raw.(type) {
	case map[string]interface{}:
		f.ByCell = make(map[string]string, len(v))
		for cell, expr := range v {
			f.ByCell[cell] = formulaString(expr)
		}
	default:
		f.All = formulaString(v)
	}
	return
}

func (f DegreeFormula) MarshalJSON() ([]byte, error) {
	if f.ByCell != nil {
		return json.Marshal(f.ByCell)
	}
	return json.Marshal(f.All)
}

func formulaString(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%d", int(x))
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func (f DegreeFormula) IsZero() bool { return f.All == "" && len(f.ByCell) == 0 }

// Expression returns the formula that applies on a cell.
func (f DegreeFormula) Expression(cell string) (expr string, ok bool) {
	if f.ByCell != nil {
		expr, ok = f.ByCell[cell]
		return
	}
	return f.All, f.All != ""
}

// Evaluate returns the degree on a cell for element degree k. ok is false
// when the formula is missing or "none".
func (f DegreeFormula) Evaluate(cell string, k int) (degree int, ok bool, err error) {
	expr, found := f.Expression(cell)
	if !found || expr == "none" {
		return
	}
	if degree, err = EvaluateDegree(expr, k); err == nil {
		ok = true
	}
	return
}

func (f DegreeFormula) String() string {
	if f.ByCell == nil {
		return f.All
	}
	cells := make([]string, 0, len(f.ByCell))
	for cell := range f.ByCell {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + ": " + f.ByCell[cell]
	}
	return strings.Join(parts, ", ")
}

var (
	degreeEnvOnce sync.Once
	degreeEnv     *cel.Env
	degreeEnvErr  error
	programs      sync.Map // expression -> cel.Program
)

func intBinary(fn func(a, b int64) int64) cel.OverloadOpt {
	return cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
		a, okA := lhs.(celtypes.Int)
		b, okB := rhs.(celtypes.Int)
		if !okA || !okB {
			return celtypes.NewErr("degree formulas only take integers")
		}
		return celtypes.Int(fn(int64(a), int64(b)))
	})
}

func newDegreeEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.VariableDecls(
			decls.NewVariable("k", celtypes.IntType),
		),
		cel.Function("max",
			cel.Overload("max_int_int", []*cel.Type{cel.IntType, cel.IntType}, cel.IntType,
				intBinary(func(a, b int64) int64 { return max(a, b) }))),
		cel.Function("min",
			cel.Overload("min_int_int", []*cel.Type{cel.IntType, cel.IntType}, cel.IntType,
				intBinary(func(a, b int64) int64 { return min(a, b) }))),
		cel.Function("floor",
			cel.Overload("floor_int", []*cel.Type{cel.IntType}, cel.IntType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return v }))),
	)
}

// EvaluateDegree evaluates an integer expression in k such as "k+1",
// "2*k" or "floor((k+1)/2)". Integer division truncates, so floor is the
// identity on the non-negative values degrees take.
func EvaluateDegree(expr string, k int) (degree int, err error) {
	degreeEnvOnce.Do(func() {
		degreeEnv, degreeEnvErr = newDegreeEnv()
	})
	if degreeEnvErr != nil {
		return 0, fmt.Errorf("failed to create CEL env: %w", degreeEnvErr)
	}
	var prg cel.Program
	if p, ok := programs.Load(expr); ok {
		prg = p.(cel.Program)
	} else {
		ast, issues := degreeEnv.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return 0, fmt.Errorf("degree formula %q: %w", expr, issues.Err())
		}
		if prg, err = degreeEnv.Program(ast); err != nil {
			return 0, fmt.Errorf("degree formula %q: %w", expr, err)
		}
		programs.Store(expr, prg)
	}
	out, _, err := prg.Eval(map[string]interface{}{"k": int64(k)})
	if err != nil {
		return 0, fmt.Errorf("degree formula %q at k=%d: %w", expr, k, err)
	}
	val, ok := out.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("degree formula %q does not evaluate to an integer", expr)
	}
	return int(val), nil
}
