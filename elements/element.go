package elements

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/defelement/types"
)

type Variant struct {
	VariantName string `json:"variant-name"`
	Description string `json:"description,omitempty"`
}

// EmbeddedDegrees are the degrees of the polynomial spaces an element sits
// between, as formulas in the element's degree.
type EmbeddedDegrees struct {
	PolynomialSubdegreeFormula   DegreeFormula `json:"polynomial-subdegree"`
	PolynomialSuperdegreeFormula DegreeFormula `json:"polynomial-superdegree"`
	LagrangeSubdegreeFormula     DegreeFormula `json:"lagrange-subdegree"`
	LagrangeSuperdegreeFormula   DegreeFormula `json:"lagrange-superdegree"`
}

// Element is one finite element of the catalogue, read from its .def file.
type Element struct {
	Filename          string             `json:"-"`
	Name              string             `json:"name"`
	HTMLName          string             `json:"html-name,omitempty"`
	ReferenceElements []string           `json:"reference-elements"`
	Examples          []string           `json:"examples"`
	Variants          map[string]Variant `json:"variants,omitempty"`
	MinDegree         interface{}        `json:"min-degree,omitempty"`
	MaxDegree         interface{}        `json:"max-degree,omitempty"`
	DegreeConvention  string             `json:"degree,omitempty"`
	EmbeddedDegrees
	Implementations map[string]interface{} `json:"implementations,omitempty"`
}

// DisplayName is the name with the variant appended, as DefElement prints it.
func (e *Element) DisplayName(variant string) string {
	if variant == "" {
		return e.Name
	}
	if v, ok := e.Variants[variant]; ok && v.VariantName != "" {
		return fmt.Sprintf("%s (%s variant)", e.Name, v.VariantName)
	}
	return fmt.Sprintf("%s (%s variant)", e.Name, variant)
}

// Implemented reports whether the element lists an implementation in lib.
func (e *Element) Implemented(lib string) bool {
	_, ok := e.Implementations[lib]
	return ok
}

// Libraries lists the libraries implementing the element, sorted.
func (e *Element) Libraries() (libs []string) {
	for lib := range e.Implementations {
		libs = append(libs, lib)
	}
	sort.Strings(libs)
	return
}

// ImplementationString returns the library's name for the element on a
// cell, and its parameters. An empty name with a nil error means the
// library has no implementation on that cell. A variant the library does
// not list gives types.ErrVariantNotImplemented.
func (e *Element) ImplementationString(lib, cell, variant string) (name string, params map[string]string, err error) {
	var (
		data interface{}
		ok   bool
	)
	if data, ok = e.Implementations[lib]; !ok {
		err = fmt.Errorf("%s is not implemented in %s: %w", e.Filename, lib, types.ErrNotImplemented)
		return
	}
	if variant != "" {
		byVariant, isMap := data.(map[string]interface{})
		if !isMap {
			err = fmt.Errorf("%s in %s has no variants: %w", e.Filename, lib, types.ErrVariantNotImplemented)
			return
		}
		if data, ok = byVariant[variant]; !ok {
			err = fmt.Errorf("%s variant %s in %s: %w", e.Filename, variant, lib, types.ErrVariantNotImplemented)
			return
		}
	}
	switch v := data.(type) {
	case string:
		name, params = ParseImplementationString(v)
	case map[string]interface{}:
		s, found := v[cell]
		if !found {
			return "", map[string]string{}, nil
		}
		str, isString := s.(string)
		if !isString {
			err = fmt.Errorf("%s in %s on %s: implementation string is a %T", e.Filename, lib, cell, s)
			return
		}
		name, params = ParseImplementationString(str)
	default:
		err = fmt.Errorf("%s in %s: unexpected implementation data %T", e.Filename, lib, data)
	}
	return
}

// ParseImplementationString splits "NAME key=value key2=value2" into the
// name and its parameters. Values may contain spaces; a value runs up to the
// word before the next "=".
func ParseImplementationString(s string) (name string, params map[string]string) {
	params = make(map[string]string)
	if !strings.Contains(s, "=") {
		return s, params
	}
	sp := strings.Split(s, "=")
	words := strings.Split(sp[0], " ")
	name = strings.Join(words[:len(words)-1], " ")
	sp[len(sp)-1] += " "
	for i := 0; i+1 < len(sp); i++ {
		keyWords := strings.Split(sp[i], " ")
		valWords := strings.Split(sp[i+1], " ")
		params[keyWords[len(keyWords)-1]] = strings.Join(valWords[:len(valWords)-1], " ")
	}
	return
}

// LagrangeSuperdegree returns the smallest degree of Lagrange space that
// contains the element's span on a cell, when it is defined.
func (e *Element) LagrangeSuperdegree(cell string, k int) (degree int, ok bool, err error) {
	return e.LagrangeSuperdegreeFormula.Evaluate(cell, k)
}

// DegreeRange returns the allowed degree range on a cell; max < 0 means
// unbounded.
func (e *Element) DegreeRange(cell string) (min, max int) {
	pick := func(v interface{}, dflt int) int {
		switch x := v.(type) {
		case float64:
			return int(x)
		case map[string]interface{}:
			if d, ok := x[cell].(float64); ok {
				return int(d)
			}
		}
		return dflt
	}
	return pick(e.MinDegree, 0), pick(e.MaxDegree, -1)
}
