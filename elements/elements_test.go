package elements

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/notargets/defelement/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)
	require.NotEmpty(t, c.Elements)
	for i := 1; i < len(c.Elements); i++ {
		assert.Less(t, c.Elements[i-1].Filename, c.Elements[i].Filename)
	}
	el, ok := c.Get("lagrange")
	require.True(t, ok)
	assert.Equal(t, "Lagrange", el.Name)
	assert.Contains(t, el.Examples, "quadrilateral,1,gll")
	assert.True(t, el.Implemented("symfem"))
	assert.True(t, el.Implemented("ciarlet"))
	assert.False(t, el.Implemented("ufl"))
	assert.Equal(t, "Lagrange (GLL variant)", el.DisplayName("gll"))
	// Every element carries the reference implementation and a parseable superdegree
	for _, el := range c.Elements {
		assert.Truef(t, el.Implemented("symfem"), el.Filename)
		_, _, err := el.LagrangeSuperdegree("triangle", 2)
		assert.NoErrorf(t, err, el.Filename)
	}
	var buf bytes.Buffer
	el.Print(&buf)
	assert.Contains(t, buf.String(), "lagrange\t= Lagrange")
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"b.def": {Data: []byte("name: B\nexamples:\n  - triangle,1\nimplementations:\n  symfem: P\n")},
		"a.def": {Data: []byte("name: A\nexamples: []\n")},
		"notes": {Data: []byte("ignored")},
		"c.def": {Data: []byte("name: [unterminated\n")},
	}
	_, err := LoadFS(fsys, ".")
	assert.Error(t, err)
	delete(fsys, "c.def")
	c, err := LoadFS(fsys, ".")
	require.NoError(t, err)
	require.Len(t, c.Elements, 2)
	assert.Equal(t, "a", c.Elements[0].Filename)
	f := c.Filter([]string{"b", "zzz"})
	require.Len(t, f.Elements, 1)
	assert.Equal(t, "B", f.Elements[0].Name)
	assert.Same(t, c, c.Filter(nil))
}

func TestImplementationString(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)
	lagrange, _ := c.Get("lagrange")
	{ // Keyed by variant, then by cell
		name, params, err := lagrange.ImplementationString("symfem", "quadrilateral", "gll")
		require.NoError(t, err)
		assert.Equal(t, "Q", name)
		assert.Equal(t, map[string]string{"variant": "lobatto"}, params)
	}
	{ // A cell missing from the variant's table is not implemented
		name, _, err := lagrange.ImplementationString("symfem", "triangle", "gll")
		require.NoError(t, err)
		assert.Equal(t, "", name)
	}
	{ // A missing variant
		_, _, err := lagrange.ImplementationString("ndelement", "triangle", "gll")
		assert.True(t, errors.Is(err, types.ErrVariantNotImplemented))
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // Libraries that are not listed
		_, _, err := lagrange.ImplementationString("bempp", "triangle", "")
		assert.True(t, errors.Is(err, types.ErrNotImplemented))
	}
	{ // Plain string
		hermite, _ := c.Get("hermite")
		name, params, err := hermite.ImplementationString("fiat", "triangle", "")
		require.NoError(t, err)
		assert.Equal(t, "CubicHermite", name)
		assert.Empty(t, params)
	}
}

func TestParseImplementationString(t *testing.T) {
	name, params := ParseImplementationString("P")
	assert.Equal(t, "P", name)
	assert.Empty(t, params)

	name, params = ParseImplementationString("serendipity lagrange_variant=legendre dpc_variant=legendre")
	assert.Equal(t, "serendipity", name)
	assert.Equal(t, map[string]string{"lagrange_variant": "legendre", "dpc_variant": "legendre"}, params)

	name, params = ParseImplementationString("Guzman Neilan order=first kind degree=2")
	assert.Equal(t, "Guzman Neilan", name)
	assert.Equal(t, map[string]string{"order": "first kind", "degree": "2"}, params)

	_, params = ParseImplementationString("Lagrange continuity=Standard orders=1,2")
	assert.Equal(t, "1,2", params["orders"])
}

func TestDegreeFormulas(t *testing.T) {
	cases := []struct {
		expr string
		k    int
		want int
	}{
		{"k", 3, 3},
		{"k+1", 3, 4},
		{"2*k", 2, 4},
		{"k-1", 1, 0},
		{"floor((k+1)/2)", 4, 2},
		{"max(k,2)", 1, 2},
		{"min(k,2)", 5, 2},
		{"3", 7, 3},
	}
	for _, tc := range cases {
		got, err := EvaluateDegree(tc.expr, tc.k)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got, tc.expr)
	}
	_, err := EvaluateDegree("k +", 1)
	assert.Error(t, err)
	_, err = EvaluateDegree("k > 1", 1)
	assert.Error(t, err)

	c, _ := LoadEmbedded()
	lagrange, _ := c.Get("lagrange")
	d, ok, err := lagrange.PolynomialSuperdegreeFormula.Evaluate("hexahedron", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, d)
	_, ok, _ = lagrange.PolynomialSuperdegreeFormula.Evaluate("prism", 2)
	assert.False(t, ok)
	cr, _ := c.Get("crouzeix-raviart")
	_, ok, err = cr.LagrangeSubdegreeFormula.Evaluate("triangle", 1)
	assert.NoError(t, err)
	assert.False(t, ok)
	min, max := lagrange.DegreeRange("triangle")
	assert.Equal(t, 1, min)
	assert.Equal(t, -1, max)
}
