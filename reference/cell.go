package reference

import (
	"fmt"
	"math"

	"github.com/notargets/defelement/utils"
)

// Cell is an immutable reference cell with symfem's vertex and sub-entity
// numbering.
type Cell struct {
	Name     string
	Type     CellType
	TDim     int
	Vertices [][]float64
	topology [][][]int // dim -> entity -> vertex indices
}

// SubEntity is the affine image of a lower dimensional reference cell:
// x = Origin + Σ p_i Axes[i].
type SubEntity struct {
	Type     CellType
	Dim      int
	Vertices []int
	Origin   []float64
	Axes     [][]float64
}

var (
	triangleEdges    = [][]int{{1, 2}, {0, 2}, {0, 1}}
	quadEdges        = [][]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}
	tetEdges         = [][]int{{2, 3}, {1, 3}, {1, 2}, {0, 3}, {0, 2}, {0, 1}}
	tetFaces         = [][]int{{1, 2, 3}, {0, 2, 3}, {0, 1, 3}, {0, 1, 2}}
	hexEdges         = [][]int{{0, 1}, {0, 2}, {0, 4}, {1, 3}, {1, 5}, {2, 3}, {2, 6}, {3, 7}, {4, 5}, {4, 6}, {5, 7}, {6, 7}}
	hexFaces         = [][]int{{0, 1, 2, 3}, {0, 1, 4, 5}, {0, 2, 4, 6}, {1, 3, 5, 7}, {2, 3, 6, 7}, {4, 5, 6, 7}}
	prismEdges       = [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 4}, {2, 5}, {3, 4}, {3, 5}, {4, 5}}
	prismFaces       = [][]int{{0, 1, 2}, {0, 1, 3, 4}, {0, 2, 3, 5}, {1, 2, 4, 5}, {3, 4, 5}}
	pyramidEdges     = [][]int{{0, 1}, {0, 2}, {0, 4}, {1, 3}, {1, 4}, {2, 3}, {2, 4}, {3, 4}}
	pyramidFaces     = [][]int{{0, 1, 2, 3}, {0, 1, 4}, {0, 2, 4}, {1, 3, 4}, {2, 3, 4}}
	referenceVolumes = map[CellType]float64{
		Point:         1,
		Interval:      1,
		Triangle:      0.5,
		Quadrilateral: 1,
		Tetrahedron:   1. / 6.,
		Hexahedron:    1,
		Prism:         0.5,
		Pyramid:       1. / 3.,
	}
)

// New builds the reference cell with the given DefElement name.
func New(name string) (c *Cell, err error) {
	var (
		ct    CellType
		sides int
	)
	if ct, sides, err = ParseCellType(name); err != nil {
		return
	}
	c = &Cell{Name: name, Type: ct, TDim: ct.GetDimension()}
	switch ct {
	case Point:
		c.Vertices = [][]float64{{}}
	case Interval:
		c.Vertices = [][]float64{{0}, {1}}
	case Triangle:
		c.Vertices = [][]float64{{0, 0}, {1, 0}, {0, 1}}
		c.topology = [][][]int{nil, triangleEdges}
	case Quadrilateral:
		c.Vertices = [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
		c.topology = [][][]int{nil, quadEdges}
	case DualPolygon:
		c.Vertices = make([][]float64, sides)
		edges := make([][]int, sides)
		for i := 0; i < sides; i++ {
			theta := 2 * math.Pi * float64(i) / float64(sides)
			c.Vertices[i] = []float64{math.Cos(theta), math.Sin(theta)}
			edges[i] = []int{i, (i + 1) % sides}
		}
		c.topology = [][][]int{nil, edges}
	case Tetrahedron:
		c.Vertices = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		c.topology = [][][]int{nil, tetEdges, tetFaces}
	case Hexahedron:
		c.Vertices = make([][]float64, 8)
		for i := 0; i < 8; i++ {
			c.Vertices[i] = []float64{float64(i & 1), float64((i >> 1) & 1), float64((i >> 2) & 1)}
		}
		c.topology = [][][]int{nil, hexEdges, hexFaces}
	case Prism:
		c.Vertices = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 1}, {0, 1, 1}}
		c.topology = [][][]int{nil, prismEdges, prismFaces}
	case Pyramid:
		c.Vertices = [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {0, 0, 1}}
		c.topology = [][][]int{nil, pyramidEdges, pyramidFaces}
	}
	c.completeTopology()
	return
}

// completeTopology fills in the vertex entities and the cell itself
func (c *Cell) completeTopology() {
	var (
		nv = len(c.Vertices)
	)
	top := make([][][]int, c.TDim+1)
	copy(top, c.topology)
	top[0] = make([][]int, nv)
	for i := range top[0] {
		top[0][i] = []int{i}
	}
	top[c.TDim] = [][]int{utils.NewRange(0, nv-1)}
	c.topology = top
}

func (c *Cell) SubEntityCount(dim int) int {
	if dim < 0 || dim > c.TDim {
		return 0
	}
	return len(c.topology[dim])
}

// SubEntities returns the vertex lists of every sub-entity of dimension dim.
func (c *Cell) SubEntities(dim int) [][]int {
	if dim < 0 || dim > c.TDim {
		return nil
	}
	return c.topology[dim]
}

func (c *Cell) SubEntity(dim, i int) (se *SubEntity) {
	if i < 0 || i >= c.SubEntityCount(dim) {
		panic(fmt.Errorf("sub-entity (%d, %d) out of range for %s", dim, i, c.Name))
	}
	var (
		verts = c.topology[dim][i]
	)
	se = &SubEntity{
		Type:     subEntityType(dim, len(verts)),
		Dim:      dim,
		Vertices: verts,
		Origin:   append([]float64{}, c.Vertices[verts[0]]...),
		Axes:     make([][]float64, dim),
	}
	if dim == c.TDim {
		se.Type = c.Type
	}
	axisVerts := []int{1, 2, 3}
	if se.Type == Hexahedron || se.Type == Pyramid {
		axisVerts[2] = 4
	}
	for a := 0; a < dim; a++ {
		v := c.Vertices[verts[axisVerts[a]]]
		se.Axes[a] = make([]float64, len(se.Origin))
		for n := range se.Origin {
			se.Axes[a][n] = v[n] - se.Origin[n]
		}
	}
	return
}

// ReferenceVolume returns the measure of the cell.
func (c *Cell) ReferenceVolume() float64 {
	if c.Type == DualPolygon {
		n := float64(len(c.Vertices))
		return 0.5 * n * math.Sin(2*math.Pi/n)
	}
	return referenceVolumes[c.Type]
}

// Map sends a point of the sub-entity's own reference cell into the parent cell.
func (se *SubEntity) Map(p []float64) (x []float64) {
	x = append([]float64{}, se.Origin...)
	for a, axis := range se.Axes {
		for n := range x {
			x[n] += p[a] * axis[n]
		}
	}
	return
}

// Scale is the Gram determinant √det(AᵀA) of the axes, the ratio between
// the sub-entity measure and that of its own reference cell.
func (se *SubEntity) Scale() float64 {
	var (
		dim = len(se.Axes)
	)
	if dim == 0 {
		return 1
	}
	G := utils.NewMatrix(dim, dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			G.Set(i, j, utils.Dot(se.Axes[i], se.Axes[j]))
		}
	}
	return math.Sqrt(math.Abs(G.Determinant()))
}

// Volume returns the measure of the sub-entity inside its parent.
func (se *SubEntity) Volume() float64 {
	return se.Scale() * referenceVolumes[se.Type]
}
