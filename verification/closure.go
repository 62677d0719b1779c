package verification

import (
	"fmt"
	"sync"

	"github.com/notargets/defelement/reference"
	"github.com/notargets/defelement/types"
	"github.com/notargets/defelement/utils"
)

// incidence records which sub-entities lie in the closure of each entity of a
// cell. Entities are numbered globally, dimension by dimension.
type incidence struct {
	offsets []int // first global index of each dimension
	csr     utils.CSR
}

var incidenceCache sync.Map // cell name -> *incidence

func newIncidence(c *reference.Cell) (inc *incidence) {
	var (
		nEnt int
	)
	inc = &incidence{offsets: make([]int, c.TDim+2)}
	for dim := 0; dim <= c.TDim; dim++ {
		inc.offsets[dim] = nEnt
		nEnt += c.SubEntityCount(dim)
	}
	inc.offsets[c.TDim+1] = nEnt
	D := utils.NewDOK(nEnt, nEnt)
	for dim := 0; dim <= c.TDim; dim++ {
		for i, verts := range c.SubEntities(dim) {
			vs := utils.Index(verts)
			for subdim := 0; subdim <= dim; subdim++ {
				for j, subVerts := range c.SubEntities(subdim) {
					if containsAll(vs, subVerts) {
						D.Set(inc.offsets[dim]+i, inc.offsets[subdim]+j, 1)
					}
				}
			}
		}
	}
	inc.csr = D.ToCSR()
	return
}

func containsAll(vs utils.Index, sub []int) bool {
	for _, v := range sub {
		if !vs.Contains(v) {
			return false
		}
	}
	return true
}

func cellIncidence(c *reference.Cell) *incidence {
	if inc, ok := incidenceCache.Load(c.Name); ok {
		return inc.(*incidence)
	}
	inc, _ := incidenceCache.LoadOrStore(c.Name, newIncidence(c))
	return inc.(*incidence)
}

// split converts a global entity number back to (dim, index)
func (inc *incidence) split(g int) (dim, i int) {
	for dim = 0; dim < len(inc.offsets)-1; dim++ {
		if g < inc.offsets[dim+1] {
			return dim, g - inc.offsets[dim]
		}
	}
	panic(fmt.Errorf("entity %d out of range", g))
}

// ClosureDOFs returns, for every entity, the DOFs associated with the entity
// and with each of its sub-entities, lowest dimension first.
func ClosureDOFs(edofs types.EntityDOFs, cell string) (cdofs types.EntityDOFs, err error) {
	var (
		c *reference.Cell
	)
	if c, err = reference.New(cell); err != nil {
		return
	}
	if len(edofs) != c.TDim+1 {
		err = fmt.Errorf("entity dofs have %d dimensions, %s needs %d", len(edofs), cell, c.TDim+1)
		return
	}
	for dim := range edofs {
		if len(edofs[dim]) != c.SubEntityCount(dim) {
			err = fmt.Errorf("entity dofs list %d entities of dimension %d, %s has %d",
				len(edofs[dim]), dim, cell, c.SubEntityCount(dim))
			return
		}
	}
	inc := cellIncidence(c)
	cdofs = make(types.EntityDOFs, c.TDim+1)
	for dim := 0; dim <= c.TDim; dim++ {
		cdofs[dim] = make([][]int, c.SubEntityCount(dim))
		for i := range cdofs[dim] {
			closure := []int{}
			for _, g := range inc.csr.RowNonZeros(inc.offsets[dim] + i) {
				subdim, j := inc.split(g)
				closure = append(closure, edofs[subdim][j]...)
			}
			cdofs[dim][i] = closure
		}
	}
	return
}
