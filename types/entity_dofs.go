package types

import (
	"fmt"
	"sort"
)

// EntityDOFs lists, for each topological dimension and each entity of that
// dimension, the indices of the DOFs associated with the entity.
type EntityDOFs [][][]int

// Counts returns the number of DOFs on each entity.
func (e EntityDOFs) Counts() (counts [][]int) {
	counts = make([][]int, len(e))
	for d, dofsD := range e {
		counts[d] = make([]int, len(dofsD))
		for i, dofs := range dofsD {
			counts[d][i] = len(dofs)
		}
	}
	return
}

func (e EntityDOFs) NumDOFs() (n int) {
	for _, dofsD := range e {
		for _, dofs := range dofsD {
			n += len(dofs)
		}
	}
	return
}

// All returns every DOF index in entity order.
func (e EntityDOFs) All() (all []int) {
	for _, dofsD := range e {
		for _, dofs := range dofsD {
			all = append(all, dofs...)
		}
	}
	return
}

func (e EntityDOFs) Clone() (c EntityDOFs) {
	c = make(EntityDOFs, len(e))
	for d, dofsD := range e {
		c[d] = make([][]int, len(dofsD))
		for i, dofs := range dofsD {
			c[d][i] = append([]int{}, dofs...)
		}
	}
	return
}

// Validate checks that each DOF in [0, NumDOFs) belongs to exactly one entity.
func (e EntityDOFs) Validate() error {
	var (
		n     = e.NumDOFs()
		owner = make(map[int][2]int, n)
	)
	for d, dofsD := range e {
		for i, dofs := range dofsD {
			for _, dof := range dofs {
				if dof < 0 || dof >= n {
					return fmt.Errorf("dof %d on entity (%d, %d) is outside [0, %d)", dof, d, i, n)
				}
				if prev, found := owner[dof]; found {
					return fmt.Errorf("dof %d is associated with both (%d, %d) and (%d, %d)",
						dof, prev[0], prev[1], d, i)
				}
				owner[dof] = [2]int{d, i}
			}
		}
	}
	return nil
}

// Permuted relabels every DOF through perm (new = perm[old]).
func (e EntityDOFs) Permuted(perm []int) (p EntityDOFs) {
	p = e.Clone()
	for _, dofsD := range p {
		for _, dofs := range dofsD {
			for k, dof := range dofs {
				dofs[k] = perm[dof]
			}
			sort.Ints(dofs)
		}
	}
	return
}
