package utils

import "sort"

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Contains(val int) bool {
	for _, v := range I {
		if v == val {
			return true
		}
	}
	return false
}

// Complement returns the members of [0,n) not in I, ascending.
func (I Index) Complement(n int) (r Index) {
	var (
		in = make([]bool, n)
	)
	for _, v := range I {
		if v >= 0 && v < n {
			in[v] = true
		}
	}
	r = make(Index, 0, n)
	for v := 0; v < n; v++ {
		if !in[v] {
			r = append(r, v)
		}
	}
	return
}

func (I Index) Sorted() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	sort.Ints(r)
	return
}
