package report

import (
	"fmt"
	"sort"

	"github.com/notargets/defelement/types"
)

// StatusLists holds the examples of one element in one library, by outcome.
type StatusLists struct {
	Pass           []string `json:"pass"`
	Fail           []string `json:"fail"`
	NotImplemented []string `json:"not implemented"`
}

func NewStatusLists() *StatusLists {
	return &StatusLists{Pass: []string{}, Fail: []string{}, NotImplemented: []string{}}
}

func (s *StatusLists) list(st types.Status) *[]string {
	switch st {
	case types.Pass:
		return &s.Pass
	case types.Fail:
		return &s.Fail
	case types.NotImplemented:
		return &s.NotImplemented
	}
	panic(fmt.Errorf("unknown status %d", st))
}

func (s *StatusLists) Add(st types.Status, example string) {
	l := s.list(st)
	*l = append(*l, example)
}

func (s *StatusLists) Len() int { return len(s.Pass) + len(s.Fail) + len(s.NotImplemented) }

func (s *StatusLists) merge(o *StatusLists) {
	s.Pass = append(s.Pass, o.Pass...)
	s.Fail = append(s.Fail, o.Fail...)
	s.NotImplemented = append(s.NotImplemented, o.NotImplemented...)
}

// Results maps element filename → library id → outcomes.
type Results map[string]map[string]*StatusLists

// Init creates empty lists for every library of an element, so that
// libraries whose examples were all skipped still appear.
func (r Results) Init(element string, libs []string) {
	if _, ok := r[element]; !ok {
		r[element] = make(map[string]*StatusLists)
	}
	for _, lib := range libs {
		if _, ok := r[element][lib]; !ok {
			r[element][lib] = NewStatusLists()
		}
	}
}

func (r Results) Add(element, lib string, st types.Status, example string) {
	r.Init(element, []string{lib})
	r[element][lib].Add(st, example)
}

// Merge appends o into r. Lists are concatenated, so merging the outputs of
// workers that each own distinct examples loses nothing.
func (r Results) Merge(o Results) {
	for element, libs := range o {
		for lib, lists := range libs {
			r.Init(element, []string{lib})
			r[element][lib].merge(lists)
		}
	}
}

// Sort orders every example list, making merged output independent of
// which worker produced what.
func (r Results) Sort() {
	for _, libs := range r {
		for _, lists := range libs {
			sort.Strings(lists.Pass)
			sort.Strings(lists.Fail)
			sort.Strings(lists.NotImplemented)
		}
	}
}

// Get returns the outcome recorded for an example, if any.
func (r Results) Get(element, lib, example string) (st types.Status, ok bool) {
	lists, found := r[element][lib]
	if !found {
		return
	}
	for _, s := range []types.Status{types.Pass, types.Fail, types.NotImplemented} {
		for _, ex := range *lists.list(s) {
			if ex == example {
				return s, true
			}
		}
	}
	return
}
