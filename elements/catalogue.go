package elements

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

//go:embed data/*.def
var embedded embed.FS

// Catalogue is the set of elements loaded from a folder of .def files, in
// filename order.
type Catalogue struct {
	Elements []*Element
	byName   map[string]*Element
}

func (e *Element) Parse(data []byte) error {
	return yaml.Unmarshal(data, e)
}

func (e *Element) Print(w io.Writer) {
	fmt.Fprintf(w, "%s\t= %s\n", e.Filename, e.Name)
	for _, ex := range e.Examples {
		fmt.Fprintf(w, "\t%s\n", ex)
	}
	fmt.Fprintf(w, "\t[%s]\n", strings.Join(e.Libraries(), ", "))
}

// Load reads every .def file in a directory.
func Load(dir string) (*Catalogue, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadEmbedded reads the catalogue compiled into the binary.
func LoadEmbedded() (*Catalogue, error) {
	return LoadFS(embedded, "data")
}

func LoadFS(fsys fs.FS, dir string) (c *Catalogue, err error) {
	var (
		entries []fs.DirEntry
	)
	if entries, err = fs.ReadDir(fsys, dir); err != nil {
		return
	}
	c = &Catalogue{byName: make(map[string]*Element)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".def") {
			continue
		}
		var data []byte
		if data, err = fs.ReadFile(fsys, path.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
		el := &Element{Filename: strings.TrimSuffix(entry.Name(), ".def")}
		if err = el.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		c.Elements = append(c.Elements, el)
		c.byName[el.Filename] = el
	}
	sort.Slice(c.Elements, func(i, j int) bool {
		return c.Elements[i].Filename < c.Elements[j].Filename
	})
	return
}

// Get looks an element up by filename.
func (c *Catalogue) Get(filename string) (el *Element, ok bool) {
	el, ok = c.byName[filename]
	return
}

// Filter keeps the named elements; nil keeps everything.
func (c *Catalogue) Filter(filenames []string) (f *Catalogue) {
	if filenames == nil {
		return c
	}
	f = &Catalogue{byName: make(map[string]*Element)}
	for _, el := range c.Elements {
		for _, name := range filenames {
			if el.Filename == name {
				f.Elements = append(f.Elements, el)
				f.byName[name] = el
				break
			}
		}
	}
	return
}

// AutoTestElements is the subset verified by "--test auto".
var AutoTestElements = []string{
	"buffa-christiansen", "direct-serendipity", "dual", "hellan-herrmann-johnson",
	"hsieh-clough-tocher", "lagrange", "nedelec1", "raviart-thomas", "regge",
	"serendipity", "taylor-hood", "vector-bubble-enriched-Lagrange", "enriched-galerkin",
	"bernardi-raugel",
}
