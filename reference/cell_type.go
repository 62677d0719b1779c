package reference

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnsupportedCellType = errors.New("unsupported cell type")

// CellType represents the reference cells elements are defined on
type CellType uint8

const (
	Unknown CellType = iota
	// 0D
	Point
	// 1D
	Interval
	// 2D
	Triangle
	Quadrilateral
	DualPolygon
	// 3D
	Tetrahedron
	Hexahedron
	Prism
	Pyramid
)

var CellTypeNameMap = map[string]CellType{
	"point":         Point,
	"interval":      Interval,
	"triangle":      Triangle,
	"quadrilateral": Quadrilateral,
	"dual polygon":  DualPolygon,
	"tetrahedron":   Tetrahedron,
	"hexahedron":    Hexahedron,
	"prism":         Prism,
	"pyramid":       Pyramid,
}

func (c CellType) String() string {
	names := []string{
		"unknown",
		"point",
		"interval",
		"triangle", "quadrilateral", "dual polygon",
		"tetrahedron", "hexahedron", "prism", "pyramid",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "invalid"
}

// GetDimension returns the topological dimension of the cell
func (c CellType) GetDimension() int {
	switch c {
	case Point:
		return 0
	case Interval:
		return 1
	case Triangle, Quadrilateral, DualPolygon:
		return 2
	case Tetrahedron, Hexahedron, Prism, Pyramid:
		return 3
	default:
		return -1
	}
}

// GetNumVertices returns the vertex count, which for a dual polygon is its
// number of sides and must be supplied by the caller.
func (c CellType) GetNumVertices() int {
	switch c {
	case Point:
		return 1
	case Interval:
		return 2
	case Triangle:
		return 3
	case Quadrilateral, Tetrahedron:
		return 4
	case Pyramid:
		return 5
	case Prism:
		return 6
	case Hexahedron:
		return 8
	default:
		return -1
	}
}

// ParseCellType accepts the DefElement cell names, including "dual polygon(n)".
func ParseCellType(name string) (ct CellType, sides int, err error) {
	var (
		ok bool
	)
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "dual polygon") {
		rest := strings.TrimPrefix(name, "dual polygon")
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			err = fmt.Errorf("%w: %q", ErrUnsupportedCellType, name)
			return
		}
		if sides, err = strconv.Atoi(rest[1 : len(rest)-1]); err != nil || sides < 3 {
			err = fmt.Errorf("%w: %q", ErrUnsupportedCellType, name)
			return
		}
		ct = DualPolygon
		return
	}
	if ct, ok = CellTypeNameMap[name]; !ok || ct == DualPolygon {
		err = fmt.Errorf("%w: %q", ErrUnsupportedCellType, name)
	}
	return
}

// subEntityType infers the type of a sub-entity from its dimension and vertex count
func subEntityType(dim, nv int) CellType {
	switch dim {
	case 0:
		return Point
	case 1:
		return Interval
	case 2:
		switch nv {
		case 3:
			return Triangle
		case 4:
			return Quadrilateral
		default:
			return DualPolygon
		}
	case 3:
		switch nv {
		case 4:
			return Tetrahedron
		case 5:
			return Pyramid
		case 6:
			return Prism
		case 8:
			return Hexahedron
		}
	}
	return Unknown
}
