package grid

import (
	"fmt"
	"iter"
	"strings"

	"sheetgrid/internal/ref"
)

// CellRange is a rectangle of cells, inclusive on both ends.
type CellRange struct {
	Sri, Sci int // start row, start column
	Eri, Eci int // end row, end column
}

// NewCellRange builds a range from two corners in any order.
func NewCellRange(sri, sci, eri, eci int) CellRange {
	if sri > eri {
		sri, eri = eri, sri
	}
	if sci > eci {
		sci, eci = eci, sci
	}
	return CellRange{Sri: sri, Sci: sci, Eri: eri, Eci: eci}
}

// Single is the one-cell range at ri, ci.
func Single(ri, ci int) CellRange {
	return CellRange{Sri: ri, Sci: ci, Eri: ri, Eci: ci}
}

// ParseCellRange reads "A1", "B2:C9" or "$C$9:b2".
func ParseCellRange(s string) (CellRange, error) {
	start, end, found := strings.Cut(strings.TrimSpace(s), ":")
	r1, c1, ok := ref.ParseCellRef(start)
	if !ok {
		return CellRange{}, fmt.Errorf("invalid cell reference %q", start)
	}
	if !found {
		return Single(r1, c1), nil
	}
	r2, c2, ok := ref.ParseCellRef(end)
	if !ok {
		return CellRange{}, fmt.Errorf("invalid cell reference %q", end)
	}
	return NewCellRange(r1, c1, r2, c2), nil
}

// Size returns the number of rows and columns covered.
func (cr CellRange) Size() (int, int) {
	return cr.Eri - cr.Sri + 1, cr.Eci - cr.Sci + 1
}

func (cr CellRange) Multiple() bool {
	rn, cn := cr.Size()
	return rn > 1 || cn > 1
}

func (cr CellRange) Contains(ri, ci int) bool {
	return ri >= cr.Sri && ri <= cr.Eri && ci >= cr.Sci && ci <= cr.Eci
}

// Each calls fn for every cell in row-major order.
func (cr CellRange) Each(fn func(ri, ci int)) {
	for ri := cr.Sri; ri <= cr.Eri; ri++ {
		for ci := cr.Sci; ci <= cr.Eci; ci++ {
			fn(ri, ci)
		}
	}
}

// Cells iterates row-major over (row, column) pairs.
func (cr CellRange) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for ri := cr.Sri; ri <= cr.Eri; ri++ {
			for ci := cr.Sci; ci <= cr.Eci; ci++ {
				if !yield(ri, ci) {
					return
				}
			}
		}
	}
}

func (cr CellRange) String() string {
	start := ref.ColRowToName(cr.Sci, cr.Sri)
	if !cr.Multiple() {
		return start
	}
	return start + ":" + ref.ColRowToName(cr.Eci, cr.Eri)
}
