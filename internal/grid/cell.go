// Package grid stores sheet contents sparsely and applies structural edits
// (row and column insert/delete, copy, cut, paste, fill) while keeping the
// references inside formulas pointing at the same data.
package grid

import (
	"slices"

	"sheetgrid/internal/ref"
)

// Mode selects which part of a cell an operation touches.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeText   Mode = "text"
	ModeFormat Mode = "format"
	ModeMerge  Mode = "merge" // deletion only
)

// Cell represents a single cell content.
type Cell struct {
	Text     string `json:"text,omitempty"`
	Value    string `json:"value,omitempty"`
	Style    *int   `json:"style,omitempty"`
	Merge    []int  `json:"merge,omitempty"` // [rowSpan, colSpan]
	Editable *bool  `json:"editable,omitempty"`
}

// Clone returns a deep copy of c.
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	n := *c
	if c.Style != nil {
		s := *c.Style
		n.Style = &s
	}
	if c.Editable != nil {
		e := *c.Editable
		n.Editable = &e
	}
	n.Merge = slices.Clone(c.Merge)
	return &n
}

func (c *Cell) IsFormula() bool {
	return c != nil && ref.IsFormula(c.Text)
}

// IsEditable is false only when editing was explicitly switched off.
func (c *Cell) IsEditable() bool {
	return c == nil || c.Editable == nil || *c.Editable
}

// Row holds per-row overrides and the populated cells of that row.
type Row struct {
	Height int           `json:"height,omitempty"`
	Hide   bool          `json:"hide,omitempty"`
	Style  *int          `json:"style,omitempty"`
	Cells  map[int]*Cell `json:"cells"`
}

func newRow() *Row {
	return &Row{Cells: map[int]*Cell{}}
}

// Clone returns a deep copy of r.
func (r *Row) Clone() *Row {
	n := &Row{Height: r.Height, Hide: r.Hide, Cells: make(map[int]*Cell, len(r.Cells))}
	if r.Style != nil {
		s := *r.Style
		n.Style = &s
	}
	for ci, c := range r.Cells {
		n.Cells[ci] = c.Clone()
	}
	return n
}

// Int and Bool return pointers for the optional cell attributes.
func Int(v int) *int    { return &v }
func Bool(v bool) *bool { return &v }
