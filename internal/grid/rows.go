package grid

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Rows is the sparse two-level store: row index -> Row -> column index ->
// Cell. A missing row or cell means an empty, default-styled cell.
type Rows struct {
	Len           int // logical row count
	DefaultHeight int
	rows          map[int]*Row
}

func NewRows(length, defaultHeight int) *Rows {
	return &Rows{Len: length, DefaultHeight: defaultHeight, rows: map[int]*Row{}}
}

// Get returns the row at ri or nil. It never allocates.
func (r *Rows) Get(ri int) *Row {
	return r.rows[ri]
}

// GetOrNew returns the row at ri, creating an empty one if needed.
func (r *Rows) GetOrNew(ri int) *Row {
	row, ok := r.rows[ri]
	if !ok {
		row = newRow()
		r.rows[ri] = row
	}
	return row
}

// GetCell returns the cell at ri, ci or nil when nothing is stored there.
// Callers treat nil as an empty cell.
func (r *Rows) GetCell(ri, ci int) *Cell {
	row := r.rows[ri]
	if row == nil || row.Cells == nil {
		return nil
	}
	return row.Cells[ci]
}

func (r *Rows) GetCellOrNew(ri, ci int) *Cell {
	row := r.GetOrNew(ri)
	c, ok := row.Cells[ci]
	if !ok || c == nil {
		c = &Cell{}
		row.Cells[ci] = c
	}
	return c
}

// CellMerge returns [rowSpan, colSpan] of the cell, [0, 0] when unmerged.
func (r *Rows) CellMerge(ri, ci int) [2]int {
	c := r.GetCell(ri, ci)
	if c == nil || len(c.Merge) < 2 {
		return [2]int{0, 0}
	}
	return [2]int{c.Merge[0], c.Merge[1]}
}

// SetCell writes cell at ri, ci. ModeAll replaces the record, ModeText
// copies only the text and ModeFormat only the style and, when present, the
// merge span.
func (r *Rows) SetCell(ri, ci int, cell *Cell, what Mode) {
	row := r.GetOrNew(ri)
	switch what {
	case ModeText:
		r.GetCellOrNew(ri, ci).Text = cell.Text
	case ModeFormat:
		c := r.GetCellOrNew(ri, ci)
		c.Style = cell.Clone().Style
		if cell.Merge != nil {
			c.Merge = slices.Clone(cell.Merge)
		}
	default:
		row.Cells[ci] = cell
	}
}

// SetCellText sets the text of a cell. It is a no-op reporting false when
// the cell is not editable.
func (r *Rows) SetCellText(ri, ci int, text string) (Patch, bool) {
	c := r.GetCellOrNew(ri, ci)
	if !c.IsEditable() {
		return Patch{}, false
	}
	c.Text = text
	return Reduce([]Change{{Ri: ri, Ci: ci, Cell: c}}, nil), true
}

// Height is 0 for hidden rows, the row override if set, else the default.
func (r *Rows) Height(ri int) int {
	if r.IsHidden(ri) {
		return 0
	}
	if row := r.Get(ri); row != nil && row.Height > 0 {
		return row.Height
	}
	return r.DefaultHeight
}

func (r *Rows) SetHeight(ri, h int) Patch {
	r.GetOrNew(ri).Height = h
	p := NewPatch()
	p.row(ri).Height = Int(h)
	return p
}

func (r *Rows) IsHidden(ri int) bool {
	row := r.Get(ri)
	return row != nil && row.Hide
}

func (r *Rows) SetHide(ri int, hide bool) {
	r.GetOrNew(ri).Hide = hide
}

// Unhide reveals the run of hidden rows directly above idx, stopping at the
// first visible row or at the top of the sheet.
func (r *Rows) Unhide(idx int) {
	for ri := idx - 1; ri >= 0; ri-- {
		if !r.IsHidden(ri) {
			return
		}
		r.SetHide(ri, false)
	}
}

func (r *Rows) SetStyle(ri, style int) {
	r.GetOrNew(ri).Style = Int(style)
}

// SumHeight adds the heights of rows in [min, max), skipping except.
func (r *Rows) SumHeight(min, max int, except map[int]bool) int {
	total := 0
	for ri := min; ri < max; ri++ {
		if except[ri] {
			continue
		}
		total += r.Height(ri)
	}
	return total
}

func (r *Rows) TotalHeight() int {
	return r.SumHeight(0, r.Len, nil)
}

// MaxCell returns the last populated row and the last populated column of
// that row.
func (r *Rows) MaxCell() (int, int) {
	if len(r.rows) == 0 {
		return 0, 0
	}
	ri := slices.Max(slices.Collect(maps.Keys(r.rows)))
	cells := r.rows[ri].Cells
	if len(cells) == 0 {
		return ri, 0
	}
	return ri, slices.Max(slices.Collect(maps.Keys(cells)))
}

// Each visits rows in ascending order.
func (r *Rows) Each(fn func(ri int, row *Row)) {
	for _, ri := range slices.Sorted(maps.Keys(r.rows)) {
		fn(ri, r.rows[ri])
	}
}

// EachCells visits the cells of row ri in ascending column order.
func (r *Rows) EachCells(ri int, fn func(ci int, cell *Cell)) {
	row := r.rows[ri]
	if row == nil {
		return
	}
	for _, ci := range slices.Sorted(maps.Keys(row.Cells)) {
		fn(ci, row.Cells[ci])
	}
}

// Data is the persisted form of a grid: {"length": n, "<row>": Row, ...}.
type Data struct {
	Len  int
	Rows map[int]*Row
}

// Data returns a deep copy of the grid contents.
func (r *Rows) Data() Data {
	d := Data{Len: r.Len, Rows: make(map[int]*Row, len(r.rows))}
	for ri, row := range r.rows {
		d.Rows[ri] = row.Clone()
	}
	return d
}

// SetData replaces the grid contents. A zero length keeps the current one.
func (r *Rows) SetData(d Data) {
	if d.Len > 0 {
		r.Len = d.Len
	}
	r.rows = make(map[int]*Row, len(d.Rows))
	for ri, row := range d.Rows {
		if row.Cells == nil {
			row.Cells = map[int]*Cell{}
		}
		r.rows[ri] = row
	}
}

func (d Data) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Rows)+1)
	m["length"] = d.Len
	for ri, row := range d.Rows {
		m[strconv.Itoa(ri)] = row
	}
	return json.Marshal(m)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Len = 0
	d.Rows = make(map[int]*Row, len(raw))
	for k, v := range raw {
		if k == "length" {
			if err := json.Unmarshal(v, &d.Len); err != nil {
				return fmt.Errorf("length: %w", err)
			}
			continue
		}
		ri, err := strconv.Atoi(k)
		if err != nil || ri < 0 {
			return fmt.Errorf("row key %q is not a row index", k)
		}
		row := newRow()
		if err := json.Unmarshal(v, row); err != nil {
			return fmt.Errorf("row %d: %w", ri, err)
		}
		if row.Cells == nil {
			row.Cells = map[int]*Cell{}
		}
		d.Rows[ri] = row
	}
	return nil
}
