package grid

// Change is one touched cell produced by a mutation.
type Change struct {
	Ri, Ci int
	Cell   *Cell
}

// Patch is the set of rows and cells a mutation touched, keyed by row. It
// is what callers ship to whoever mirrors the grid.
type Patch struct {
	Rows map[int]*PatchRow `json:"rows"`
	Len  *int              `json:"length,omitempty"`
}

// PatchRow carries the changed cells of one row.
type PatchRow struct {
	Height *int         `json:"height,omitempty"`
	Cells  map[int]Cell `json:"cells"`
}

// NewPatch returns an empty patch ready for writes.
func NewPatch() Patch {
	return Patch{Rows: map[int]*PatchRow{}}
}

func (p *Patch) row(ri int) *PatchRow {
	if p.Rows == nil {
		p.Rows = map[int]*PatchRow{}
	}
	pr, ok := p.Rows[ri]
	if !ok {
		pr = &PatchRow{Cells: map[int]Cell{}}
		p.Rows[ri] = pr
	}
	return pr
}

// Put records cell at ri, ci, replacing an earlier entry.
func (p *Patch) Put(ri, ci int, cell *Cell) {
	p.row(ri).Cells[ci] = *cell.Clone()
}

// Cell returns the recorded cell at ri, ci.
func (p Patch) Cell(ri, ci int) (Cell, bool) {
	pr, ok := p.Rows[ri]
	if !ok {
		return Cell{}, false
	}
	c, ok := pr.Cells[ci]
	return c, ok
}

func (p *Patch) SetLen(n int) {
	p.Len = &n
}

func (p Patch) IsEmpty() bool {
	return len(p.Rows) == 0 && p.Len == nil
}

// Merge folds a later patch into p. Entries in other win.
func (p *Patch) Merge(other Patch) {
	for ri, or := range other.Rows {
		pr := p.row(ri)
		if or.Height != nil {
			h := *or.Height
			pr.Height = &h
		}
		for ci, c := range or.Cells {
			pr.Cells[ci] = *c.Clone()
		}
	}
	if other.Len != nil {
		p.SetLen(*other.Len)
	}
}

// Reduce folds changes into a patch grouped by row. apply, when non-nil,
// runs for each change before it is recorded. A later change to the same
// cell overwrites an earlier one; a change with a nil cell only marks its
// row.
func Reduce(changes []Change, apply func(Change)) Patch {
	p := NewPatch()
	for _, ch := range changes {
		if apply != nil {
			apply(ch)
		}
		pr := p.row(ch.Ri)
		if ch.Cell != nil {
			pr.Cells[ch.Ci] = *ch.Cell.Clone()
		}
	}
	return p
}
