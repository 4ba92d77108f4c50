package grid

import (
	"strconv"

	"sheetgrid/internal/calc"
	"sheetgrid/internal/ref"
)

// Insert shifts rows at and below sri down by n. Formulas in the moved rows
// follow the rows they point at. The returned patch carries empty marker
// cells on row sri for every column populated in the first moved row.
func (r *Rows) Insert(sri, n int) Patch {
	var changes []Change
	moved := ref.Rows(func(row int) bool { return row >= sri })
	next := make(map[int]*Row, len(r.rows))
	r.Each(func(ri int, row *Row) {
		nri := ri
		if ri >= sri {
			nri += n
			r.EachCells(ri, func(ci int, cell *Cell) {
				if cell.IsFormula() {
					cell.Text = ref.Rewrite(cell.Text, 0, n, moved)
				}
				changes = append(changes, Change{Ri: nri, Ci: ci, Cell: cell})
			})
		}
		next[nri] = row
	})
	r.rows = next
	r.Len += n

	r.EachCells(sri+n, func(ci int, _ *Cell) {
		changes = append(changes, Change{Ri: sri, Ci: ci, Cell: &Cell{}})
	})
	p := Reduce(changes, nil)
	p.SetLen(r.Len)
	return p
}

// Delete drops rows sri..eri and shifts the rows below up.
func (r *Rows) Delete(sri, eri int) Patch {
	var changes []Change
	n := eri - sri + 1
	moved := ref.Rows(func(row int) bool { return row > eri })
	next := make(map[int]*Row, len(r.rows))
	r.Each(func(ri int, row *Row) {
		switch {
		case ri < sri:
			next[ri] = row
		case ri > eri:
			next[ri-n] = row
			r.EachCells(ri, func(ci int, cell *Cell) {
				if cell.IsFormula() {
					cell.Text = ref.Rewrite(cell.Text, 0, -n, moved)
				}
				changes = append(changes, Change{Ri: ri - n, Ci: ci, Cell: cell})
			})
		}
	})
	r.rows = next
	r.Len -= n

	p := Reduce(changes, nil)
	p.SetLen(r.Len)
	return p
}

// InsertColumn shifts columns at and right of sci by n in every row.
func (r *Rows) InsertColumn(sci, n int) Patch {
	var changes []Change
	moved := ref.Cols(func(col int) bool { return col >= sci })
	r.Each(func(ri int, row *Row) {
		cells := make(map[int]*Cell, len(row.Cells))
		r.EachCells(ri, func(ci int, cell *Cell) {
			nci := ci
			if ci >= sci {
				nci += n
				if cell.IsFormula() {
					cell.Text = ref.Rewrite(cell.Text, n, 0, moved)
				}
				changes = append(changes, Change{Ri: ri, Ci: nci, Cell: cell})
			}
			cells[nci] = cell
		})
		row.Cells = cells
		changes = append(changes, Change{Ri: ri, Ci: sci, Cell: &Cell{}})
	})
	return Reduce(changes, nil)
}

// DeleteColumn drops columns sci..eci and shifts the columns to the right.
func (r *Rows) DeleteColumn(sci, eci int) Patch {
	var changes []Change
	n := eci - sci + 1
	moved := ref.Cols(func(col int) bool { return col > eci })
	r.Each(func(ri int, row *Row) {
		cells := make(map[int]*Cell, len(row.Cells))
		r.EachCells(ri, func(ci int, cell *Cell) {
			switch {
			case ci < sci:
				cells[ci] = cell
			case ci > eci:
				cells[ci-n] = cell
				if cell.IsFormula() {
					cell.Text = ref.Rewrite(cell.Text, -n, 0, moved)
				}
				changes = append(changes, Change{Ri: ri, Ci: ci - n, Cell: cell})
			}
		})
		row.Cells = cells
	})
	return Reduce(changes, nil)
}

// CopyPaste tiles src over dst, repeating the source block with a step of
// its own size. what selects which part of each cell is written.
//
// With autofill, numeric text suffixes count up along the fill and formula
// references move along the fill axis. Without it, formulas are translated
// by the copy offset, or evaluated to plain text when what is ModeText;
// sheets resolves qualified references during that evaluation.
func (r *Rows) CopyPaste(src, dst CellRange, what Mode, autofill bool, sheets []Sheet) Patch {
	rn, cn := src.Size()
	drn, dcn := dst.Size()
	// filling up or left counts from the far end of dst
	forward, dn := true, 0
	if dst.Eri < src.Sri || dst.Eci < src.Sci {
		forward = false
		if dst.Eri < src.Sri {
			dn = drn
		} else {
			dn = dcn
		}
	}
	resolve := r.resolver(sheets)

	var changes []Change
	for i := src.Sri; i <= src.Eri; i++ {
		row := r.rows[i]
		if row == nil {
			continue
		}
		for j := src.Sci; j <= src.Eci; j++ {
			cell := row.Cells[j]
			if cell == nil {
				continue
			}
			for ii := dst.Sri; ii <= dst.Eri; ii += rn {
				for jj := dst.Sci; jj <= dst.Eci; jj += cn {
					nri := ii + (i - src.Sri)
					nci := jj + (j - src.Sci)
					ncell := cell.Clone()
					switch {
					case autofill && ncell.Text != "":
						n := (jj - dst.Sci) + (ii - dst.Sri) + 2
						if !forward {
							n -= dn + 1
						}
						ncell.Text = fillText(ncell.Text, n-1, src, dst)
					case !autofill && ncell.IsFormula():
						if what == ModeText {
							ncell.Text = calc.Render(ncell.Text, resolve)
						} else {
							ncell.Text = ref.Rewrite(ncell.Text, nci-j, nri-i, nil)
						}
					}
					changes = append(changes, Change{Ri: nri, Ci: nci, Cell: ncell})
				}
			}
		}
	}
	return Reduce(changes, func(ch Change) {
		r.SetCell(ch.Ri, ch.Ci, ch.Cell, what)
	})
}

// fillText advances text by step fill positions. Formulas move along the
// fill axis: columns when src and dst start on the same row, rows
// otherwise. Plain text has its trailing number increased, but only for a
// single source cell or a one-row (one-column) source filled across rows
// (columns).
func fillText(text string, step int, src, dst CellRange) string {
	if ref.IsFormula(text) {
		if src.Sri == dst.Sri {
			return ref.Rewrite(text, step, 0, nil)
		}
		return ref.Rewrite(text, 0, step, nil)
	}
	rn, cn := src.Size()
	series := (rn <= 1 && cn > 1 && (dst.Sri > src.Eri || dst.Eri < src.Sri)) ||
		(cn <= 1 && rn > 1 && (dst.Sci > src.Eci || dst.Eci < src.Sci)) ||
		(rn <= 1 && cn <= 1)
	if !series {
		return text
	}
	i := len(text)
	for i > 0 && (isDigit(text[i-1]) || text[i-1] == '.') {
		i--
	}
	if i == len(text) {
		return text
	}
	v, err := strconv.ParseFloat(text[i:], 64)
	if err != nil {
		return text
	}
	return text[:i] + strconv.FormatFloat(v+float64(step), 'f', -1, 64)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// CutPaste moves the src block so that its top left corner lands on dst's.
// Formula text moves verbatim. Vacated cells are left as empty records and
// both the source and the destination block are reported.
func (r *Rows) CutPaste(src, dst CellRange) Patch {
	rn, cn := src.Size()
	dest := CellRange{Sri: dst.Sri, Sci: dst.Sci, Eri: dst.Sri + rn - 1, Eci: dst.Sci + cn - 1}

	type move struct {
		ri, ci int
		cell   *Cell
	}
	var moves []move
	for ri, ci := range src.Cells() {
		cell := r.GetCell(ri, ci)
		if cell == nil {
			cell = &Cell{}
		}
		moves = append(moves, move{ri: dst.Sri + ri - src.Sri, ci: dst.Sci + ci - src.Sci, cell: cell})
		r.GetOrNew(ri).Cells[ci] = &Cell{}
	}
	for _, m := range moves {
		r.GetOrNew(m.ri).Cells[m.ci] = m.cell
	}

	var changes []Change
	for ri, ci := range src.Cells() {
		changes = append(changes, Change{Ri: ri, Ci: ci, Cell: r.GetCell(ri, ci)})
	}
	for ri, ci := range dest.Cells() {
		changes = append(changes, Change{Ri: ri, Ci: ci, Cell: r.GetCellOrNew(ri, ci)})
	}
	return Reduce(changes, nil)
}

// Paste writes a block of text row by row starting at dst's top left
// corner. Cells that are not editable keep their text.
func (r *Rows) Paste(src [][]string, dst CellRange) Patch {
	if len(src) == 0 {
		return Patch{}
	}
	var changes []Change
	for i, line := range src {
		for j, text := range line {
			ri, ci := dst.Sri+i, dst.Sci+j
			r.SetCellText(ri, ci, text)
			changes = append(changes, Change{Ri: ri, Ci: ci, Cell: r.GetCell(ri, ci)})
		}
	}
	return Reduce(changes, nil)
}

// DeleteCells clears what from every cell of cr. The patch holds each
// cell's state after the deletion: an empty record for removed cells and
// the untouched cell where editing is switched off. Cells that never
// existed only mark their row.
func (r *Rows) DeleteCells(cr CellRange, what Mode) Patch {
	var changes []Change
	for ri, ci := range cr.Cells() {
		if r.GetCell(ri, ci) == nil {
			changes = append(changes, Change{Ri: ri, Ci: ci})
			continue
		}
		r.DeleteCell(ri, ci, what)
		cell := r.GetCell(ri, ci)
		if cell == nil {
			cell = &Cell{}
		}
		changes = append(changes, Change{Ri: ri, Ci: ci, Cell: cell})
	}
	return Reduce(changes, nil)
}

// DeleteCell clears what from one cell: ModeAll removes it, ModeText drops
// text and value, ModeFormat drops style and merge, ModeMerge only the
// merge. Non-editable cells are left alone.
func (r *Rows) DeleteCell(ri, ci int, what Mode) {
	row := r.Get(ri)
	if row == nil {
		return
	}
	cell := row.Cells[ci]
	if cell == nil || !cell.IsEditable() {
		return
	}
	switch what {
	case ModeAll:
		delete(row.Cells, ci)
	case ModeText:
		cell.Text = ""
		cell.Value = ""
	case ModeFormat:
		cell.Style = nil
		cell.Merge = nil
	case ModeMerge:
		cell.Merge = nil
	}
}
