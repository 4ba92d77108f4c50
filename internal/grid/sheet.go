package grid

import "sheetgrid/internal/calc"

// Sheet is another sheet of the workbook that formulas may reference by
// name, as in Sheet2!A1.
type Sheet interface {
	Name() string
	CellTextOrDefault(ri, ci int) string
}

// NamedSheet exposes a grid as a Sheet.
type NamedSheet struct {
	name string
	rows *Rows
}

func NewNamedSheet(name string, rows *Rows) *NamedSheet {
	return &NamedSheet{name: name, rows: rows}
}

func (s *NamedSheet) Name() string { return s.name }

func (s *NamedSheet) Rows() *Rows { return s.rows }

// CellTextOrDefault returns the raw text at ri, ci, or "" for an empty cell.
func (s *NamedSheet) CellTextOrDefault(ri, ci int) string {
	if c := s.rows.GetCell(ri, ci); c != nil {
		return c.Text
	}
	return ""
}

// resolver looks cells up in r for unqualified references and in sheets
// for qualified ones. An unknown sheet name is reported as not found.
func (r *Rows) resolver(sheets []Sheet) calc.Resolver {
	return func(name string, ri, ci int) (string, bool) {
		if name == "" {
			if c := r.GetCell(ri, ci); c != nil {
				return c.Text, true
			}
			return "", true
		}
		for _, s := range sheets {
			if s.Name() == name {
				return s.CellTextOrDefault(ri, ci), true
			}
		}
		return "", false
	}
}

// Render returns what the cell displays: its text, or the evaluated result
// when the text is a formula.
func (r *Rows) Render(ri, ci int, sheets []Sheet) string {
	c := r.GetCell(ri, ci)
	if c == nil {
		return ""
	}
	if !c.IsFormula() {
		return c.Text
	}
	return calc.RenderCell(ri, ci, r.resolver(sheets))
}
