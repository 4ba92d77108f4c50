package storage

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"sheetgrid/internal/grid"
	"sheetgrid/internal/ref"
)

// pointsPerLine converts between terminal row heights and Excel row
// heights in points. It is also Excel's default row height.
const pointsPerLine = 15.0

// SaveXLSX writes r to one worksheet. An empty sheet name keeps the
// workbook's default first sheet.
func SaveXLSX(r *grid.Rows, filename, sheet string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	var werr error
	r.Each(func(ri int, row *grid.Row) {
		if werr != nil {
			return
		}
		if row.Height > 0 {
			werr = f.SetRowHeight(sheet, ri+1, float64(row.Height)*pointsPerLine)
		}
		if werr == nil && row.Hide {
			werr = f.SetRowVisible(sheet, ri+1, false)
		}
		r.EachCells(ri, func(ci int, c *grid.Cell) {
			if werr == nil {
				werr = writeCell(f, sheet, ri, ci, c)
			}
		})
	})
	if werr != nil {
		return fmt.Errorf("write %s: %w", filename, werr)
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

func writeCell(f *excelize.File, sheet string, ri, ci int, c *grid.Cell) error {
	name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
	if err != nil {
		return err
	}
	switch {
	case c.IsFormula():
		err = f.SetCellFormula(sheet, name, c.Text[1:])
	case c.Text == "":
	default:
		if v, perr := strconv.ParseFloat(c.Text, 64); perr == nil {
			err = f.SetCellValue(sheet, name, v)
		} else {
			err = f.SetCellStr(sheet, name, c.Text)
		}
	}
	if err != nil {
		return err
	}
	// merge holds the extra rows and columns the cell spans
	if len(c.Merge) == 2 && (c.Merge[0] > 0 || c.Merge[1] > 0) {
		end, err := excelize.CoordinatesToCellName(ci+1+c.Merge[1], ri+1+c.Merge[0])
		if err != nil {
			return err
		}
		return f.MergeCell(sheet, name, end)
	}
	return nil
}

// LoadXLSX reads one worksheet, the first when sheet is empty. Formulas come
// back with their leading '='.
func LoadXLSX(filename, sheet string) (grid.Data, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return grid.Data{}, fmt.Errorf("read %s: %w", filename, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := readRows(f, sheet)
	if err != nil {
		return grid.Data{}, fmt.Errorf("read %s: %w", filename, err)
	}
	d := grid.Data{Len: len(rows), Rows: map[int]*grid.Row{}}
	rowOf := func(ri int) *grid.Row {
		row, ok := d.Rows[ri]
		if !ok {
			row = &grid.Row{Cells: map[int]*grid.Cell{}}
			d.Rows[ri] = row
		}
		return row
	}

	// values are trimmed at the last non-empty one, but a formula without
	// a cached result reads as empty too
	width := 0
	for _, values := range rows {
		width = max(width, len(values))
	}
	for ri, values := range rows {
		for ci := range width {
			name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return grid.Data{}, err
			}
			var text string
			if ci < len(values) {
				text = values[ci]
			}
			if formula, err := f.GetCellFormula(sheet, name); err == nil && formula != "" {
				text = "=" + formula
			}
			if text != "" {
				rowOf(ri).Cells[ci] = &grid.Cell{Text: text}
			}
		}
		if h, err := f.GetRowHeight(sheet, ri+1); err == nil && h != pointsPerLine {
			rowOf(ri).Height = max(1, int(math.Round(h/pointsPerLine)))
		}
		if visible, err := f.GetRowVisible(sheet, ri+1); err == nil && !visible {
			rowOf(ri).Hide = true
		}
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return grid.Data{}, fmt.Errorf("read merges of %s: %w", filename, err)
	}
	for _, m := range merges {
		sri, sci, ok1 := ref.ParseCellRef(m.GetStartAxis())
		eri, eci, ok2 := ref.ParseCellRef(m.GetEndAxis())
		if !ok1 || !ok2 {
			log.WithFields(logrus.Fields{"file": filename, "start": m.GetStartAxis(), "end": m.GetEndAxis()}).Warn("skipping merge")
			continue
		}
		row := rowOf(sri)
		c, ok := row.Cells[sci]
		if !ok {
			c = &grid.Cell{}
			row.Cells[sci] = c
		}
		c.Merge = []int{eri - sri, eci - sci}
	}
	return d, nil
}

// readRows returns the raw values of every row element, including trailing
// rows that hold only formulas or formatting.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for it.Next() {
		values, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			it.Close()
			return nil, err
		}
		out = append(out, values)
	}
	if err := it.Error(); err != nil {
		it.Close()
		return nil, err
	}
	return out, it.Close()
}
