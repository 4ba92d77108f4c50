// Package storage reads and writes grids as CSV, JSON documents and XLSX
// workbooks.
package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"sheetgrid/internal/grid"
)

// Format names a file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown file format")

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used for load/save diagnostics.
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// ParseFormat accepts "csv", "json" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case CSV, JSON, XLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatOf picks the format from the file extension.
func FormatOf(filename string) (Format, error) {
	return ParseFormat(filepath.Ext(filename))
}

// Save writes r to filename in format f.
func Save(r *grid.Rows, filename string, f Format) error {
	var err error
	switch f {
	case CSV:
		err = SaveCSV(r, filename)
	case JSON:
		err = SaveJSON(r, filename)
	case XLSX:
		err = SaveXLSX(r, filename, "")
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": filename, "format": f, "rows": r.Len}).Info("saved")
	return nil
}

// Load reads filename in format f.
func Load(filename string, f Format) (grid.Data, error) {
	var (
		d   grid.Data
		err error
	)
	switch f {
	case CSV:
		d, err = LoadCSV(filename)
	case JSON:
		d, err = LoadJSON(filename)
	case XLSX:
		d, err = LoadXLSX(filename, "")
	default:
		return grid.Data{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return grid.Data{}, err
	}
	log.WithFields(logrus.Fields{"file": filename, "format": f, "rows": len(d.Rows)}).Info("loaded")
	return d, nil
}

// bounds returns the last populated row and column over the whole grid,
// -1, -1 when it is empty.
func bounds(r *grid.Rows) (int, int) {
	maxR, maxC := -1, -1
	r.Each(func(ri int, row *grid.Row) {
		r.EachCells(ri, func(ci int, c *grid.Cell) {
			if c.Text == "" {
				return
			}
			maxR = max(maxR, ri)
			maxC = max(maxC, ci)
		})
	})
	return maxR, maxC
}

// SaveCSV writes the raw text of every cell; formulas are kept as typed.
func SaveCSV(r *grid.Rows, filename string) error {
	maxR, maxC := bounds(r)
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()
	if maxR < 0 {
		return nil
	}
	out := make([][]string, maxR+1)
	for ri := range out {
		row := make([]string, maxC+1)
		for ci := range row {
			if c := r.GetCell(ri, ci); c != nil {
				row[ci] = c.Text
			}
		}
		out[ri] = row
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return f.Close()
}

// ReadCSV returns the records of a CSV file. Records may differ in length.
func ReadCSV(filename string) ([][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	defer f.Close()
	cr := csv.NewReader(bufio.NewReader(f))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return records, nil
}

// LoadCSV reads a CSV file; empty fields leave no cell behind. Len is the
// number of records.
func LoadCSV(filename string) (grid.Data, error) {
	records, err := ReadCSV(filename)
	if err != nil {
		return grid.Data{}, err
	}
	d := grid.Data{Len: len(records), Rows: map[int]*grid.Row{}}
	for ri, rec := range records {
		for ci, val := range rec {
			if val == "" {
				continue
			}
			row, ok := d.Rows[ri]
			if !ok {
				row = &grid.Row{Cells: map[int]*grid.Cell{}}
				d.Rows[ri] = row
			}
			row.Cells[ci] = &grid.Cell{Text: val}
		}
	}
	return d, nil
}
