package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"sheetgrid/internal/grid"
	"sheetgrid/internal/storage"
)

var errUsage = errors.New("usage")

// ExecuteCommand runs one ':' command line. Failures are shown in the status
// line and logged.
func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	a.Status = ""
	if err := a.execute(parts[0], parts[1:]); err != nil {
		if errors.Is(err, errUsage) {
			a.Status = err.Error()
			return
		}
		a.fail(err)
		return
	}
	a.log.WithFields(logrus.Fields{"cmd": parts[0], "args": parts[1:]}).Debug("command")
}

func (a *App) execute(name string, args []string) error {
	switch name {
	case "q", "quit":
		a.Quit = true
	case "w":
		return a.write(args)
	case "o":
		return a.open(args)
	case "cw":
		v, err := intArg(args, 0, -1)
		if err != nil || v < 4 {
			return usage("cw WIDTH (at least 4)")
		}
		for i := range a.ColWidths {
			a.ColWidths[i] = v
		}
		a.DefaultWidth = v
	case "rh":
		v, err := intArg(args, 0, -1)
		if err != nil || v < 1 {
			return usage("rh HEIGHT")
		}
		a.Rows.DefaultHeight = v
	case "fill", "copy", "cut":
		return a.copyCommand(name, args)
	case "clear":
		cr, what, err := rangeAndMode(args, grid.ModeText)
		if err != nil {
			return err
		}
		a.record(a.Rows.DeleteCells(cr, what))
	case "hide", "unhide":
		ri, err := intArg(args, 0, a.CurRow+1)
		if err != nil || ri < 1 {
			return usage(name + " ROW")
		}
		if name == "hide" {
			a.Rows.SetHide(ri-1, true)
		} else {
			// reveals the hidden rows directly above ROW
			a.Rows.Unhide(ri - 1)
		}
		a.record(grid.Reduce([]grid.Change{{Ri: ri - 1}}, nil))
	case "ir", "dr", "ic", "dc":
		n, err := intArg(args, 0, 1)
		if err != nil || n < 1 {
			return usage(name + " [COUNT]")
		}
		switch name {
		case "ir":
			a.insertRows(a.CurRow, n)
		case "dr":
			a.deleteRows(a.CurRow, n)
		case "ic":
			a.insertCols(a.CurCol, n)
		case "dc":
			a.deleteCols(a.CurCol, n)
		}
	case "lock", "unlock":
		cr := a.Selection()
		if len(args) > 0 {
			var err error
			if cr, err = grid.ParseCellRange(args[0]); err != nil {
				return err
			}
		}
		p := grid.NewPatch()
		for ri, ci := range cr.Cells() {
			c := a.Rows.GetCellOrNew(ri, ci)
			c.Editable = nil
			if name == "lock" {
				c.Editable = grid.Bool(false)
			}
			p.Put(ri, ci, c)
		}
		a.record(p)
	case "sheet":
		if len(args) < 2 {
			return usage("sheet NAME FILE [FORMAT]")
		}
		return a.loadSheet(args[0], args[1], args[2:])
	case "paste":
		if len(args) < 1 {
			return usage("paste FILE")
		}
		records, err := storage.ReadCSV(args[0])
		if err != nil {
			return err
		}
		a.record(a.Rows.Paste(records, grid.Single(a.CurRow, a.CurCol)))
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

// intArg parses args[i], returning def when it is absent.
func intArg(args []string, i, def int) (int, error) {
	if i >= len(args) {
		if def < 0 {
			return 0, errUsage
		}
		return def, nil
	}
	return strconv.Atoi(args[i])
}

func parseMode(s string) (grid.Mode, error) {
	switch m := grid.Mode(strings.ToLower(s)); m {
	case grid.ModeAll, grid.ModeText, grid.ModeFormat, grid.ModeMerge:
		return m, nil
	}
	return "", usage("mode is one of all, text, format, merge")
}

func rangeAndMode(args []string, def grid.Mode) (grid.CellRange, grid.Mode, error) {
	if len(args) < 1 {
		return grid.CellRange{}, "", usage("RANGE [all|text|format|merge]")
	}
	cr, err := grid.ParseCellRange(args[0])
	if err != nil {
		return grid.CellRange{}, "", err
	}
	what := def
	if len(args) > 1 {
		if what, err = parseMode(args[1]); err != nil {
			return grid.CellRange{}, "", err
		}
	}
	return cr, what, nil
}

func (a *App) copyCommand(name string, args []string) error {
	if len(args) < 2 {
		return usage(name + " SRC DST")
	}
	src, err := grid.ParseCellRange(args[0])
	if err != nil {
		return err
	}
	dst, err := grid.ParseCellRange(args[1])
	if err != nil {
		return err
	}
	a.EnsureColExists(dst.Eci)
	switch name {
	case "cut":
		a.record(a.Rows.CutPaste(src, dst))
	case "fill":
		a.record(a.Rows.CopyPaste(src, dst, grid.ModeAll, true, a.Sheets))
	default:
		what := grid.ModeAll
		if len(args) > 2 {
			if what, err = parseMode(args[2]); err != nil {
				return err
			}
		}
		a.record(a.Rows.CopyPaste(src, dst, what, false, a.Sheets))
	}
	return nil
}

// formatArg resolves the format from an explicit argument or the file
// extension.
func formatArg(filename string, args []string) (storage.Format, error) {
	if len(args) > 0 {
		return storage.ParseFormat(args[0])
	}
	return storage.FormatOf(filename)
}

func (a *App) write(args []string) error {
	filename := a.File
	if len(args) > 0 {
		filename, args = args[0], args[1:]
	}
	if filename == "" {
		return usage("w FILE [csv|json|xlsx]")
	}
	f, err := formatArg(filename, args)
	if err != nil {
		return err
	}
	if err := storage.Save(a.Rows, filename, f); err != nil {
		return err
	}
	a.File = filename
	a.Pending = grid.NewPatch()
	a.Status = "written " + filename
	return nil
}

// Open loads filename into the grid, replacing its contents.
func (a *App) Open(filename string) error {
	return a.open([]string{filename})
}

func (a *App) open(args []string) error {
	if len(args) < 1 {
		return usage("o FILE [csv|json|xlsx]")
	}
	filename := args[0]
	f, err := formatArg(filename, args[1:])
	if err != nil {
		return err
	}
	d, err := storage.Load(filename, f)
	if err != nil {
		return err
	}
	d.Len = max(d.Len, a.MinRows)
	a.Rows.SetData(d)
	a.EnsureColExists(widest(a.Rows))

	a.File = filename
	a.Pending = grid.NewPatch()
	a.CurRow, a.CurCol = 0, 0
	a.ViewRow, a.ViewCol = 0, 0
	a.Selecting = false
	a.clip = nil
	return nil
}

func (a *App) loadSheet(name, filename string, args []string) error {
	f, err := formatArg(filename, args)
	if err != nil {
		return err
	}
	d, err := storage.Load(filename, f)
	if err != nil {
		return err
	}
	rows := grid.NewRows(d.Len, a.Rows.DefaultHeight)
	rows.SetData(d)
	sheet := grid.NewNamedSheet(name, rows)
	for i, s := range a.Sheets {
		if s.Name() == name {
			a.Sheets[i] = sheet
			return nil
		}
	}
	a.Sheets = append(a.Sheets, sheet)
	a.Status = "sheet " + name + " loaded"
	return nil
}

// widest returns the rightmost column holding a cell.
func widest(r *grid.Rows) int {
	maxC := 0
	r.Each(func(ri int, _ *grid.Row) {
		r.EachCells(ri, func(ci int, _ *grid.Cell) {
			maxC = max(maxC, ci)
		})
	})
	return maxC
}
