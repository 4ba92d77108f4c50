package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"sheetgrid/internal/config"
	"sheetgrid/internal/grid"
	"sheetgrid/internal/storage"
)

type App struct {
	// layout
	LeftGutter   int
	StatusLines  int
	DefaultWidth int
	CellPadding  int

	// grid data
	ColWidths []int
	Rows      *grid.Rows
	Sheets    []grid.Sheet // other sheets formulas may reference by name
	Pending   grid.Patch   // changes since the last save
	File      string
	MinRows   int // loaded documents keep at least this many rows

	// cursor / view
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	// selection: Anchor is the fixed corner while Selecting
	Selecting bool
	Anchor    [2]int
	clip      *clipboard

	// UI state
	Mode     string // normal | insert
	InputBuf string
	Status   string
	Quit     bool

	// editing behavior options
	EnterStartsEdit   bool
	MoveAfterEnter    bool
	SelectAllOnEdit   bool
	ReplaceOnNextRune bool
	Autosave          bool

	// UI: help popup visibility
	HelpVisible bool

	log logrus.FieldLogger
}

type clipboard struct {
	src grid.CellRange
	cut bool
}

func NewApp(cfg config.Config, log logrus.FieldLogger) *App {
	a := &App{
		LeftGutter:      5,
		StatusLines:     2,
		DefaultWidth:    cfg.ColWidth,
		CellPadding:     1,
		Rows:            grid.NewRows(cfg.Rows, cfg.RowHeight),
		Pending:         grid.NewPatch(),
		MinRows:         cfg.Rows,
		Mode:            "normal",
		EnterStartsEdit: true,
		MoveAfterEnter:  true,
		SelectAllOnEdit: true,
		Autosave:        cfg.Autosave,
		log:             log,
	}
	for i := 0; i < cfg.Cols; i++ {
		a.ColWidths = append(a.ColWidths, a.DefaultWidth)
	}
	return a
}

// Selection is the selected block, or the cursor cell when nothing is
// selected.
func (a *App) Selection() grid.CellRange {
	if !a.Selecting {
		return grid.Single(a.CurRow, a.CurCol)
	}
	return grid.NewCellRange(a.Anchor[0], a.Anchor[1], a.CurRow, a.CurCol)
}

// record folds p into the pending changes and autosaves when asked to.
func (a *App) record(p grid.Patch) {
	a.Pending.Merge(p)
	if !a.Autosave || a.File == "" {
		return
	}
	f, err := storage.FormatOf(a.File)
	if err == nil {
		err = storage.Save(a.Rows, a.File, f)
	}
	if err != nil {
		a.fail(err)
		return
	}
	a.Pending = grid.NewPatch()
}

func (a *App) fail(err error) {
	a.Status = err.Error()
	a.log.WithError(err).Warn("command failed")
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	if a.Mode == "insert" {
		a.handleInsertKey(ev)
		return
	}

	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	mod := ev.Modifiers()
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Selecting = false
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		if mod&tcell.ModCtrl != 0 {
			if h := a.Rows.Height(a.CurRow); h > 1 {
				a.record(a.Rows.SetHeight(a.CurRow, h-1))
			}
		} else {
			a.moveRow(-1)
		}
	case tcell.KeyDown:
		if mod&tcell.ModCtrl != 0 {
			a.record(a.Rows.SetHeight(a.CurRow, a.Rows.Height(a.CurRow)+1))
		} else {
			a.moveRow(1)
		}
	case tcell.KeyLeft:
		if mod&tcell.ModCtrl != 0 {
			if a.ColWidths[a.CurCol] > 4 {
				a.ColWidths[a.CurCol]--
			}
		} else if a.CurCol > 0 {
			a.CurCol--
		}
	case tcell.KeyRight:
		if mod&tcell.ModCtrl != 0 {
			a.ColWidths[a.CurCol]++
		} else {
			a.CurCol++
			a.EnsureColExists(a.CurCol)
		}
	case tcell.KeyPgUp:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow = max(0, a.ViewRow-vr)
	case tcell.KeyPgDn:
		vr, _ := a.ComputeVisible(s)
		a.ViewRow = min(a.ViewRow+vr, max(0, a.Rows.Len-1))
	case tcell.KeyHome:
		a.ViewCol = 0
		a.ViewRow = 0
	case tcell.KeyEnd:
		a.ViewCol = max(0, len(a.ColWidths)-1)
		a.ViewRow = max(0, a.Rows.Len-1)
	case tcell.KeyF2:
		a.insertRows(a.CurRow+1, 1)
	case tcell.KeyF3:
		a.insertCols(a.CurCol+1, 1)
	case tcell.KeyF4:
		a.deleteRows(a.CurRow, 1)
	case tcell.KeyF5:
		a.deleteCols(a.CurCol, 1)
	case tcell.KeyDelete:
		a.record(a.Rows.DeleteCells(a.Selection(), grid.ModeText))
		a.Selecting = false
	case tcell.KeyEnter:
		if a.EnterStartsEdit {
			a.startEdit()
		}
	case tcell.KeyRune:
		a.handleRune(s, ev.Rune())
	}
}

func (a *App) handleRune(s tcell.Screen, r rune) {
	switch r {
	case 'q':
		a.Quit = true
	case 'i':
		a.startEdit()
	case 'v':
		if a.Selecting {
			a.Selecting = false
		} else {
			a.Selecting = true
			a.Anchor = [2]int{a.CurRow, a.CurCol}
		}
	case 'y', 'x':
		a.clip = &clipboard{src: a.Selection(), cut: r == 'x'}
		a.Selecting = false
		a.Status = "yanked " + a.clip.src.String()
	case 'p':
		a.paste(grid.ModeAll)
	case 'P':
		a.paste(grid.ModeText)
	case ':':
		if command, ok := a.PopupInput(s, ":", ""); ok {
			a.ExecuteCommand(command)
		}
	case '=':
		if value, ok := a.PopupInput(s, "", "="); ok {
			a.setText(value)
		}
	case '?':
		a.HelpVisible = true
	}
}

func (a *App) handleInsertKey(ev *tcell.EventKey) {
	mod := ev.Modifiers()
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Mode = "normal"
		a.InputBuf = ""
		a.ReplaceOnNextRune = false
	case tcell.KeyEnter:
		// Shift+Enter or Alt+Enter -> newline inside the cell
		if mod&tcell.ModShift != 0 || mod&tcell.ModAlt != 0 {
			a.InputBuf += "\n"
			return
		}
		a.setText(a.InputBuf)
		a.Mode = "normal"
		a.InputBuf = ""
		a.ReplaceOnNextRune = false
		if mod&tcell.ModCtrl == 0 && a.MoveAfterEnter {
			a.moveRow(1)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if buf := []rune(a.InputBuf); len(buf) > 0 {
			a.InputBuf = string(buf[:len(buf)-1])
		}
		a.ReplaceOnNextRune = false
	case tcell.KeyRune:
		if a.ReplaceOnNextRune {
			a.InputBuf = string(ev.Rune())
			a.ReplaceOnNextRune = false
		} else {
			a.InputBuf += string(ev.Rune())
		}
	}
}

func (a *App) startEdit() {
	a.Mode = "insert"
	a.InputBuf = ""
	if c := a.Rows.GetCell(a.CurRow, a.CurCol); c != nil {
		a.InputBuf = c.Text
	}
	a.ReplaceOnNextRune = a.SelectAllOnEdit
}

// setText writes text to the cursor cell; empty text clears it.
func (a *App) setText(text string) {
	if text == "" {
		a.record(a.Rows.DeleteCells(grid.Single(a.CurRow, a.CurCol), grid.ModeText))
		return
	}
	p, ok := a.Rows.SetCellText(a.CurRow, a.CurCol, text)
	if !ok {
		a.Status = grid.Single(a.CurRow, a.CurCol).String() + " is locked"
		return
	}
	a.record(p)
}

func (a *App) paste(what grid.Mode) {
	if a.clip == nil {
		a.Status = "nothing to paste"
		return
	}
	src := a.clip.src
	if a.clip.cut {
		a.record(a.Rows.CutPaste(src, grid.Single(a.CurRow, a.CurCol)))
		a.clip = nil
		return
	}
	dst := a.Selection()
	if !dst.Multiple() {
		rn, cn := src.Size()
		dst = grid.NewCellRange(a.CurRow, a.CurCol, a.CurRow+rn-1, a.CurCol+cn-1)
	}
	a.EnsureColExists(dst.Eci)
	a.Selecting = false
	a.record(a.Rows.CopyPaste(src, dst, what, false, a.Sheets))
}

// moveRow moves the cursor by one visible row, growing the sheet at the
// bottom.
func (a *App) moveRow(dir int) {
	r := a.CurRow + dir
	for r >= 0 && a.Rows.IsHidden(r) {
		r += dir
	}
	if r < 0 {
		return
	}
	a.CurRow = r
	if a.CurRow >= a.Rows.Len {
		a.Rows.Len = a.CurRow + 1
	}
}

func (a *App) insertRows(at, n int) {
	a.record(a.Rows.Insert(at, n))
}

func (a *App) deleteRows(at, n int) {
	if a.Rows.Len <= 0 {
		return
	}
	a.record(a.Rows.Delete(at, at+n-1))
	a.Rows.Len = max(a.Rows.Len, 1)
	a.CurRow = min(a.CurRow, a.Rows.Len-1)
}

func (a *App) insertCols(at, n int) {
	a.EnsureColExists(at)
	a.record(a.Rows.InsertColumn(at, n))
	widths := make([]int, n)
	for i := range widths {
		widths[i] = a.DefaultWidth
	}
	a.ColWidths = append(a.ColWidths[:at], append(widths, a.ColWidths[at:]...)...)
}

func (a *App) deleteCols(at, n int) {
	if len(a.ColWidths) <= 1 {
		return
	}
	end := min(at+n, len(a.ColWidths))
	a.record(a.Rows.DeleteColumn(at, end-1))
	a.ColWidths = append(a.ColWidths[:at], a.ColWidths[end:]...)
	a.CurCol = min(a.CurCol, len(a.ColWidths)-1)
}

func (a *App) EnsureColExists(idx int) {
	for len(a.ColWidths) <= idx {
		a.ColWidths = append(a.ColWidths, a.DefaultWidth)
	}
}
