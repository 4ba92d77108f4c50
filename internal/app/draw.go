package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"sheetgrid/internal/ref"
)

const helpText = "\n i / Enter - edit \n Shift/Alt+Enter - newline \n Ctrl+Enter - save & stay \n : - command \n = - formula \n v - select, y - copy, x - cut \n p - paste, P - paste values \n Del - clear \n Ctrl←/Ctrl→ - col width \n Ctrl↑/Ctrl↓ - row height \n F2/F3 - add row/col \n F4/F5 - delete row/col \n PgUp/PgDn/Home/End - scroll \n :w [file] [fmt] | :o file [fmt] \n"

var (
	headerStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	activeStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	cursorStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
	selectedStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	statusStyle   = tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
)

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	sel := a.Selection()

	// header row: column names
	x := a.LeftGutter
	for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
		wc := a.ColWidths[c]
		style := headerStyle
		if c == a.CurCol {
			style = activeStyle
			fillRect(s, x, 0, wc, 1, style)
		}
		a.printCell(s, x, 0, wc, ref.ColToName(c), style)
		x += wc
	}

	y := 1
	for r := a.ViewRow; r < a.Rows.Len && y < h-a.StatusLines; r++ {
		if a.Rows.IsHidden(r) {
			continue
		}
		style := headerStyle
		if r == a.CurRow {
			style = activeStyle
			fillRect(s, 0, y, a.LeftGutter-1, 1, style)
		}
		printTextFixedWidth(s, 0, y, strconv.Itoa(r+1), a.LeftGutter-1, style)

		hh := a.Rows.Height(r)
		x = a.LeftGutter
		for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
			wc := a.ColWidths[c]
			text := a.Rows.Render(r, c, a.Sheets)
			if a.Mode == "insert" && r == a.CurRow && c == a.CurCol {
				text = a.InputBuf
			}
			style := tcell.StyleDefault
			switch {
			case r == a.CurRow && c == a.CurCol:
				style = cursorStyle
			case a.Selecting && sel.Contains(r, c):
				style = selectedStyle
			}
			fillRect(s, x, y, wc, hh, style)
			for dy, line := range splitLines(text, hh) {
				a.printCell(s, x, y+dy, wc, line, style)
			}
			x += wc
		}
		y += hh
	}

	a.drawStatus(s, w, h)
	if a.HelpVisible {
		drawHelpPopup(s, helpText)
	}
	a.drawInsertCursor(s, w, h)
	s.Show()
}

func (a *App) drawStatus(s tcell.Screen, w, h int) {
	statusY := max(0, h-a.StatusLines)
	where := ref.ColRowToName(a.CurCol, a.CurRow)
	if a.Selecting {
		where = a.Selection().String()
	}
	left := fmt.Sprintf("Mode:%s  Cell:%s  cw=%d rh=%d  Rows:%d", a.Mode, where, a.ColWidths[a.CurCol], a.Rows.Height(a.CurRow), a.Rows.Len)
	if a.File != "" {
		left += "  " + a.File
		if !a.Pending.IsEmpty() {
			left += " [+]"
		}
	}
	printTextFixedWidth(s, 0, statusY, left, w, statusStyle)

	line := a.Status
	if a.Mode == "insert" {
		line = "EDIT: " + a.InputBuf
	} else if c := a.Rows.GetCell(a.CurRow, a.CurCol); line == "" && c != nil {
		line = c.Text
	}
	printTextFixedWidth(s, 0, statusY+1, line, w, statusStyle)
}

func (a *App) drawInsertCursor(s tcell.Screen, w, h int) {
	s.HideCursor()
	if a.Mode != "insert" || a.CurCol < a.ViewCol || a.CurRow < a.ViewRow {
		return
	}
	cellX := a.LeftGutter
	for c := a.ViewCol; c < a.CurCol; c++ {
		cellX += a.ColWidths[c]
	}
	cellY := 1
	for r := a.ViewRow; r < a.CurRow; r++ {
		if !a.Rows.IsHidden(r) {
			cellY += a.Rows.Height(r)
		}
	}

	lines := strings.Split(a.InputBuf, "\n")
	last := len(lines) - 1
	innerW := max(1, a.ColWidths[a.CurCol]-2*a.CellPadding)
	cx := cellX + a.CellPadding + min(runewidth.StringWidth(lines[last]), innerW-1)
	cy := cellY + min(last, a.Rows.Height(a.CurRow)-1)
	if cx < w && cy < h-a.StatusLines {
		s.SetContent(cx, cy, '▏', nil, tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorLightGray))
	}
}

// printCell prints one line of a cell, inside its padding when it fits.
func (a *App) printCell(s tcell.Screen, x, y, wc int, text string, style tcell.Style) {
	if inner := wc - 2*a.CellPadding; inner > 0 {
		printTextFixedWidth(s, x+a.CellPadding, y, text, inner, style)
		return
	}
	printTextFixedWidth(s, x, y, text, wc, style)
}

func fillRect(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for dy := range h {
		for dx := range w {
			s.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}

// printTextFixedWidth prints str clipped and padded to width screen columns
// and returns width.
func printTextFixedWidth(s tcell.Screen, x, y int, str string, width int, style tcell.Style) int {
	col := 0
	for _, ch := range str {
		rw := runewidth.RuneWidth(ch)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		s.SetContent(x+col, y, ch, nil, style)
		col += rw
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
	return width
}

func splitLines(text string, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	parts := strings.Split(text, "\n")
	return parts[:min(len(parts), maxLines)]
}

func drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	const padding = 2
	maxPW := w - 6
	maxPH := h - 4

	innerW := min(50, maxPW-padding*2)
	if innerW < 30 {
		innerW = max(10, maxPW-padding*2)
	}
	lines := wrapText(help, innerW)
	if len(lines) > maxPH-padding*2 {
		lines = lines[:max(0, maxPH-padding*2)]
	}
	innerH := max(3, len(lines))

	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	fillRect(s, left, top, pw, ph, style)
	s.SetContent(left, top, '┌', nil, style)
	s.SetContent(left+pw-1, top, '┐', nil, style)
	s.SetContent(left, top+ph-1, '└', nil, style)
	s.SetContent(left+pw-1, top+ph-1, '┘', nil, style)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, '─', nil, style)
		s.SetContent(left+xx, top+ph-1, '─', nil, style)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, '│', nil, style)
		s.SetContent(left+pw-1, top+yy, '│', nil, style)
	}

	vOffset := (innerH - len(lines)) / 2
	for i, ln := range lines {
		printTextFixedWidth(s, left+padding, top+padding+vOffset+i, ln, innerW, style)
	}
}

// wrapText word-wraps s to width screen columns, keeping one leading space on
// every line and splitting words that do not fit.
func wrapText(s string, width int) []string {
	if width <= 2 {
		return []string{s}
	}

	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := " "
		for _, w := range words {
			for runewidth.StringWidth(w) > width-1 {
				head := runewidth.Truncate(w, width-1, "")
				if head == "" {
					break
				}
				if cur != " " {
					result = append(result, cur)
				}
				result = append(result, " "+head)
				cur = " "
				w = w[len(head):]
			}
			if w == "" {
				continue
			}
			switch {
			case cur == " ":
				cur += w
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= width:
				cur += " " + w
			default:
				result = append(result, cur)
				cur = " " + w
			}
		}
		if cur != " " {
			result = append(result, cur)
		}
	}
	return result
}

// visibleSpan counts rows and columns that fit the screen starting at the
// view origin. Both are at least 1.
func (a *App) visibleSpan(s tcell.Screen) (rows, cols int) {
	w, h := s.Size()
	usableW := max(1, w-a.LeftGutter)
	usableH := max(1, h-a.StatusLines-1)

	sumW := 0
	for c := a.ViewCol; c < len(a.ColWidths); c++ {
		if sumW+a.ColWidths[c] > usableW {
			break
		}
		sumW += a.ColWidths[c]
		cols++
	}
	sumH := 0
	for r := a.ViewRow; r < a.Rows.Len; r++ {
		hh := a.Rows.Height(r)
		if hh == 0 {
			continue
		}
		if sumH+hh > usableH {
			break
		}
		sumH += hh
		rows++
	}
	return max(1, rows), max(1, cols)
}

func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	return a.visibleSpan(s)
}

// EnsureCursorVisible scrolls the view so the cursor cell is on screen.
func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	a.CurCol = min(a.CurCol, len(a.ColWidths)-1)
	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else {
		for {
			_, cols := a.visibleSpan(s)
			if a.CurCol < a.ViewCol+cols {
				break
			}
			a.ViewCol++
		}
	}

	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
		return
	}
	_, h := s.Size()
	usableH := max(1, h-a.StatusLines-1)
	// hidden rows have height 0
	for a.ViewRow < a.CurRow && a.Rows.SumHeight(a.ViewRow, a.CurRow+1, nil) > usableH {
		a.ViewRow++
	}
}
