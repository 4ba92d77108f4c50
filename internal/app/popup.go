package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const maxPopupInput = 4096

// PopupInput shows a modal one-line input box over the grid and blocks until
// Enter (returns the text, true) or Esc (returns "", false).
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	buf := []rune(initial)
	pos := len(buf)
	promptW := runewidth.StringWidth(prompt)

	var left, top, boxW int
	const boxH = 3
	layout := func() {
		w, h := s.Size()
		boxW = min(max(20, promptW+len(buf)+2), w-4) + 4
		left = (w - boxW) / 2
		top = (h - boxH) / 2
	}

	drawBox := func() {
		for y := top; y < top+boxH; y++ {
			for x := left; x < left+boxW; x++ {
				s.SetContent(x, y, ' ', nil, style)
			}
		}
		for x := left; x < left+boxW; x++ {
			s.SetContent(x, top, tcell.RuneHLine, nil, style)
			s.SetContent(x, top+boxH-1, tcell.RuneHLine, nil, style)
		}
		for y := top; y < top+boxH; y++ {
			s.SetContent(left, y, tcell.RuneVLine, nil, style)
			s.SetContent(left+boxW-1, y, tcell.RuneVLine, nil, style)
		}
		s.SetContent(left, top, tcell.RuneULCorner, nil, style)
		s.SetContent(left+boxW-1, top, tcell.RuneURCorner, nil, style)
		s.SetContent(left, top+boxH-1, tcell.RuneLLCorner, nil, style)
		s.SetContent(left+boxW-1, top+boxH-1, tcell.RuneLRCorner, nil, style)

		y := top + 1
		x := left + 2 + printTextFixedWidth(s, left+2, y, prompt, promptW, style)
		if promptW > 0 {
			x++
		}

		// scroll the field so the cursor stays inside the box
		field := max(1, left+boxW-2-x)
		start := 0
		if pos > field {
			start = pos - field
		}
		visible := buf[start:min(len(buf), start+field)]
		cursorX := x + runewidth.StringWidth(string(buf[start:pos]))
		printTextFixedWidth(s, x, y, string(visible), field, style)
		s.ShowCursor(min(cursorX, left+boxW-2), y)
	}

	redraw := func() {
		a.Draw(s)
		drawBox()
		s.Show()
	}

	layout()
	redraw()
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				s.HideCursor()
				a.Draw(s)
				s.Show()
				return "", false
			case tcell.KeyEnter:
				s.HideCursor()
				a.Draw(s)
				s.Show()
				return string(buf), true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if pos > 0 {
					buf = append(buf[:pos-1], buf[pos:]...)
					pos--
				}
			case tcell.KeyDelete:
				if pos < len(buf) {
					buf = append(buf[:pos], buf[pos+1:]...)
				}
			case tcell.KeyLeft:
				pos = max(0, pos-1)
			case tcell.KeyRight:
				pos = min(len(buf), pos+1)
			case tcell.KeyHome:
				pos = 0
			case tcell.KeyEnd:
				pos = len(buf)
			case tcell.KeyRune:
				if len(buf) < maxPopupInput {
					buf = append(buf[:pos], append([]rune{ev.Rune()}, buf[pos:]...)...)
					pos++
				}
			}
			redraw()
		case *tcell.EventResize:
			s.Sync()
			layout()
			redraw()
		case nil:
			// screen finalized
			return "", false
		}
	}
}
