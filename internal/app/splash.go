package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

var splashTitle = []struct {
	char  rune
	color tcell.Color
}{
	{'S', tcell.ColorWhite},
	{'H', tcell.ColorWhite},
	{'E', tcell.ColorWhite},
	{'E', tcell.ColorWhite},
	{'T', tcell.ColorWhite},
	{':', tcell.ColorYellow},
	{'G', tcell.ColorYellow},
	{'R', tcell.ColorYellow},
	{'I', tcell.ColorYellow},
	{'D', tcell.ColorYellow},
}

// Splash reveals the title one letter at a time, then waits for any key.
// step is the delay between letters.
func Splash(s tcell.Screen, step time.Duration) {
	width, height := s.Size()
	hint := "Press any key to enter the application"

	for reveal := 1; reveal <= len(splashTitle); reveal++ {
		s.Clear()
		startX := (width - len(splashTitle)) / 2
		y := height / 2
		for i, t := range splashTitle[:reveal] {
			s.SetContent(startX+i, y, t.char, nil, tcell.StyleDefault.Foreground(t.color).Bold(true))
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		for i, ch := range hint {
			s.SetContent((width-len(hint))/2+i, y+2, ch, nil, style)
		}
		s.Show()
		time.Sleep(step)
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey, nil:
			return
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
