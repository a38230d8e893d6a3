package term

import (
	"fmt"
	"strings"
)

const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
	reverseOn      = "\x1b[7m"
	reverseOff     = "\x1b[27m"
	cursorHome     = "\x1b[H"
	clearScreen    = "\x1b[2J"
)

func cursorPos(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row+1, col+1)
}

func truecolorFg(r, g, b uint8) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// draw takes the Screen's snapshot and redraws only the rows that changed
// since the last frame (spec.md §4.6: copy under the lock, draw the diff),
// plus a status/input row below the 40x25 grid showing what's been typed
// so far toward a pending INPUT.
func (h *Host) draw() {
	_, _, textIdx := h.screen.Colors()
	rows := h.screen.Snapshot()
	tc := h.screen.PaletteRGB(textIdx)

	var b strings.Builder
	b.WriteString(cursorHome)
	b.WriteString(truecolorFg(tc.R, tc.G, tc.B))

	for r, row := range rows {
		if h.lastDrawn != nil && r < len(h.lastDrawn) && h.lastDrawn[r] == row {
			continue
		}
		b.WriteString(cursorPos(r, 0))
		b.WriteString("\x1b[K") // clear to end of line before redrawing
		col := 0
		for _, ch := range row {
			if h.screen.CellReverse(r, col) {
				b.WriteString(reverseOn)
				b.WriteRune(ch)
				b.WriteString(reverseOff)
			} else {
				b.WriteRune(ch)
			}
			col++
		}
	}

	b.WriteString(cursorPos(len(rows), 0))
	b.WriteString("\x1b[K")
	b.WriteString(string(h.inputLine))

	cursorRow, cursorCol := h.screen.Cursor()
	b.WriteString(cursorPos(cursorRow, cursorCol))
	fmt.Print(b.String())
	h.lastDrawn = rows
}
