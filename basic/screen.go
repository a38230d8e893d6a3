package basic

import (
	"context"
	"strings"
	"sync"
)

const (
	// ScreenRows and ScreenCols are the C64's fixed 40x25 text mode grid.
	ScreenRows = 25
	ScreenCols = 40
)

type cell struct {
	ch      rune
	reverse bool
}

// Screen is the 40x25 character grid, cursor, color registers, and
// input-line handoff shared between the interpreter and the term frontend
// (spec.md §4.2, §5). All grid/cursor access goes through mu; the input
// channel is its own synchronization point and needs no lock.
type Screen struct {
	mu sync.Mutex

	grid      [ScreenRows][ScreenCols]cell
	row, col  int
	reverseOn bool

	borderColor     int
	backgroundColor int
	textColor       int
	pokeLog         map[int]int // every POKEd address -> last value written, read back by Peek

	lines chan string
	quit  chan struct{}
	once  sync.Once
}

// NewScreen returns a cleared screen with the original power-on palette
// (light blue border/background, light blue text, as the machine boots).
func NewScreen() *Screen {
	s := &Screen{
		borderColor:     14,
		backgroundColor: 14,
		textColor:       14,
		pokeLog:         make(map[int]int),
		lines:           make(chan string, 1),
		quit:            make(chan struct{}),
	}
	s.clearLocked()
	return s
}

func (s *Screen) clearLocked() {
	for r := 0; r < ScreenRows; r++ {
		for c := 0; c < ScreenCols; c++ {
			s.grid[r][c] = cell{ch: ' '}
		}
	}
	s.row, s.col = 0, 0
}

// Clear fills the buffer with spaces and resets the cursor to (0,0).
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Screen) scrollLocked() {
	for r := 1; r < ScreenRows; r++ {
		s.grid[r-1] = s.grid[r]
	}
	for c := 0; c < ScreenCols; c++ {
		s.grid[ScreenRows-1][c] = cell{ch: ' '}
	}
}

func (s *Screen) newlineLocked() {
	s.col = 0
	s.row++
	if s.row >= ScreenRows {
		s.scrollLocked()
		s.row = ScreenRows - 1
	}
}

// Newline moves the cursor to column 0 of the next row, scrolling if
// already on the bottom row.
func (s *Screen) Newline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newlineLocked()
}

func (s *Screen) putCharLocked(r rune) {
	s.grid[s.row][s.col] = cell{ch: r, reverse: s.reverseOn}
	s.col++
	if s.col >= ScreenCols {
		s.newlineLocked()
	}
}

// Print writes text at the cursor, substituting PETSCII placeholders and
// acting on [CLR]/[REVERSE] control events as it goes (spec.md §4.2).
func (s *Screen) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range scanPetscii(text) {
		switch {
		case tok.isClear:
			s.clearLocked()
		case tok.isReverseFlip:
			s.reverseOn = !s.reverseOn
		default:
			for _, r := range tok.text {
				s.putCharLocked(r)
			}
		}
	}
}

// Tab pads with spaces to column n if n is ahead of the cursor; it never
// moves the cursor backward and never wraps: padding stops at the last
// column of the row.
func (s *Screen) Tab(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.col < n && s.col < ScreenCols-1 {
		s.putCharLocked(' ')
	}
}

// Spc writes n literal spaces, wrapping/scrolling like ordinary output.
func (s *Screen) Spc(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.putCharLocked(' ')
	}
}

// ReverseOn / ReverseOff set the attribute applied to subsequently written
// cells; the term frontend renders it as inverted colors.
func (s *Screen) ReverseOn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverseOn = true
}

func (s *Screen) ReverseOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverseOn = false
}

// Cursor reports the current (row, col), 0-based.
func (s *Screen) Cursor() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row, s.col
}

// PokeColor applies a POKE to addr/value against the color registers
// (53280 border, 53281 background, 646 text) and records every write —
// including ignored and otherwise-unmodeled addresses — in a side table
// so PEEK can read it back (spec.md §4.5).
func (s *Screen) PokeColor(addr, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := ((value % 16) + 16) % 16
	switch addr {
	case 53280:
		s.borderColor = idx
	case 53281:
		s.backgroundColor = idx
	case 646:
		s.textColor = idx
	}
	s.pokeLog[addr] = value
}

// Colors returns the current (border, background, text) palette indices.
func (s *Screen) Colors() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.borderColor, s.backgroundColor, s.textColor
}

// PaletteRGB looks up a palette index (as returned by Colors) in the C64
// color table, for the term frontend's truecolor ANSI emission.
func (s *Screen) PaletteRGB(idx int) RGB {
	return ColorAt(idx)
}

// Peek returns the last value POKEd to addr (0 if never written), letting
// PEEK read back what a program itself wrote to a color or side-table
// address (spec.md §4.5 makes no promise beyond this for unmodeled memory).
func (s *Screen) Peek(addr int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pokeLog[addr]
}

// Snapshot returns each row's text, trimmed of trailing spaces, for tests
// and for the render loop's diffing.
func (s *Screen) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, ScreenRows)
	for r := 0; r < ScreenRows; r++ {
		var b strings.Builder
		for c := 0; c < ScreenCols; c++ {
			b.WriteRune(s.grid[r][c].ch)
		}
		out[r] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// CellReverse reports whether the cell at (row, col) carries the reverse
// attribute, for the term frontend's per-cell rendering.
func (s *Screen) CellReverse(row, col int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid[row][col].reverse
}

// DeliverLine hands a completed input line (built by the term frontend
// from keystrokes) to a waiting INPUT statement. Non-blocking: if nothing
// is waiting yet the line is buffered for the next ReadLine call.
func (s *Screen) DeliverLine(line string) {
	select {
	case s.lines <- line:
	default:
		// Drop the oldest unclaimed line in favor of the newest — a human
		// typing ahead of the interpreter only ever means the latest entry
		// matters.
		select {
		case <-s.lines:
		default:
		}
		s.lines <- line
	}
}

// ReadLine blocks until a line is delivered, the context is canceled, or
// Quit is called, whichever comes first.
func (s *Screen) ReadLine(ctx context.Context) (string, bool) {
	select {
	case line := <-s.lines:
		return line, true
	case <-s.quit:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// Quit sets the cancellation flag the interpreter polls every step and at
// every INPUT wait (spec.md §5).
func (s *Screen) Quit() {
	s.once.Do(func() { close(s.quit) })
}

// Quitting reports whether Quit has been called.
func (s *Screen) Quitting() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}
