package grid

import (
	"sync"
)

// SGR is the bitset of text attributes carried by a cell.
type SGR uint16

const (
	SGRBold SGR = 1 << iota
	SGRFaint
	SGRItalic
	SGRUnderline
	SGRSlowBlink
	SGRRapidBlink
	SGRInvert
	SGRConceal
	SGRStrike
	SGRDblUnderline
)

// Cell is a single screen position. Char 0 marks an empty cell.
type Cell struct {
	Char   uint32
	Fg, Bg Color
	SGR    SGR
}

// Cursor carries position, pen state and the pending-wrap flag.
// LastColumnFlag is set only while the cursor sits in the rightmost
// column after a print that has not wrapped yet; the next printable
// byte wraps to column 0 of the following row.
type Cursor struct {
	X, Y           int
	Fg, Bg         Color
	SGR            SGR
	Visible        bool
	LastColumnFlag bool
}

// GridView is a read-only borrow of the cell buffer for the renderer.
type GridView struct {
	Width, Height int
	Cells         []Cell
}

// Grid is the terminal screen state: the cell buffer, the cursor and
// the mode flags. Cells are stored row-major; the cell at (x, y) is
// Cells[y*Width+x].
type Grid struct {
	mu     sync.Mutex
	width  int
	height int
	cells  []Cell
	cursor Cursor

	defaultFg Color
	defaultBg Color
	tabWidth  int

	bracketedPaste bool
}

// NewGrid creates a grid of cols x rows empty cells. Dimensions are
// clamped to at least 1.
func NewGrid(cols, rows int, fg, bg Color, tabWidth int) *Grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if tabWidth < 1 {
		tabWidth = 8
	}

	g := &Grid{
		width:     cols,
		height:    rows,
		defaultFg: fg,
		defaultBg: bg,
		tabWidth:  tabWidth,
		cursor: Cursor{
			Fg:      fg,
			Bg:      bg,
			Visible: true,
		},
	}
	g.cells = make([]Cell, cols*rows)
	for i := range g.cells {
		g.cells[i] = g.emptyCell()
	}
	return g
}

func (g *Grid) emptyCell() Cell {
	return Cell{Fg: g.defaultFg, Bg: g.defaultBg}
}

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}

// WriteByte stores a printable byte at the cursor with the current pen
// state and advances the cursor, wrapping first if a previous print
// left the cursor pending in the last column.
func (g *Grid) WriteByte(b byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cursor.LastColumnFlag {
		g.cursor.LastColumnFlag = false
		g.cursor.X = 0
		g.cursor.Y = g.advanceY(g.cursor.Y)
	}

	g.cells[g.index(g.cursor.X, g.cursor.Y)] = Cell{
		Char: uint32(b),
		Fg:   g.cursor.Fg,
		Bg:   g.cursor.Bg,
		SGR:  g.cursor.SGR,
	}

	g.advanceCursor()
}

// advanceCursor moves the cursor one column right. Reaching the edge
// sets the pending-wrap flag; advancing again with the flag set wraps.
func (g *Grid) advanceCursor() {
	g.cursor.X++
	if g.cursor.X == g.width {
		if g.cursor.LastColumnFlag {
			g.cursor.LastColumnFlag = false
			g.cursor.X = 0
			g.cursor.Y = g.advanceY(g.cursor.Y)
		} else {
			g.cursor.LastColumnFlag = true
			g.cursor.X = g.width - 1
		}
	}
}

// advanceY moves down one row, scrolling the buffer up by one row when
// the cursor falls off the bottom.
func (g *Grid) advanceY(y int) int {
	y++
	if y == g.height {
		y = g.height - 1
		copy(g.cells, g.cells[g.width:])
		last := g.cells[g.width*y:]
		for i := range last {
			last[i] = g.emptyCell()
		}
	}
	return y
}

// Backspace moves the cursor one column left, wrapping to the end of
// the previous row at column 0.
func (g *Grid) Backspace() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if g.cursor.X > 0 {
		g.cursor.X--
	} else if g.cursor.Y > 0 {
		g.cursor.X = g.width - 1
		g.cursor.Y--
	}
}

// Tab advances the cursor by the configured tab width.
func (g *Grid) Tab() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for i := 0; i < g.tabWidth; i++ {
		g.advanceCursor()
	}
}

// LineFeed moves to column 0 of the next row, scrolling at the bottom.
// Used for LF, FF and NEL.
func (g *Grid) LineFeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	g.cursor.X = 0
	g.cursor.Y = g.advanceY(g.cursor.Y)
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	g.cursor.X = 0
}

// InsertChars inserts n blank cells at the cursor, shifting the rest
// of the row right. Cells pushed past the edge are lost.
func (g *Grid) InsertChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false

	x, y := g.cursor.X, g.cursor.Y
	if n > g.width-x {
		n = g.width - x
	}
	if n <= 0 {
		return
	}

	row := g.cells[y*g.width : (y+1)*g.width]
	copy(row[x+n:], row[x:g.width-n])
	for i := x; i < x+n; i++ {
		row[i] = Cell{}
	}
}

// CursorUp moves the cursor up n rows, stopping at the top.
func (g *Grid) CursorUp(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if n >= g.cursor.Y {
		g.cursor.Y = 0
	} else {
		g.cursor.Y -= n
	}
}

// CursorDown moves the cursor down n rows, stopping at the bottom.
func (g *Grid) CursorDown(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if g.cursor.Y+n >= g.height {
		g.cursor.Y = g.height - 1
	} else {
		g.cursor.Y += n
	}
}

// CursorForward moves the cursor right n columns, stopping at the edge.
func (g *Grid) CursorForward(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if g.cursor.X+n >= g.width {
		g.cursor.X = g.width - 1
	} else {
		g.cursor.X += n
	}
}

// CursorBack moves the cursor left n columns, stopping at column 0.
func (g *Grid) CursorBack(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if n >= g.cursor.X {
		g.cursor.X = 0
	} else {
		g.cursor.X -= n
	}
}

// CursorNextLine moves the cursor to column 0, n rows down.
func (g *Grid) CursorNextLine(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	g.cursor.X = 0
	if g.cursor.Y+n >= g.height {
		g.cursor.Y = g.height - 1
	} else {
		g.cursor.Y += n
	}
}

// CursorPrevLine moves the cursor to column 0, n rows up.
func (g *Grid) CursorPrevLine(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	g.cursor.X = 0
	if g.cursor.Y <= n {
		g.cursor.Y = 0
	} else {
		g.cursor.Y -= n
	}
}

// CursorColumn sets the cursor column to n, clamped to the last
// column. The parameter is used as-is, not 1-based.
func (g *Grid) CursorColumn(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	if n >= g.width {
		n = g.width - 1
	}
	g.cursor.X = n
}

// MoveTo positions the cursor at a 1-based row and column, each
// clamped into the grid.
func (g *Grid) MoveTo(row, col int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false

	if row < 1 {
		row = 1
	} else if row > g.height {
		row = g.height
	}
	if col < 1 {
		col = 1
	} else if col > g.width {
		col = g.width
	}

	g.cursor.Y = row - 1
	g.cursor.X = col - 1
}

// TabForward truncates the cursor to its current tab stop and advances
// n stops, clamped to the last column.
func (g *Grid) TabForward(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false

	x := g.cursor.X/g.tabWidth*g.tabWidth + n*g.tabWidth
	if x >= g.width {
		x = g.width - 1
	}
	g.cursor.X = x
}

// ClearToEnd erases from the cursor inclusive to the end of the screen.
func (g *Grid) ClearToEnd() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for i := g.index(g.cursor.X, g.cursor.Y); i < len(g.cells); i++ {
		g.cells[i] = g.emptyCell()
	}
}

// ClearToStart erases from the start of the screen to the cursor
// exclusive.
func (g *Grid) ClearToStart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for i := 0; i < g.index(g.cursor.X, g.cursor.Y); i++ {
		g.cells[i] = g.emptyCell()
	}
}

// ClearAll erases the whole screen. The cursor does not move.
func (g *Grid) ClearAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for i := range g.cells {
		g.cells[i] = g.emptyCell()
	}
}

// ClearLineToEnd erases from the cursor inclusive to the end of the row.
func (g *Grid) ClearLineToEnd() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for x := g.cursor.X; x < g.width; x++ {
		g.cells[g.index(x, g.cursor.Y)] = g.emptyCell()
	}
}

// ClearLineToStart erases from column 0 to the cursor exclusive.
func (g *Grid) ClearLineToStart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for x := 0; x < g.cursor.X; x++ {
		g.cells[g.index(x, g.cursor.Y)] = g.emptyCell()
	}
}

// ClearLine erases the cursor's row.
func (g *Grid) ClearLine() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.LastColumnFlag = false
	for x := 0; x < g.width; x++ {
		g.cells[g.index(x, g.cursor.Y)] = g.emptyCell()
	}
}

// ApplySGR applies one graphic-rendition code to the cursor pen state.
// Returns false for codes this terminal does not recognize.
func (g *Grid) ApplySGR(n int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case n == 0:
		g.cursor.Fg = g.defaultFg
		g.cursor.Bg = g.defaultBg
		g.cursor.SGR = 0
	case n == 1:
		g.cursor.SGR &^= SGRFaint
		g.cursor.SGR |= SGRBold
	case n == 2:
		g.cursor.SGR &^= SGRBold
		g.cursor.SGR |= SGRFaint
	case n == 3:
		g.cursor.SGR |= SGRItalic
	case n == 4:
		g.cursor.SGR &^= SGRDblUnderline
		g.cursor.SGR |= SGRUnderline
	case n == 5:
		g.cursor.SGR &^= SGRRapidBlink
		g.cursor.SGR |= SGRSlowBlink
	case n == 6:
		g.cursor.SGR &^= SGRSlowBlink
		g.cursor.SGR |= SGRRapidBlink
	case n == 7:
		g.cursor.SGR |= SGRInvert
	case n == 8:
		g.cursor.SGR |= SGRConceal
	case n == 9:
		g.cursor.SGR |= SGRStrike
	case n == 21:
		g.cursor.SGR &^= SGRUnderline
		g.cursor.SGR |= SGRDblUnderline
	case n == 22:
		g.cursor.SGR &^= SGRBold | SGRFaint
	case n == 23:
		g.cursor.SGR &^= SGRItalic
	case n == 24:
		g.cursor.SGR &^= SGRUnderline | SGRDblUnderline
	case n == 25:
		g.cursor.SGR &^= SGRSlowBlink | SGRRapidBlink
	case n == 27:
		g.cursor.SGR &^= SGRInvert
	case n == 28:
		g.cursor.SGR &^= SGRConceal
	case n == 29:
		g.cursor.SGR &^= SGRStrike
	case n >= 30 && n <= 37:
		g.cursor.Fg = Palette[n-30]
	case n == 39:
		g.cursor.Fg = g.defaultFg
	case n >= 40 && n <= 47:
		g.cursor.Bg = Palette[n-40]
	case n == 49:
		g.cursor.Bg = g.defaultBg
	case n >= 90 && n <= 97:
		g.cursor.Fg = Palette[n-90+8]
	case n >= 100 && n <= 107:
		g.cursor.Bg = Palette[n-100+8]
	default:
		return false
	}
	return true
}

// SetBracketedPaste sets or clears bracketed-paste mode (DEC 2004).
func (g *Grid) SetBracketedPaste(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bracketedPaste = on
}

// BracketedPaste reports whether bracketed-paste mode is set.
func (g *Grid) BracketedPaste() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bracketedPaste
}

// SetCursorVisible sets cursor visibility; the frame loop toggles this
// to blink.
func (g *Grid) SetCursorVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor.Visible = visible
}

// Resize reallocates the cell buffer for a new window size. Contents
// are reset to empty and the cursor is clamped into the new grid.
func (g *Grid) Resize(cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	need := cols * rows
	if need > cap(g.cells) {
		g.cells = make([]Cell, need)
	} else {
		g.cells = g.cells[:need]
	}

	g.width = cols
	g.height = rows
	for i := range g.cells {
		g.cells[i] = g.emptyCell()
	}

	if g.cursor.X >= cols {
		g.cursor.X = cols - 1
	}
	if g.cursor.Y >= rows {
		g.cursor.Y = rows - 1
	}
	g.cursor.LastColumnFlag = false
}

// Snapshot returns the cell buffer and a copy of the cursor for one
// renderer frame. The view borrows the live buffer; no parser work
// runs while a frame is being drawn.
func (g *Grid) Snapshot() (GridView, Cursor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GridView{Width: g.width, Height: g.height, Cells: g.cells}, g.cursor
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

// CursorPos returns the cursor position.
func (g *Grid) CursorPos() (x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cursor.X, g.cursor.Y
}

// CellAt returns the cell at (x, y), or an empty cell out of bounds.
func (g *Grid) CellAt(x, y int) Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return g.emptyCell()
	}
	return g.cells[g.index(x, y)]
}

// DefaultColors returns the configured default pen colors.
func (g *Grid) DefaultColors() (fg, bg Color) {
	return g.defaultFg, g.defaultBg
}
