package grid

import (
	"testing"
)

func newTestGrid(cols, rows int) *Grid {
	return NewGrid(cols, rows, White, Black, 8)
}

func TestNewGrid_ClampsDimensions(t *testing.T) {
	g := NewGrid(0, -3, White, Black, 8)
	cols, rows := g.Size()
	if cols != 1 || rows != 1 {
		t.Errorf("size = %dx%d, want 1x1", cols, rows)
	}
	view, _ := g.Snapshot()
	if len(view.Cells) != cols*rows {
		t.Errorf("len(cells) = %d, want %d", len(view.Cells), cols*rows)
	}
}

func TestWriteByte_StoresPenState(t *testing.T) {
	g := newTestGrid(10, 3)
	if !g.ApplySGR(1) || !g.ApplySGR(31) {
		t.Fatal("ApplySGR rejected valid codes")
	}
	g.WriteByte('x')

	c := g.CellAt(0, 0)
	if c.Char != 'x' {
		t.Errorf("char = %q, want 'x'", rune(c.Char))
	}
	if c.Fg != Palette[1] {
		t.Errorf("fg = %v, want %v", c.Fg, Palette[1])
	}
	if c.SGR&SGRBold == 0 {
		t.Error("bold not recorded on cell")
	}
	if x, y := g.CursorPos(); x != 1 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (1,0)", x, y)
	}
}

func TestWriteByte_HighBytesStoredVerbatim(t *testing.T) {
	g := newTestGrid(10, 3)
	g.WriteByte(0xe9)

	if c := g.CellAt(0, 0); c.Char != 0xe9 {
		t.Errorf("char = %#x, want 0xe9", c.Char)
	}
}

func TestAdvance_PendingWrapThenWrap(t *testing.T) {
	g := newTestGrid(4, 3)
	for _, b := range []byte("abcd") {
		g.WriteByte(b)
	}

	_, cursor := g.Snapshot()
	if cursor.X != 3 || !cursor.LastColumnFlag {
		t.Fatalf("cursor = (%d,%d) flag=%v, want (3,0) pending", cursor.X, cursor.Y, cursor.LastColumnFlag)
	}

	g.WriteByte('e')
	_, cursor = g.Snapshot()
	if cursor.X != 1 || cursor.Y != 1 || cursor.LastColumnFlag {
		t.Errorf("cursor = (%d,%d) flag=%v, want (1,1) clear", cursor.X, cursor.Y, cursor.LastColumnFlag)
	}
	if c := g.CellAt(0, 1); c.Char != 'e' {
		t.Errorf("cell (0,1) = %q, want 'e'", rune(c.Char))
	}
}

func TestAdvanceY_ScrollDiscardsTopRow(t *testing.T) {
	g := newTestGrid(3, 2)
	g.WriteByte('a')
	g.LineFeed()
	g.WriteByte('b')
	g.LineFeed() // bottom row: scrolls

	if c := g.CellAt(0, 0); c.Char != 'b' {
		t.Errorf("cell (0,0) = %q, want 'b'", rune(c.Char))
	}
	last := g.CellAt(0, 1)
	if last.Char != 0 || last.Fg != White || last.Bg != Black || last.SGR != 0 {
		t.Errorf("scrolled-in cell = %+v, want empty default", last)
	}
	if _, y := g.CursorPos(); y != 1 {
		t.Errorf("cursor y = %d, want 1", y)
	}
}

func TestTab_CanWrapAtRightEdge(t *testing.T) {
	g := newTestGrid(10, 3)
	g.MoveTo(1, 10)
	g.Tab()

	// two advances reach the edge and wrap; the rest move along row 1
	x, y := g.CursorPos()
	if y != 1 {
		t.Errorf("cursor y = %d, want 1", y)
	}
	if x != 6 {
		t.Errorf("cursor x = %d, want 6", x)
	}
}

func TestMoveTo_ClampsIntoGrid(t *testing.T) {
	g := newTestGrid(10, 3)
	g.MoveTo(99, 99)
	if x, y := g.CursorPos(); x != 9 || y != 2 {
		t.Errorf("cursor = (%d,%d), want (9,2)", x, y)
	}

	g.MoveTo(0, 0)
	if x, y := g.CursorPos(); x != 0 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", x, y)
	}
}

func TestApplySGR_MutuallyExclusivePairs(t *testing.T) {
	g := newTestGrid(10, 3)

	g.ApplySGR(1)
	g.ApplySGR(2)
	_, c := g.Snapshot()
	if c.SGR&SGRBold != 0 || c.SGR&SGRFaint == 0 {
		t.Errorf("after 1;2: sgr = %b, want faint only", c.SGR)
	}

	g.ApplySGR(4)
	g.ApplySGR(21)
	_, c = g.Snapshot()
	if c.SGR&SGRUnderline != 0 || c.SGR&SGRDblUnderline == 0 {
		t.Errorf("after 4;21: sgr = %b, want double underline only", c.SGR)
	}

	g.ApplySGR(5)
	g.ApplySGR(6)
	_, c = g.Snapshot()
	if c.SGR&SGRSlowBlink != 0 || c.SGR&SGRRapidBlink == 0 {
		t.Errorf("after 5;6: sgr = %b, want rapid blink only", c.SGR)
	}

	g.ApplySGR(24)
	g.ApplySGR(25)
	g.ApplySGR(22)
	_, c = g.Snapshot()
	if c.SGR != 0 {
		t.Errorf("after clears: sgr = %b, want 0", c.SGR)
	}
}

func TestApplySGR_UnknownCode(t *testing.T) {
	g := newTestGrid(10, 3)
	if g.ApplySGR(38) {
		t.Error("ApplySGR accepted extended color 38")
	}
	if g.ApplySGR(77) {
		t.Error("ApplySGR accepted code 77")
	}
}

func TestResize_ResetsContentAndClampsCursor(t *testing.T) {
	g := newTestGrid(10, 5)
	g.MoveTo(5, 10)
	g.WriteByte('x')

	g.Resize(4, 2)

	cols, rows := g.Size()
	if cols != 4 || rows != 2 {
		t.Fatalf("size = %dx%d, want 4x2", cols, rows)
	}
	view, cursor := g.Snapshot()
	if len(view.Cells) != 8 {
		t.Errorf("len(cells) = %d, want 8", len(view.Cells))
	}
	for i, c := range view.Cells {
		if c.Char != 0 {
			t.Errorf("cell %d = %q, want empty", i, rune(c.Char))
		}
	}
	if cursor.X >= cols || cursor.Y >= rows {
		t.Errorf("cursor (%d,%d) out of bounds after resize", cursor.X, cursor.Y)
	}
	if cursor.LastColumnFlag {
		t.Error("pending wrap survived resize")
	}
}

func TestResize_ClampsToMinimum(t *testing.T) {
	g := newTestGrid(10, 5)
	g.Resize(0, 0)

	cols, rows := g.Size()
	if cols != 1 || rows != 1 {
		t.Errorf("size = %dx%d, want 1x1", cols, rows)
	}
}

func TestSnapshot_CursorIsACopy(t *testing.T) {
	g := newTestGrid(10, 3)
	_, cursor := g.Snapshot()
	g.WriteByte('a')

	if cursor.X != 0 {
		t.Errorf("snapshot cursor mutated: x = %d", cursor.X)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ffffff", White, false},
		{"#000000", Black, false},
		{"#cd0000", RGB(205, 0, 0), false},
		{"#11223344", Color{0x11, 0x22, 0x33, 0x44}, false},
		{"ffffff", White, false},
		{"#fff", Color{}, true},
		{"#gggggg", Color{}, true},
		{"", Color{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPalette_MatchesXterm(t *testing.T) {
	if Palette[1] != RGB(205, 0, 0) {
		t.Errorf("palette[1] = %v, want (205,0,0)", Palette[1])
	}
	if Palette[12] != RGB(92, 92, 255) {
		t.Errorf("palette[12] = %v, want (92,92,255)", Palette[12])
	}
	if Palette[15] != RGB(255, 255, 255) {
		t.Errorf("palette[15] = %v, want white", Palette[15])
	}
}
