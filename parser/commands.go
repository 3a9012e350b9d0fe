package parser

import (
	"log"
)

type commandKind uint8

const (
	cmdNone commandKind = iota
	cmdMul              // once per parameter
	cmdOne              // last parameter only
	cmdTwo              // first two parameters
)

// command is one slot of the CSI dispatch tables. Empty parameters are
// replaced by the slot's defaults before the handler runs.
type command struct {
	kind       commandKind
	def1, def2 uint32
	run1       func(*Terminal, uint32)
	run2       func(*Terminal, uint32, uint32)
}

// csiCommands is keyed on the final byte of a CSI sequence.
var csiCommands = [128]command{
	'@': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdInsertChars},
	'A': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorUp},
	'B': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorDown},
	'C': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorForward},
	'D': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorBack},
	'E': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorNextLine},
	'F': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorPrevLine},
	'G': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdCursorColumn},
	'H': {kind: cmdTwo, def1: 1, def2: 1, run2: (*Terminal).cmdCursorPos},
	'I': {kind: cmdOne, def1: 1, run1: (*Terminal).cmdTabForward},
	'J': {kind: cmdOne, def1: 0, run1: (*Terminal).cmdEraseDisplay},
	'K': {kind: cmdOne, def1: 0, run1: (*Terminal).cmdEraseLine},
	'm': {kind: cmdMul, def1: 0, run1: (*Terminal).cmdSelectGraphic},
}

// csiPrivateCommands is the table consulted after the ESC [ ? marker.
var csiPrivateCommands = [128]command{
	'h': {kind: cmdOne, def1: 0, run1: (*Terminal).cmdSetMode},
	'l': {kind: cmdOne, def1: 0, run1: (*Terminal).cmdResetMode},
}

func (t *Terminal) cmdInsertChars(n uint32) {
	t.Grid.InsertChars(int(n))
}

func (t *Terminal) cmdCursorUp(n uint32) {
	t.Grid.CursorUp(int(n))
}

func (t *Terminal) cmdCursorDown(n uint32) {
	t.Grid.CursorDown(int(n))
}

func (t *Terminal) cmdCursorForward(n uint32) {
	t.Grid.CursorForward(int(n))
}

func (t *Terminal) cmdCursorBack(n uint32) {
	t.Grid.CursorBack(int(n))
}

func (t *Terminal) cmdCursorNextLine(n uint32) {
	t.Grid.CursorNextLine(int(n))
}

func (t *Terminal) cmdCursorPrevLine(n uint32) {
	t.Grid.CursorPrevLine(int(n))
}

func (t *Terminal) cmdCursorColumn(n uint32) {
	t.Grid.CursorColumn(int(n))
}

func (t *Terminal) cmdCursorPos(row, col uint32) {
	t.Grid.MoveTo(int(row), int(col))
}

func (t *Terminal) cmdTabForward(n uint32) {
	t.Grid.TabForward(int(n))
}

func (t *Terminal) cmdEraseDisplay(n uint32) {
	switch n {
	case 0:
		t.Grid.ClearToEnd()
	case 1:
		t.Grid.ClearToStart()
	case 2, 3: // no scrollback, so 3 behaves as 2
		t.Grid.ClearAll()
	default:
		log.Printf("parser: invalid erase in display argument: %d", n)
	}
}

func (t *Terminal) cmdEraseLine(n uint32) {
	switch n {
	case 0:
		t.Grid.ClearLineToEnd()
	case 1:
		t.Grid.ClearLineToStart()
	case 2:
		t.Grid.ClearLine()
	default:
		log.Printf("parser: invalid erase in line argument: %d", n)
	}
}

func (t *Terminal) cmdSelectGraphic(n uint32) {
	if !t.Grid.ApplySGR(int(n)) {
		log.Printf("parser: invalid SGR argument: %d", n)
	}
}

func (t *Terminal) cmdSetMode(n uint32) {
	switch n {
	case 2004:
		t.Grid.SetBracketedPaste(true)
	default:
		log.Printf("parser: invalid DECSET argument: %d", n)
	}
}

func (t *Terminal) cmdResetMode(n uint32) {
	switch n {
	case 2004:
		t.Grid.SetBracketedPaste(false)
	default:
		log.Printf("parser: invalid DECRST argument: %d", n)
	}
}
