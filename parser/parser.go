package parser

import (
	"log"
	"math"

	"github.com/corvidterm/corvid/grid"
)

// State is the current parser state.
type State int

const (
	StateNormal State = iota
	StateEscape
	StateDesignateG0
	StateCSI
	StateOSC
)

// param is one CSI parameter. A parameter is empty when no digits were
// seen between separators; commands substitute their own default.
type param struct {
	n       uint32
	isEmpty bool
}

// Terminal consumes the byte stream from the child process and drives
// the grid. Sequences are applied whole before Process returns; bad
// input is dropped with a warning and the machine returns to normal.
type Terminal struct {
	Grid *grid.Grid

	state     State
	isPrivate bool
	params    []param
	inParam   bool

	oscCode      int
	oscTextPhase bool
	oscBuf       []byte

	onTitle func(string)
}

// NewTerminal creates a parser bound to a grid.
func NewTerminal(g *grid.Grid) *Terminal {
	return &Terminal{
		Grid:    g,
		state:   StateNormal,
		oscCode: -1,
	}
}

// SetTitleHandler registers the sink for OSC window-title sequences.
func (t *Terminal) SetTitleHandler(fn func(string)) {
	t.onTitle = fn
}

// Process consumes every byte of data. It never fails; invalid
// sequences are logged and skipped.
func (t *Terminal) Process(data []byte) {
	for _, b := range data {
		t.processByte(b)
	}
}

// State returns the current parser state.
func (t *Terminal) State() State {
	return t.state
}

func (t *Terminal) processByte(b byte) {
	if b == 0x1a { // SUB aborts any sequence in progress
		t.reset()
		return
	}

	switch t.state {
	case StateNormal:
		t.processNormal(b)
	case StateEscape:
		t.processEscape(b)
	case StateDesignateG0:
		// the designation byte itself is consumed and ignored
		t.state = StateNormal
	case StateCSI:
		t.processCSI(b)
	case StateOSC:
		t.processOSC(b)
	}
}

func (t *Terminal) processNormal(b byte) {
	switch b {
	case 0x07: // BEL
	case 0x08: // BS
		t.Grid.Backspace()
	case 0x09: // HT
		t.Grid.Tab()
	case 0x0a, 0x0c: // LF, FF
		t.Grid.LineFeed()
	case 0x0d: // CR
		t.Grid.CarriageReturn()
	case 0x1b: // ESC
		t.state = StateEscape
	default:
		t.Grid.WriteByte(b)
	}
}

func (t *Terminal) processEscape(b byte) {
	switch b {
	case '[':
		t.state = StateCSI
		t.isPrivate = false
		t.params = nil
		t.inParam = false
	case ']':
		t.state = StateOSC
		t.oscCode = -1
		t.oscTextPhase = false
		t.oscBuf = nil
	case '(':
		t.state = StateDesignateG0
	case 'E': // NEL
		t.Grid.LineFeed()
		t.state = StateNormal
	default:
		log.Printf("parser: unexpected byte after escape: %q", b)
		t.state = StateNormal
	}
}

func (t *Terminal) processCSI(b byte) {
	if b == '?' && !t.isPrivate && len(t.params) == 0 && !t.inParam {
		t.isPrivate = true
		return
	}

	if b >= '0' && b <= '9' {
		if !t.inParam {
			t.params = append(t.params, param{isEmpty: true})
			t.inParam = true
		}
		p := &t.params[len(t.params)-1]
		p.isEmpty = false
		p.n = accumulate(p.n, b-'0')
		return
	}

	if b == ';' {
		// close the slot before the separator, then open the next one;
		// a slot that never sees a digit stays empty
		if !t.inParam {
			t.params = append(t.params, param{isEmpty: true})
		}
		t.params = append(t.params, param{isEmpty: true})
		t.inParam = true
		return
	}

	t.dispatchCSI(b)
	t.params = nil
	t.inParam = false
	t.isPrivate = false
	t.state = StateNormal
}

// accumulate extends a decimal parameter by one digit, saturating at
// the maximum instead of wrapping.
func accumulate(n uint32, digit byte) uint32 {
	v := uint64(n)*10 + uint64(digit)
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

func (t *Terminal) dispatchCSI(final byte) {
	var cmd command
	if final < 0x80 {
		if t.isPrivate {
			cmd = csiPrivateCommands[final]
		} else {
			cmd = csiCommands[final]
		}
	}

	if cmd.kind == cmdNone {
		if t.isPrivate {
			log.Printf("parser: unknown control sequence: ESC[?%c", final)
		} else {
			log.Printf("parser: unknown control sequence: ESC[%c", final)
		}
		return
	}

	switch cmd.kind {
	case cmdMul:
		if len(t.params) == 0 {
			cmd.run1(t, cmd.def1)
			return
		}
		for _, p := range t.params {
			n := p.n
			if p.isEmpty {
				n = cmd.def1
			}
			cmd.run1(t, n)
		}
	case cmdOne:
		n := cmd.def1
		if len(t.params) > 0 {
			if last := t.params[len(t.params)-1]; !last.isEmpty {
				n = last.n
			}
		}
		cmd.run1(t, n)
	case cmdTwo:
		a, b := cmd.def1, cmd.def2
		if len(t.params) > 0 && !t.params[0].isEmpty {
			a = t.params[0].n
		}
		if len(t.params) > 1 && !t.params[1].isEmpty {
			b = t.params[1].n
		}
		cmd.run2(t, a, b)
	}
}

func (t *Terminal) processOSC(b byte) {
	if t.oscTextPhase {
		if b == 0x07 { // BEL terminates
			if t.onTitle != nil {
				t.onTitle(string(t.oscBuf))
			}
			t.oscBuf = nil
			t.state = StateNormal
			return
		}
		t.oscBuf = append(t.oscBuf, b)
		return
	}

	if t.oscCode < 0 {
		if b >= '0' && b <= '2' {
			t.oscCode = int(b - '0')
			return
		}
		log.Printf("parser: invalid OSC: %q", b)
		t.state = StateNormal
		return
	}

	if b != ';' {
		log.Printf("parser: invalid OSC: expected ';', got %q", b)
		t.state = StateNormal
		return
	}
	t.oscTextPhase = true
}

// reset abandons any partial sequence and returns to the normal state.
func (t *Terminal) reset() {
	t.state = StateNormal
	t.isPrivate = false
	t.params = nil
	t.inParam = false
	t.oscCode = -1
	t.oscTextPhase = false
	t.oscBuf = nil
}
