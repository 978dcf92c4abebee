package term

// Escape sequence parser: ground → escape → csi/osc, parameters
// accumulated as they arrive, one dispatch when the final byte lands.

type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEsc
	stateDone
)

type parser struct {
	state   parseState
	private bool
	params  []int
	current int
	hasCur  bool
	final   byte
	escFin  byte // final byte of a bare ESC sequence
}

func (p *parser) reset() {
	*p = parser{}
}

// consume processes one byte while inside a sequence. Returns the
// number of bytes eaten (always 1).
func (p *parser) consume(b byte) int {
	switch p.state {
	case stateEscape:
		switch b {
		case '[':
			p.state = stateCSI
		case ']':
			p.state = stateOSC
		default:
			p.escFin = b
			p.state = stateDone
		}
	case stateCSI:
		switch {
		case b >= '0' && b <= '9':
			p.current = p.current*10 + int(b-'0')
			p.hasCur = true
		case b == ';':
			p.pushParam()
		case b == '?':
			p.private = true
		case b >= 0x40 && b <= 0x7e:
			p.pushParam()
			p.final = b
			p.state = stateDone
		default:
			// Intermediate bytes (space, '>', etc.) are skipped.
		}
	case stateOSC:
		// Swallow until BEL or ST (ESC \).
		switch b {
		case 0x07:
			p.state = stateDone
		case 0x1b:
			p.state = stateOSCEsc
		}
	case stateOSCEsc:
		p.state = stateDone
	}
	return 1
}

func (p *parser) pushParam() {
	if p.hasCur {
		p.params = append(p.params, p.current)
	} else {
		p.params = append(p.params, 0)
	}
	p.current = 0
	p.hasCur = false
}

// param returns the i-th parameter, or def when absent or zero.
func (p *parser) param(i, def int) int {
	if i < len(p.params) && p.params[i] > 0 {
		return p.params[i]
	}
	return def
}

// rawParam returns the i-th parameter without the zero-means-default
// rule (ED/EL distinguish 0 from absent-as-0 identically, SGR needs
// raw values).
func (p *parser) rawParam(i int) int {
	if i < len(p.params) {
		return p.params[i]
	}
	return 0
}

// dispatch applies a completed sequence to the emulator. Unknown
// finals are consumed silently.
func (e *Emulator) dispatch() {
	p := &e.parser
	if p.final == 0 && p.escFin != 0 {
		e.dispatchEscape(p.escFin)
		return
	}

	switch p.final {
	case 'A':
		e.moveCursor(0, -p.param(0, 1))
	case 'B':
		e.moveCursor(0, p.param(0, 1))
	case 'C':
		e.moveCursor(p.param(0, 1), 0)
	case 'D':
		e.moveCursor(-p.param(0, 1), 0)
	case 'E': // next line
		e.moveCursor(0, p.param(0, 1))
		e.cursorX = 0
	case 'F': // previous line
		e.moveCursor(0, -p.param(0, 1))
		e.cursorX = 0
	case 'G': // column absolute
		e.setCursor(p.param(0, 1)-1, e.cursorY)
	case 'd': // row absolute
		e.setCursor(e.cursorX, p.param(0, 1)-1)
	case 'H', 'f':
		e.setCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'J':
		e.eraseDisplay(p.rawParam(0))
	case 'K':
		e.eraseLine(p.rawParam(0))
	case 'm':
		e.applySGR(p.params)
	case 's':
		e.saveCursor()
	case 'u':
		e.restoreCursor()
	case 'h':
		e.setMode(p, true)
	case 'l':
		e.setMode(p, false)
	}
}

func (e *Emulator) dispatchEscape(fin byte) {
	switch fin {
	case '7':
		e.saveCursor()
	case '8':
		e.restoreCursor()
	case 'D':
		e.lineFeed()
	case 'E':
		e.lineFeed()
		e.cursorX = 0
	case 'M':
		e.reverseIndex()
	case 'c':
		e.resetLocked()
	}
}

func (e *Emulator) moveCursor(dx, dy int) {
	e.pending = false
	e.setCursor(e.cursorX+dx, e.cursorY+dy)
}

func (e *Emulator) setCursor(x, y int) {
	e.pending = false
	if x < 0 {
		x = 0
	}
	if x >= e.width {
		x = e.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= e.height {
		y = e.height - 1
	}
	e.cursorX = x
	e.cursorY = y
}

func (e *Emulator) saveCursor() {
	e.savedX = e.cursorX
	e.savedY = e.cursorY
	e.savedAttr = e.attr
}

func (e *Emulator) restoreCursor() {
	e.setCursor(e.savedX, e.savedY)
	e.attr = e.savedAttr
}

func (e *Emulator) eraseDisplay(mode int) {
	switch mode {
	case 0: // cursor to end
		e.eraseLine(0)
		for y := e.cursorY + 1; y < e.height; y++ {
			e.screen[y] = newRow(e.width)
		}
	case 1: // start to cursor
		e.eraseLine(1)
		for y := 0; y < e.cursorY; y++ {
			e.screen[y] = newRow(e.width)
		}
	case 2, 3:
		for y := 0; y < e.height; y++ {
			e.screen[y] = newRow(e.width)
		}
	}
}

func (e *Emulator) eraseLine(mode int) {
	row := e.screen[e.cursorY]
	switch mode {
	case 0:
		for x := e.cursorX; x < e.width; x++ {
			row[x] = blankCell(e.attr)
		}
	case 1:
		for x := 0; x <= e.cursorX && x < e.width; x++ {
			row[x] = blankCell(e.attr)
		}
	case 2:
		for x := 0; x < e.width; x++ {
			row[x] = blankCell(e.attr)
		}
	}
}

func (e *Emulator) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		v := params[i]
		switch {
		case v == 0:
			e.attr = DefaultAttributes()
		case v == 1:
			e.attr.Bold = true
		case v == 4:
			e.attr.Underline = true
		case v == 7:
			e.attr.Reverse = true
		case v == 22:
			e.attr.Bold = false
		case v == 24:
			e.attr.Underline = false
		case v == 27:
			e.attr.Reverse = false
		case v >= 30 && v <= 37:
			e.attr.Fg = v - 30
		case v == 38 && i+2 < len(params) && params[i+1] == 5:
			e.attr.Fg = params[i+2]
			i += 2
		case v == 39:
			e.attr.Fg = -1
		case v >= 40 && v <= 47:
			e.attr.Bg = v - 40
		case v == 48 && i+2 < len(params) && params[i+1] == 5:
			e.attr.Bg = params[i+2]
			i += 2
		case v == 49:
			e.attr.Bg = -1
		case v >= 90 && v <= 97:
			e.attr.Fg = v - 90 + 8
		case v >= 100 && v <= 107:
			e.attr.Bg = v - 100 + 8
		}
	}
}

func (e *Emulator) setMode(p *parser, on bool) {
	if !p.private {
		return
	}
	for i := range p.params {
		switch p.params[i] {
		case 7: // DECAWM
			e.wrap = on
		case 1049, 47, 1047: // alternate screen: treated as a clear
			e.eraseDisplay(2)
			e.setCursor(0, 0)
		}
	}
}
