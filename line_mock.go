package dht11

// LinePhase is one segment of a scripted line timeline: the line holds High
// for US virtual microseconds before the next phase begins.
type LinePhase struct {
	High bool
	US   int
}

// SimLine is an in-memory data line driven by a scripted timeline and a
// virtual microsecond clock, so the protocol engine can be exercised without
// hardware. Its Delay method is the clock: wire it into the sensor with
// WithDelay(sim.Delay) and every poll advances virtual time instead of
// spinning.
//
// While the host holds the line in output mode Level reports whatever the
// host drove last. The script is anchored at the moment Input is called (the
// instant a real sensor would see the line released); once the script is
// exhausted the line settles at the idle level, high by default as if held
// by the pull-up.
type SimLine struct {
	phases  []LinePhase
	idleLow bool

	now    int // virtual clock, microseconds
	start  int // script anchor, set by Input
	output bool
	driven bool

	interactions int
}

func NewSimLine(phases ...LinePhase) *SimLine {
	return &SimLine{phases: phases, driven: true}
}

// Delay advances the virtual clock. It is the DelayFunc for sensors under
// test.
func (l *SimLine) Delay(us int) {
	l.now += us
}

func (l *SimLine) OutputOpenDrain() error {
	l.interactions++
	l.output = true
	return nil
}

func (l *SimLine) Input() error {
	l.interactions++
	l.output = false
	l.start = l.now
	return nil
}

func (l *SimLine) SetLevel(high bool) error {
	l.interactions++
	l.driven = high
	return nil
}

func (l *SimLine) Level() bool {
	if l.output {
		return l.driven
	}
	offset := l.now - l.start
	for _, p := range l.phases {
		if offset < p.US {
			return p.High
		}
		offset -= p.US
	}
	return !l.idleLow
}

// Script replaces the timeline. The new script anchors at the next Input
// call, so a single SimLine can serve several transactions in sequence.
func (l *SimLine) Script(phases ...LinePhase) {
	l.phases = phases
}

// IdleLow makes the exhausted-script level low instead of high, simulating a
// missing pull-up or a stuck line.
func (l *SimLine) IdleLow() *SimLine {
	l.idleLow = true
	return l
}

// Interactions returns how many times the host touched the line (mode
// switches and level writes).
func (l *SimLine) Interactions() int {
	return l.interactions
}

// FrameScript builds the timeline a sensor produces for the given 5-byte
// frame: a short release gap, the two acknowledgement phases, then one low
// separator plus one high pulse per bit, '0' and '1' at the datasheet's
// nominal widths.
func FrameScript(frame [5]byte) []LinePhase {
	return FrameScriptWidths(frame, 26, 70)
}

// FrameScriptWidths is FrameScript with explicit '0' and '1' pulse widths,
// for tests that probe the decode threshold.
func FrameScriptWidths(frame [5]byte, zeroUS, oneUS int) []LinePhase {
	phases := []LinePhase{
		{High: true, US: 30}, // sensor reaction gap after release
		{High: false, US: 80},
		{High: true, US: 80},
	}
	for i := 0; i < frameBits; i++ {
		width := zeroUS
		if frame[i/8]&(1<<(7-i%8)) != 0 {
			width = oneUS
		}
		phases = append(phases,
			LinePhase{High: false, US: 50},
			LinePhase{High: true, US: width},
		)
	}
	// the sensor pulls low once more before releasing the line
	return append(phases, LinePhase{High: false, US: 50})
}
