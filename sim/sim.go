// Package sim simulates the remote's hardware on a host: a virtual clock
// that fast-forwards on Sleep, a key matrix behind a Port, and an output
// line that records what was transmitted.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/matrix"
)

// Clock is a virtual clock. It implements wheelremote.Delay by advancing.
type Clock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
}

// Now is the time slept so far.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type hold struct {
	from, to time.Duration
}

// Keyboard is a Port with a key matrix behind it. A held key asserts its
// pull bit while its push bit is an output driven low.
type Keyboard struct {
	clock  *Clock
	wiring []matrix.Wiring
	holds  [][]hold

	dir uint8
	out uint8

	// ActiveLow makes an asserted pull bit read low and an idle one high.
	ActiveLow bool

	// Reads counts Read calls.
	Reads int
}

// NewKeyboard returns a keyboard with every port bit an input. A nil
// wiring selects matrix.DefaultWiring.
func NewKeyboard(clock *Clock, wiring []matrix.Wiring) *Keyboard {
	if wiring == nil {
		wiring = matrix.DefaultWiring[:]
	}
	return &Keyboard{
		clock:  clock,
		wiring: wiring,
		holds:  make([][]hold, len(wiring)),
		dir:    0xFF,
	}
}

// Hold presses key at time at for d.
func (k *Keyboard) Hold(key matrix.KeyID, at, d time.Duration) {
	k.holds[key] = append(k.holds[key], hold{from: at, to: at + d})
}

// Down reports whether key is physically held at time t.
func (k *Keyboard) Down(key matrix.KeyID, t time.Duration) bool {
	for _, h := range k.holds[key] {
		if t >= h.from && t < h.to {
			return true
		}
	}
	return false
}

func (k *Keyboard) SetDirection(inputs uint8) error {
	k.dir = inputs
	return nil
}

func (k *Keyboard) Direction() uint8 {
	return k.dir
}

func (k *Keyboard) Write(levels uint8) error {
	k.out = levels
	return nil
}

func (k *Keyboard) Read() (uint8, error) {
	k.Reads++
	now := k.clock.Now()

	var asserted uint8
	for i, w := range k.wiring {
		driven := k.dir&w.PushMask() == 0 && k.out&w.PushMask() == 0
		if driven && k.Down(matrix.KeyID(i), now) {
			asserted |= w.PullMask()
		}
	}

	inputs := asserted
	if k.ActiveLow {
		inputs = ^asserted
	}
	return k.out&^k.dir | inputs&k.dir, nil
}

// Line is the protocol output pin. It feeds the level it would put on the
// wire to an RxDevice.
type Line struct {
	clock  *Clock
	rx     *wheelremote.RxDevice
	driven bool
	level  bool

	// Frames counts Drive(true) calls.
	Frames int
	// Fail, if set, is returned by the next Set and then cleared.
	Fail error
}

// NewLine returns an idle line decoding into rsm.
func NewLine(clock *Clock, rsm wheelremote.RxStateMachine) *Line {
	return &Line{clock: clock, rx: wheelremote.NewRxDevice(rsm)}
}

// Driven reports whether the pin is out of tri-state.
func (l *Line) Driven() bool {
	return l.driven
}

func (l *Line) Drive(on bool) error {
	if on == l.driven {
		return nil
	}
	if on {
		l.Frames++
	}
	was := l.wire()
	l.driven = on
	l.edge(was)
	if !on {
		l.rx.Flush()
	}
	return nil
}

func (l *Line) Set(level bool) error {
	if err := l.Fail; err != nil {
		l.Fail = nil
		return fmt.Errorf("sim: line: %w", err)
	}
	was := l.wire()
	l.level = level
	l.edge(was)
	return nil
}

func (l *Line) wire() bool {
	return l.driven && l.level
}

func (l *Line) edge(was bool) {
	if now := l.wire(); now != was {
		l.rx.Edge(now, l.clock.Now())
	}
}
