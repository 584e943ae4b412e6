// Package matrix scans the steering-wheel key matrix. Keys share port bits:
// each key is closed between one push bit, driven as an output, and one pull
// bit read back as an input.
package matrix

import (
	"errors"
	"fmt"
	"time"

	"github.com/sparques/wheelremote"
)

// KeyID identifies a physical key.
type KeyID uint8

const KeyCount = 9

// Keys 0-2 are the three contacts of the rotary encoder.
const (
	Encoder0 KeyID = iota
	Encoder1
	Encoder2
	KeyBand
	KeyVolumeUp
	KeyVolumeDown
	KeySourceDown
	KeyMute
	KeySourceUp
)

var ErrUnknownKey = errors.New("unknown key")

var keyNames = [KeyCount]string{
	"Encoder0", "Encoder1", "Encoder2", "Band", "Volume+",
	"Volume-", "Source-", "Mute", "Source+",
}

func (k KeyID) String() string {
	if int(k) >= KeyCount {
		return fmt.Sprintf("Key(%d)", uint8(k))
	}
	return keyNames[k]
}

// Wiring names the port bits carrying one key's circuit.
type Wiring struct {
	Push uint8
	Pull uint8
}

func (w Wiring) PushMask() uint8 { return 1 << w.Push }
func (w Wiring) PullMask() uint8 { return 1 << w.Pull }

// DefaultWiring is the wheel remote's harness.
var DefaultWiring = [KeyCount]Wiring{
	{Push: 0, Pull: 1},
	{Push: 4, Pull: 1},
	{Push: 2, Pull: 1},
	{Push: 2, Pull: 5},
	{Push: 4, Pull: 5},
	{Push: 0, Pull: 5},
	{Push: 4, Pull: 3},
	{Push: 0, Pull: 3},
	{Push: 2, Pull: 3},
}

const (
	DefaultSamples        = 4
	DefaultSampleInterval = 5 * time.Millisecond
)

// Scanner answers whether a key is held, debounced as the AND of several
// timed samples.
type Scanner struct {
	port   wheelremote.Port
	delay  wheelremote.Delay
	wiring []Wiring

	Samples        int
	SampleInterval time.Duration
	// ActiveLow makes a low pull bit count as pressed. The stock harness
	// reads high when a key closes.
	ActiveLow bool
}

// NewScanner returns a Scanner over port. A nil wiring selects DefaultWiring.
func NewScanner(port wheelremote.Port, delay wheelremote.Delay, wiring []Wiring) *Scanner {
	if wiring == nil {
		wiring = DefaultWiring[:]
	}
	return &Scanner{
		port:           port,
		delay:          delay,
		wiring:         wiring,
		Samples:        DefaultSamples,
		SampleInterval: DefaultSampleInterval,
	}
}

// KeyCount is the number of keys the scanner knows about.
func (s *Scanner) KeyCount() int {
	return len(s.wiring)
}

// IsPressed drives only key's push bit low and samples its pull bit. Any
// sample that does not read asserted makes the result false; all samples
// are always taken so the call takes the same time either way. The port
// direction is restored before returning.
func (s *Scanner) IsPressed(key KeyID) (pressed bool, err error) {
	if int(key) >= len(s.wiring) {
		return false, fmt.Errorf("%w: %d", ErrUnknownKey, key)
	}
	w := s.wiring[key]

	if err := s.port.Write(0); err != nil {
		return false, fmt.Errorf("matrix: %v: %w", key, err)
	}
	release, err := wheelremote.Claim(s.port, w.PushMask())
	if err != nil {
		return false, fmt.Errorf("matrix: %v: claim push bit: %w", key, err)
	}
	defer func() {
		if rerr := release(); err == nil && rerr != nil {
			pressed, err = false, fmt.Errorf("matrix: %v: release push bit: %w", key, rerr)
		}
	}()

	pressed = true
	for i := 0; i < s.Samples; i++ {
		levels, err := s.port.Read()
		if err != nil {
			return false, fmt.Errorf("matrix: %v: %w", key, err)
		}
		high := levels&w.PullMask() != 0
		pressed = pressed && high != s.ActiveLow
		s.delay.Sleep(s.SampleInterval)
	}
	return pressed, nil
}
