package wheelremote

import (
	"errors"
	"time"
)

var (
	// ErrPinUnavailable is returned by backends that cannot reach a pin.
	ErrPinUnavailable = errors.New("pin unavailable")
)

// Port is an 8-bit dual-purpose port. Direction bits follow the TRIS
// convention: a set bit is an input, a clear bit drives its Write level.
type Port interface {
	SetDirection(inputs uint8) error
	Direction() uint8
	Write(levels uint8) error
	Read() (uint8, error)
}

// OutputPin is the dedicated protocol output. Its idle state is tri-state
// (Drive(false)); while driven, Set selects the level.
type OutputPin interface {
	Drive(on bool) error
	Set(level bool) error
}

// Delay blocks the caller for d. Firmware busy-waits; the simulator
// advances a virtual clock.
type Delay interface {
	Sleep(d time.Duration)
}

// DelayFunc adapts a plain function to Delay. DelayFunc(time.Sleep) is the
// real thing.
type DelayFunc func(time.Duration)

func (f DelayFunc) Sleep(d time.Duration) { f(d) }

// Claim makes the bits in mask the port's only outputs, every other bit an
// input, and returns a func that puts the previous direction back. Callers
// defer the release so every exit path restores the port.
func Claim(port Port, mask uint8) (release func() error, err error) {
	prev := port.Direction()
	if err = port.SetDirection(0xFF &^ mask); err != nil {
		// best effort; the port may have half-applied the change
		port.SetDirection(prev)
		return nil, err
	}
	return func() error {
		return port.SetDirection(prev)
	}, nil
}

// Drive switches the output pin to active drive and returns a func that
// returns it to tri-state idle with its level low.
func Drive(pin OutputPin) (release func() error, err error) {
	if err = pin.Set(false); err != nil {
		return nil, err
	}
	if err = pin.Drive(true); err != nil {
		pin.Drive(false)
		return nil, err
	}
	return func() error {
		err := pin.Set(false)
		if derr := pin.Drive(false); derr != nil {
			return derr
		}
		return err
	}, nil
}
