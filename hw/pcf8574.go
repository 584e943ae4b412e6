// Package hw binds the remote's capabilities to real hardware. Which
// backends exist depends on the build: TinyGo boards get machine pins and
// the PWM IR carrier, hosts get periph.io pins, and both get the PCF8574
// expander port.
package hw

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// DefaultExpanderAddress is a PCF8574 with A0..A2 tied low.
const DefaultExpanderAddress = 0x20

// ExpanderPort is a key port on a PCF8574. Its pins are quasi-bidirectional:
// an input is a pin left high on its weak pull-up, an output low sinks
// current. A closed key grounds its pull bit, so scanners on this port run
// with ActiveLow set.
type ExpanderPort struct {
	bus  drivers.I2C
	addr uint16
	dir  uint8
	out  uint8
	buf  [1]byte
}

// NewExpanderPort talks to the expander at addr (0 for the default) and
// makes every pin an input.
func NewExpanderPort(bus drivers.I2C, addr uint8) (*ExpanderPort, error) {
	if addr == 0 {
		addr = DefaultExpanderAddress
	}
	p := &ExpanderPort{bus: bus, addr: uint16(addr), dir: 0xFF}
	if err := p.apply(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ExpanderPort) apply() error {
	// inputs float high on the pull-up; outputs take their written level
	p.buf[0] = p.dir | p.out
	if err := p.bus.Tx(p.addr, p.buf[:], nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	return nil
}

func (p *ExpanderPort) SetDirection(inputs uint8) error {
	p.dir = inputs
	return p.apply()
}

func (p *ExpanderPort) Direction() uint8 {
	return p.dir
}

func (p *ExpanderPort) Write(levels uint8) error {
	p.out = levels
	return p.apply()
}

func (p *ExpanderPort) Read() (uint8, error) {
	var r [1]byte
	if err := p.bus.Tx(p.addr, nil, r[:]); err != nil {
		return 0, fmt.Errorf("pcf8574: %w", err)
	}
	return r[0], nil
}
