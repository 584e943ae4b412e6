//go:build !tinygo

package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/sparques/wheelremote"
)

// InitHost loads the periph.io host drivers. Call it once before opening pins.
func InitHost() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph: %w", err)
	}
	return nil
}

func lookup(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", wheelremote.ErrPinUnavailable, name)
	}
	return p, nil
}

// PeriphPort is an 8-bit port assembled from host GPIO lines. An empty name
// leaves that bit unconnected; it reads low and ignores writes.
type PeriphPort struct {
	pins [8]gpio.PinIO
	dir  uint8
	out  uint8
}

// NewPeriphPort opens the named lines as pulled-up inputs.
func NewPeriphPort(names [8]string) (*PeriphPort, error) {
	p := &PeriphPort{dir: 0xFF}
	for i, n := range names {
		if n == "" {
			continue
		}
		pin, err := lookup(n)
		if err != nil {
			return nil, err
		}
		p.pins[i] = pin
	}
	if err := p.apply(0xFF); err != nil {
		return nil, err
	}
	return p, nil
}

// apply reconfigures the bits in changed.
func (p *PeriphPort) apply(changed uint8) error {
	for i, pin := range p.pins {
		mask := uint8(1) << i
		if pin == nil || changed&mask == 0 {
			continue
		}
		var err error
		if p.dir&mask != 0 {
			err = pin.In(gpio.PullUp, gpio.NoEdge)
		} else {
			err = pin.Out(gpio.Level(p.out&mask != 0))
		}
		if err != nil {
			return fmt.Errorf("periph: %s: %w", pin, err)
		}
	}
	return nil
}

func (p *PeriphPort) SetDirection(inputs uint8) error {
	changed := p.dir ^ inputs
	p.dir = inputs
	return p.apply(changed)
}

func (p *PeriphPort) Direction() uint8 {
	return p.dir
}

func (p *PeriphPort) Write(levels uint8) error {
	changed := (p.out ^ levels) &^ p.dir
	p.out = levels
	return p.apply(changed)
}

func (p *PeriphPort) Read() (uint8, error) {
	var v uint8
	for i, pin := range p.pins {
		if pin != nil && pin.Read() == gpio.High {
			v |= 1 << i
		}
	}
	return v, nil
}

// PeriphPin is the protocol output on a host GPIO line. Undriven, the line
// floats so the head unit's own pull-up holds it idle.
type PeriphPin struct {
	pin    gpio.PinIO
	driven bool
	level  bool
}

func NewPeriphPin(name string) (*PeriphPin, error) {
	pin, err := lookup(name)
	if err != nil {
		return nil, err
	}
	p := &PeriphPin{pin: pin}
	if err := p.Drive(false); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PeriphPin) Drive(on bool) error {
	var err error
	if on {
		err = p.pin.Out(gpio.Level(p.level))
	} else {
		err = p.pin.In(gpio.Float, gpio.NoEdge)
	}
	if err != nil {
		return fmt.Errorf("periph: %s: %w", p.pin, err)
	}
	p.driven = on
	return nil
}

func (p *PeriphPin) Set(level bool) error {
	p.level = level
	if !p.driven {
		return nil
	}
	if err := p.pin.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("periph: %s: %w", p.pin, err)
	}
	return nil
}
