//go:build tinygo

package hw

import (
	"machine"
)

// MachinePort is an 8-bit port built from board pins. Inputs use the
// internal pull-ups.
type MachinePort struct {
	pins [8]machine.Pin
	dir  uint8
	out  uint8
}

// NewMachinePort puts every pin in pulled-up input with its output level
// low. machine.NoPin leaves a bit unconnected.
func NewMachinePort(pins [8]machine.Pin) *MachinePort {
	p := &MachinePort{pins: pins, dir: 0xFF}
	p.apply(0xFF)
	return p
}

func (p *MachinePort) apply(changed uint8) {
	for i, pin := range p.pins {
		mask := uint8(1) << i
		if pin == machine.NoPin || changed&mask == 0 {
			continue
		}
		if p.dir&mask != 0 {
			pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
			continue
		}
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Set(p.out&mask != 0)
	}
}

func (p *MachinePort) SetDirection(inputs uint8) error {
	changed := p.dir ^ inputs
	p.dir = inputs
	p.apply(changed)
	return nil
}

func (p *MachinePort) Direction() uint8 {
	return p.dir
}

func (p *MachinePort) Write(levels uint8) error {
	changed := (p.out ^ levels) &^ p.dir
	p.out = levels
	p.apply(changed)
	return nil
}

func (p *MachinePort) Read() (uint8, error) {
	var v uint8
	for i, pin := range p.pins {
		if pin != machine.NoPin && pin.Get() {
			v |= 1 << i
		}
	}
	return v, nil
}

// MachinePin is the wired protocol output. Idle it is an input so the head
// unit's line floats high.
type MachinePin struct {
	pin    machine.Pin
	driven bool
	level  bool
}

func NewMachinePin(pin machine.Pin) *MachinePin {
	p := &MachinePin{pin: pin}
	p.Drive(false)
	return p
}

func (p *MachinePin) Drive(on bool) error {
	if on {
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.pin.Set(p.level)
	} else {
		p.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	p.driven = on
	return nil
}

func (p *MachinePin) Set(level bool) error {
	p.level = level
	if p.driven {
		p.pin.Set(level)
	}
	return nil
}
