//go:build tinygo && rp2040 && !expander

package main

import (
	"machine"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/hw"
)

// key matrix on GP2..GP9, port bit 0 first
var portPins = [8]machine.Pin{
	machine.GP2, machine.GP3, machine.GP4, machine.GP5,
	machine.GP6, machine.GP7, machine.GP8, machine.GP9,
}

func keyPort() (wheelremote.Port, bool, error) {
	return hw.NewMachinePort(portPins), false, nil
}
