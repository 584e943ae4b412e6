//go:build tinygo && rp2040 && !ir

package main

import (
	"machine"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/hw"
)

func outputPin() (wheelremote.OutputPin, error) {
	return hw.NewMachinePin(machine.GP15), nil
}
