//go:build tinygo && rp2040 && ir

package main

import (
	"machine"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/hw"
)

func outputPin() (wheelremote.OutputPin, error) {
	return hw.NewCarrierPin(machine.GP16)
}
