//go:build tinygo && rp2040 && expander

package main

import (
	"machine"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/hw"
)

// key matrix on a PCF8574 at the default address, SDA GP4, SCL GP5. Its
// pull-ups make a closed key read low.
func keyPort() (wheelremote.Port, bool, error) {
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5}); err != nil {
		return nil, false, err
	}
	port, err := hw.NewExpanderPort(bus, 0)
	if err != nil {
		return nil, false, err
	}
	return port, true, nil
}
