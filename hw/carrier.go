//go:build tinygo

package hw

import (
	. "machine"

	"github.com/sparques/pwm"

	"github.com/sparques/wheelremote"
)

// CarrierPin sends marks as bursts of a 38kHz carrier on an IR LED, for
// head units that take the commands optically instead of on a wire.
type CarrierPin struct {
	pin    Pin
	pgroup pwm.Group
	ch     uint8
	duty   uint32
	driven bool
}

func NewCarrierPin(pin Pin) (*CarrierPin, error) {
	pin.Configure(PinConfig{Mode: PinPWM})
	pgroup := pwm.Get(pin)
	if err := pgroup.Configure(PWMConfig{Period: uint64(1e9) / uint64(wheelremote.Freq38Khz)}); err != nil {
		return nil, err
	}
	ch, err := pgroup.Channel(pin)
	if err != nil {
		return nil, err
	}
	pgroup.Set(ch, 0)
	return &CarrierPin{
		pin:    pin,
		pgroup: pgroup,
		ch:     ch,
		duty:   pgroup.Top() / 3,
	}, nil
}

// Drive gates the carrier. The LED is dark whenever the pin is not driven.
func (c *CarrierPin) Drive(on bool) error {
	c.driven = on
	if !on {
		c.pgroup.Set(c.ch, 0)
	}
	return nil
}

func (c *CarrierPin) Set(level bool) error {
	if c.driven && level {
		c.pgroup.Set(c.ch, c.duty)
	} else {
		c.pgroup.Set(c.ch, 0)
	}
	return nil
}
