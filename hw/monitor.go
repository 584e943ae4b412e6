//go:build tinygo

package hw

import (
	"machine"
	"time"

	"github.com/sparques/wheelremote"
)

// Monitor decodes a line looped back into pin, e.g. to check a harness
// on the bench. Pairs are delivered from the interrupt handler.
type Monitor struct {
	pin   machine.Pin
	rx    *wheelremote.RxDevice
	start time.Time
}

func NewMonitor(pin machine.Pin, rsm wheelremote.RxStateMachine) *Monitor {
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return &Monitor{
		pin:   pin,
		rx:    wheelremote.NewRxDevice(rsm),
		start: time.Now(),
	}
}

func (m *Monitor) interruptHandler(interruptPin machine.Pin) {
	m.rx.Edge(interruptPin.Get(), time.Since(m.start))
}

// Start sets the interrupt handler and thus starts decoding.
func (m *Monitor) Start() error {
	return m.pin.SetInterrupt(machine.PinFalling|machine.PinRising, m.interruptHandler)
}

// Stop disables the interrupt handler and flushes a trailing mark.
func (m *Monitor) Stop() error {
	err := m.pin.SetInterrupt(machine.PinFalling|machine.PinRising, nil)
	m.rx.Flush()
	return err
}
