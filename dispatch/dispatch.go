// Package dispatch turns key events into head unit commands according to
// each key's binding.
package dispatch

import (
	"fmt"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/matrix"
)

const (
	DefaultHoldWindow = 500 * time.Millisecond
	DefaultSettle     = 41 * time.Millisecond
)

// Sender transmits commands. *alpine.Sender implements it.
type Sender interface {
	Send(alpine.Command) error
	Repeat() error
}

// Keys reports key state. *matrix.Scanner implements it.
type Keys interface {
	IsPressed(matrix.KeyID) (bool, error)
}

type Dispatcher struct {
	layout Layout
	phases []matrix.KeyID
	keys   Keys
	sender Sender
	delay  wheelremote.Delay

	encoder EncoderRotationState

	// HoldWindow is each of the two waits a HoldDisambiguate key goes through.
	HoldWindow time.Duration
	// Settle follows every press and repeat to ride out contact chatter.
	Settle time.Duration
}

// New validates layout and returns a Dispatcher with no encoder history.
func New(layout Layout, keys Keys, sender Sender, delay wheelremote.Delay) (*Dispatcher, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{
		layout:     layout,
		phases:     layout.EncoderPhases(),
		keys:       keys,
		sender:     sender,
		delay:      delay,
		HoldWindow: DefaultHoldWindow,
		Settle:     DefaultSettle,
	}, nil
}

func (d *Dispatcher) binding(key matrix.KeyID) (Binding, error) {
	if int(key) >= len(d.layout) {
		return Binding{}, fmt.Errorf("dispatch: %w: %d", matrix.ErrUnknownKey, key)
	}
	return d.layout[key], nil
}

// Press handles a key that has just gone down.
func (d *Dispatcher) Press(key matrix.KeyID) error {
	b, err := d.binding(key)
	if err != nil {
		return err
	}

	switch b.mode {
	case Direct:
		err = d.sender.Send(b.primary)
	case HoldDisambiguate:
		err = d.hold(key, b)
	case QuadratureEncoder:
		err = d.rotate(&d.encoder, key, b)
	}
	if err != nil {
		return err
	}
	d.delay.Sleep(d.Settle)
	return nil
}

// Repeat handles a key that is still down on a later poll. Encoder
// contacts are momentary and send nothing.
func (d *Dispatcher) Repeat(key matrix.KeyID) error {
	b, err := d.binding(key)
	if err != nil {
		return err
	}
	if b.mode != QuadratureEncoder {
		if err := d.sender.Repeat(); err != nil {
			return err
		}
	}
	d.delay.Sleep(d.Settle)
	return nil
}

// hold waits out up to two windows. Released after the first is a tap,
// released after the second a medium hold, still down a long hold.
func (d *Dispatcher) hold(key matrix.KeyID, b Binding) error {
	d.delay.Sleep(d.HoldWindow)
	down, err := d.keys.IsPressed(key)
	if err != nil {
		return err
	}
	if !down {
		return d.sender.Send(b.primary)
	}

	d.delay.Sleep(d.HoldWindow)
	down, err = d.keys.IsPressed(key)
	if err != nil {
		return err
	}
	if !down {
		return d.sender.Send(b.secondary)
	}
	return d.sender.Send(b.primary)
}

func (d *Dispatcher) rotate(state *EncoderRotationState, key matrix.KeyID, b Binding) error {
	switch state.Step(d.phases, key) {
	case Forward:
		return d.sender.Send(b.primary)
	case Backward:
		return d.sender.Send(b.secondary)
	}
	return nil
}

// LastEncoderKey exposes the rotation state.
func (d *Dispatcher) LastEncoderKey() (matrix.KeyID, bool) {
	return d.encoder.Last()
}
