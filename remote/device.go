package remote

import (
	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/dispatch"
	"github.com/sparques/wheelremote/matrix"
)

// Config picks the wheel's build-time tables. The zero value is the stock
// wheel.
type Config struct {
	Layout    *dispatch.Layout
	Wiring    []matrix.Wiring
	ActiveLow bool
}

// Device is a fully wired remote.
type Device struct {
	Scanner    *matrix.Scanner
	Sender     *alpine.Sender
	Dispatcher *dispatch.Dispatcher
	Loop       *Loop
}

// NewDevice assembles scanner, sender, dispatcher and loop on top of the
// hardware capabilities.
func NewDevice(port wheelremote.Port, out wheelremote.OutputPin, delay wheelremote.Delay, cfg Config) (*Device, error) {
	layout := dispatch.DefaultLayout
	if cfg.Layout != nil {
		layout = *cfg.Layout
	}

	scanner := matrix.NewScanner(port, delay, cfg.Wiring)
	scanner.ActiveLow = cfg.ActiveLow
	sender := alpine.NewSender(wheelremote.NewTxDevice(out, delay))

	d, err := dispatch.New(layout, scanner, sender, delay)
	if err != nil {
		return nil, err
	}
	return &Device{
		Scanner:    scanner,
		Sender:     sender,
		Dispatcher: d,
		Loop:       New(scanner, d, delay, scanner.KeyCount()),
	}, nil
}
