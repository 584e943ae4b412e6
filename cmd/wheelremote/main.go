//go:build tinygo && rp2040

// wheelremote is the firmware: it scans the wheel's key matrix and sends
// Alpine commands on the wired remote input of the head unit. Build with
// -tags ir to send on an IR LED instead, and with -tags expander to scan
// the matrix through a PCF8574 on I2C0.
package main

import (
	"context"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/remote"
)

func main() {
	port, activeLow, err := keyPort()
	if err != nil {
		halt("key port", err)
	}
	out, err := outputPin()
	if err != nil {
		halt("output", err)
	}

	dev, err := remote.NewDevice(port, out, wheelremote.DelayFunc(time.Sleep), remote.Config{ActiveLow: activeLow})
	if err != nil {
		halt("config", err)
	}
	halt("loop", dev.Loop.Run(context.Background()))
}

func halt(what string, err error) {
	for {
		println("wheelremote: " + what + ": " + err.Error())
		time.Sleep(time.Second)
	}
}
