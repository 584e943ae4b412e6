//go:build tinygo && rp2040 && bench

package main

import (
	"machine"

	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/hw"
)

// With -tags bench, loop GP15 back into GP14 and watch the serial console.
func init() {
	sm := alpine.NewStateMachine(func(c alpine.Command) {
		println("bench: " + c.String())
	}, func() {
		println("bench: repeat")
	})
	sm.ErrHandler = func(err error) {
		println("bench: " + err.Error())
	}
	if err := hw.NewMonitor(machine.GP14, sm).Start(); err != nil {
		println("bench: " + err.Error())
	}
}
