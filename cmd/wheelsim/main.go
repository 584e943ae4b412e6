// wheelsim runs the remote against simulated hardware. Key presses come
// from the scenario section of a YAML config; every frame put on the line
// is decoded again and logged with its simulated time.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sparques/wheelremote/internal/config"
	"github.com/sparques/wheelremote/matrix"
	"github.com/sparques/wheelremote/remote"
	"github.com/sparques/wheelremote/sim"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML config with a scenario section")
		logLevel = flag.String("log-level", "", "Override logging level: error|warn|info|debug")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *logLevel != "" {
		if err := cfg.SetLogLevel(*logLevel); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	log := cfg.NewLogger(os.Stderr)
	events, err := run(cfg, log)
	if err != nil {
		log.Error("simulation failed", "err", err)
		os.Exit(1)
	}
	printEvents(os.Stdout, events)
}

// run plays the scenario to its end and returns the frames seen on the line.
func run(cfg config.Config, log *slog.Logger) ([]sim.Event, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	clock := &sim.Clock{}
	kb := sim.NewKeyboard(clock, nil)
	kb.ActiveLow = cfg.ActiveLow
	for _, p := range cfg.Scenario.Presses {
		kb.Hold(matrix.KeyID(p.Key), p.At, p.Hold)
	}
	rec, line := sim.NewRecorder(clock)

	dev, err := remote.NewDevice(kb, line, clock, remote.Config{
		Layout:    layout,
		ActiveLow: cfg.ActiveLow,
	})
	if err != nil {
		return nil, err
	}
	dev.Loop.Log = log

	seen := 0
	for clock.Now() < cfg.Scenario.Duration {
		if err := dev.Loop.Step(); err != nil {
			return rec.Events, err
		}
		for _, e := range rec.Events[seen:] {
			log.Info("frame", "at", e.At, "frame", e)
		}
		seen = len(rec.Events)
		for _, err := range rec.Errors {
			log.Warn("undecodable frame", "err", err)
		}
		rec.Errors = nil
	}
	if line.Driven() {
		return rec.Events, fmt.Errorf("output left driven at %v", clock.Now())
	}
	return rec.Events, nil
}

func printEvents(w io.Writer, events []sim.Event) {
	for _, e := range events {
		fmt.Fprintf(w, "%10v  %v\n", e.At, e)
	}
}
