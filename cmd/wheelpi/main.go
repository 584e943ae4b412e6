// wheelpi runs the remote on a Raspberry Pi, with the key matrix and the
// head unit line on GPIO pins named in the YAML config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/hw"
	"github.com/sparques/wheelremote/internal/config"
	"github.com/sparques/wheelremote/remote"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML config file")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("wheelpi stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	if err := hw.InitHost(); err != nil {
		return err
	}
	port, err := hw.NewPeriphPort(cfg.Pi.Port)
	if err != nil {
		return err
	}
	out, err := hw.NewPeriphPin(cfg.Pi.Output)
	if err != nil {
		return err
	}

	dev, err := remote.NewDevice(port, out, wheelremote.DelayFunc(time.Sleep), remote.Config{
		Layout:    layout,
		ActiveLow: cfg.ActiveLow,
	})
	if err != nil {
		return err
	}
	dev.Loop.Log = log
	log.Info("wheelpi running", "port", cfg.Pi.Port, "output", cfg.Pi.Output)
	return dev.Loop.Run(ctx)
}
