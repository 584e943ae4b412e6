// Package remote is the superloop tying the scanner to the dispatcher.
package remote

import (
	"context"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/matrix"
)

const (
	DefaultIdlePoll      = 10 * time.Millisecond
	DefaultReleaseSettle = 500 * time.Millisecond
)

// Keys reports key state. *matrix.Scanner implements it.
type Keys interface {
	IsPressed(matrix.KeyID) (bool, error)
}

// Handler reacts to key events. *dispatch.Dispatcher implements it.
type Handler interface {
	Press(matrix.KeyID) error
	Repeat(matrix.KeyID) error
}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// State is the loop's ActiveKeyState: no key, or exactly one held key.
type State struct {
	Active bool
	Key    matrix.KeyID
}

func (s State) String() string {
	if !s.Active {
		return "idle"
	}
	return "active(" + s.Key.String() + ")"
}

type Loop struct {
	keys     Keys
	handler  Handler
	delay    wheelremote.Delay
	keyCount int

	state State

	IdlePoll      time.Duration
	ReleaseSettle time.Duration
	Log           Logger
}

// New returns an idle loop scanning keys 0..keyCount-1.
func New(keys Keys, handler Handler, delay wheelremote.Delay, keyCount int) *Loop {
	return &Loop{
		keys:          keys,
		handler:       handler,
		delay:         delay,
		keyCount:      keyCount,
		IdlePoll:      DefaultIdlePoll,
		ReleaseSettle: DefaultReleaseSettle,
	}
}

func (l *Loop) State() State {
	return l.state
}

// Step runs one pass of the superloop. While idle it scans keys in order and
// takes the first one down; while a key is active only that key is read.
func (l *Loop) Step() error {
	if l.state.Active {
		return l.stepActive()
	}
	return l.stepIdle()
}

func (l *Loop) stepIdle() error {
	for i := 0; i < l.keyCount; i++ {
		key := matrix.KeyID(i)
		down, err := l.keys.IsPressed(key)
		if err != nil {
			return err
		}
		if !down {
			continue
		}
		l.state = State{Active: true, Key: key}
		l.debug("key down", "key", key)
		return l.handler.Press(key)
	}
	l.delay.Sleep(l.IdlePoll)
	return nil
}

func (l *Loop) stepActive() error {
	key := l.state.Key
	down, err := l.keys.IsPressed(key)
	if err != nil {
		return err
	}
	if down {
		return l.handler.Repeat(key)
	}
	l.state = State{}
	l.debug("key up", "key", key)
	l.delay.Sleep(l.ReleaseSettle)
	return nil
}

// Run steps until ctx is done or a step fails. There is nothing to recover
// on the device, so callers halt on error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
}

func (l *Loop) debug(msg string, args ...any) {
	if l.Log != nil {
		l.Log.Debug(msg, args...)
	}
}
