package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/dispatch"
	"github.com/sparques/wheelremote/matrix"
	"github.com/sparques/wheelremote/sim"
)

const ms = time.Millisecond

// countedKeys reports key down for its first n reads, counting every read.
type countedKeys struct {
	key   matrix.KeyID
	n     int
	reads map[matrix.KeyID]int
}

func (c *countedKeys) IsPressed(k matrix.KeyID) (bool, error) {
	if c.reads == nil {
		c.reads = map[matrix.KeyID]int{}
	}
	c.reads[k]++
	return k == c.key && c.reads[k] <= c.n, nil
}

type events struct {
	log []string
}

func (e *events) Press(k matrix.KeyID) error {
	e.log = append(e.log, "press "+k.String())
	return nil
}

func (e *events) Repeat(k matrix.KeyID) error {
	e.log = append(e.log, "repeat "+k.String())
	return nil
}

type clock struct{ now time.Duration }

func (c *clock) Sleep(d time.Duration) { c.now += d }

func TestLoop_PressRepeatRelease(t *testing.T) {
	keys := &countedKeys{key: matrix.KeyVolumeDown, n: 3}
	ev, clk := &events{}, &clock{}
	l := New(keys, ev, clk, matrix.KeyCount)

	if s := l.State(); s.Active {
		t.Fatalf("initial state %v, want idle", s)
	}

	wantStates := []State{
		{Active: true, Key: matrix.KeyVolumeDown},
		{Active: true, Key: matrix.KeyVolumeDown},
		{Active: true, Key: matrix.KeyVolumeDown},
		{},
	}
	for i, want := range wantStates {
		if err := l.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if got := l.State(); got != want {
			t.Errorf("after step %d state = %v, want %v", i+1, got, want)
		}
	}
	if clk.now != DefaultReleaseSettle {
		t.Errorf("slept %v, want release settle %v", clk.now, DefaultReleaseSettle)
	}

	want := fmt.Sprint([]string{"press Volume-", "repeat Volume-", "repeat Volume-"})
	if got := fmt.Sprint(ev.log); got != want {
		t.Errorf("events %s, want %s", got, want)
	}

	// keys before the pressed one were scanned once, later ones never
	for k := matrix.KeyID(0); k < matrix.KeyVolumeDown; k++ {
		if keys.reads[k] != 1 {
			t.Errorf("%v read %d times, want 1", k, keys.reads[k])
		}
	}
	for k := matrix.KeyVolumeDown + 1; int(k) < matrix.KeyCount; k++ {
		if keys.reads[k] != 0 {
			t.Errorf("%v read %d times while another key was active", k, keys.reads[k])
		}
	}
}

func TestLoop_IdleDoesNothing(t *testing.T) {
	keys := &countedKeys{}
	ev, clk := &events{}, &clock{}
	l := New(keys, ev, clk, matrix.KeyCount)

	for i := 0; i < 50; i++ {
		if err := l.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if l.State().Active {
			t.Fatalf("step %d left idle", i)
		}
	}
	if len(ev.log) != 0 {
		t.Errorf("idle loop produced %v", ev.log)
	}
	if clk.now != 50*DefaultIdlePoll {
		t.Errorf("slept %v, want %v", clk.now, 50*DefaultIdlePoll)
	}
	for k := matrix.KeyID(0); int(k) < matrix.KeyCount; k++ {
		if keys.reads[k] != 50 {
			t.Errorf("%v read %d times, want 50", k, keys.reads[k])
		}
	}
}

var errPort = errors.New("port gone")

type brokenKeys struct{}

func (brokenKeys) IsPressed(matrix.KeyID) (bool, error) { return false, errPort }

func TestLoop_Run(t *testing.T) {
	l := New(brokenKeys{}, &events{}, &clock{}, matrix.KeyCount)
	if err := l.Run(context.Background()); !errors.Is(err, errPort) {
		t.Errorf("Run() error = %v, want %v", err, errPort)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l = New(&countedKeys{}, &events{}, &clock{}, matrix.KeyCount)
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
}

// stack is the whole remote on simulated hardware.
type stack struct {
	clock *sim.Clock
	kb    *sim.Keyboard
	rec   *sim.Recorder
	line  *sim.Line
	dev   *Device
}

func newStack(t *testing.T, cfg Config) *stack {
	t.Helper()
	s := &stack{clock: &sim.Clock{}}
	s.kb = sim.NewKeyboard(s.clock, cfg.Wiring)
	s.rec, s.line = sim.NewRecorder(s.clock)
	dev, err := NewDevice(s.kb, s.line, s.clock, cfg)
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	s.dev = dev
	return s
}

func (s *stack) runUntil(t *testing.T, end time.Duration) {
	t.Helper()
	for s.clock.Now() < end {
		if err := s.dev.Loop.Step(); err != nil {
			t.Fatalf("Step() at %v error = %v", s.clock.Now(), err)
		}
	}
	if s.line.Driven() {
		t.Error("output left driven")
	}
	if s.kb.Direction() != 0xFF {
		t.Errorf("port direction %#x, want all inputs", s.kb.Direction())
	}
	if len(s.rec.Errors) != 0 {
		t.Errorf("undecodable frames: %v", s.rec.Errors)
	}
}

func summary(s *stack) string {
	return fmt.Sprint(s.rec.Summary())
}

// Keys 0-4 take 100ms to scan, so a key 5 press seen at 100ms sends its
// frame and settles by ~228ms, then repeats on the polls at ~228ms and
// ~301ms; the release at 350ms is caught on the poll at ~373ms.
func TestDevice_DirectKeyEndToEnd(t *testing.T) {
	s := newStack(t, Config{})
	s.kb.Hold(matrix.KeyVolumeDown, 90*ms, 260*ms)
	s.runUntil(t, 2*time.Second)

	if got, want := summary(s), "[NextTrack repeat repeat]"; got != want {
		t.Errorf("line carried %s, want %s", got, want)
	}
	if s.dev.Loop.State().Active {
		t.Error("loop still active after release")
	}
}

// Released at 240ms, before the first poll after the press settles, so
// the line carries the press frame and nothing else.
func TestDevice_DirectKeyTap(t *testing.T) {
	s := newStack(t, Config{})
	s.kb.Hold(matrix.KeyVolumeDown, 90*ms, 150*ms)
	s.runUntil(t, 2*time.Second)

	if got, want := summary(s), "[NextTrack]"; got != want {
		t.Errorf("line carried %s, want %s", got, want)
	}
	if s.dev.Loop.State().Active {
		t.Error("loop still active after release")
	}
}

func TestDevice_SourceKeyEndToEnd(t *testing.T) {
	layout := dispatch.DefaultLayout
	layout[matrix.KeyVolumeDown] = dispatch.DirectKey(alpine.Source)
	s := newStack(t, Config{Layout: &layout})
	s.kb.Hold(matrix.KeyVolumeDown, 90*ms, 260*ms)
	s.runUntil(t, 2*time.Second)

	if got, want := summary(s), "[Source repeat repeat]"; got != want {
		t.Errorf("line carried %s, want %s", got, want)
	}
}

func TestDevice_EncoderEndToEnd(t *testing.T) {
	s := newStack(t, Config{})
	// one contact at a time, each released long before the next
	at := 0 * ms
	for _, k := range []matrix.KeyID{matrix.Encoder0, matrix.Encoder1, matrix.Encoder2, matrix.Encoder0, matrix.Encoder2} {
		s.kb.Hold(k, at, 400*ms)
		at += time.Second
	}
	s.runUntil(t, at+time.Second)

	if got, want := summary(s), "[VolumeUp VolumeUp VolumeUp VolumeDown]"; got != want {
		t.Errorf("line carried %s, want %s", got, want)
	}
}

func TestDevice_HoldKeyEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		hold time.Duration
		want string
	}{
		{"tap", 200 * ms, "[Band]"},
		{"medium", 800 * ms, "[Source]"},
		// long hold sends Band and then repeats until released
		{"long", 1400 * ms, "[Band repeat repeat repeat]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStack(t, Config{})
			s.kb.Hold(matrix.KeyBand, 0, tt.hold)
			s.runUntil(t, 4*time.Second)
			if got := summary(s); got != tt.want {
				t.Errorf("line carried %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDevice_BadLayout(t *testing.T) {
	layout := dispatch.DefaultLayout
	layout[matrix.Encoder1] = dispatch.DirectKey(alpine.Mute)
	clk := &sim.Clock{}
	_, line := sim.NewRecorder(clk)
	if _, err := NewDevice(sim.NewKeyboard(clk, nil), line, clk, Config{Layout: &layout}); !errors.Is(err, dispatch.ErrBadLayout) {
		t.Errorf("NewDevice() error = %v, want %v", err, dispatch.ErrBadLayout)
	}
}
