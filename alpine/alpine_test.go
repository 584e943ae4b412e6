package alpine

import (
	"errors"
	"testing"
	"time"

	"github.com/sparques/wheelremote"
)

func TestPacketTable(t *testing.T) {
	tests := []struct {
		cmd  Command
		want Packet
	}{
		{VolumeUp, Packet{0x86, 0x72, 0x14, 0xEB}},
		{VolumeDown, Packet{0x86, 0x72, 0x15, 0xEA}},
		{Mute, Packet{0x86, 0x72, 0x16, 0xE9}},
		{FolderUp, Packet{0x86, 0x72, 0x0E, 0xF1}},
		{FolderDown, Packet{0x86, 0x72, 0x0F, 0xF0}},
		{Source, Packet{0x86, 0x72, 0x0A, 0xF5}},
		{PrevTrack, Packet{0x86, 0x72, 0x12, 0xED}},
		{NextTrack, Packet{0x86, 0x72, 0x13, 0xEC}},
		{Power, Packet{0x86, 0x72, 0x09, 0xF6}},
		{Play, Packet{0x86, 0x72, 0x07, 0xF8}},
		{Band, Packet{0x86, 0x72, 0x0D, 0xF2}},
	}
	if len(tests) != CommandCount {
		t.Fatalf("table has %d commands, test covers %d", CommandCount, len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			got, err := tt.cmd.Packet()
			if err != nil {
				t.Fatalf("Packet() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Packet() = % X, want % X", got, tt.want)
			}
			if got[2] != ^got[3] {
				t.Errorf("byte 3 %#x is not the complement of byte 2 %#x", got[3], got[2])
			}
			back, err := Lookup(got)
			if err != nil || back != tt.cmd {
				t.Errorf("Lookup() = %v, %v, want %v", back, err, tt.cmd)
			}
			parsed, err := ParseCommand(tt.cmd.String())
			if err != nil || parsed != tt.cmd {
				t.Errorf("ParseCommand(%q) = %v, %v", tt.cmd.String(), parsed, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := Command(CommandCount).Packet(); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Packet() error = %v, want %v", err, ErrUnknownCommand)
	}
	if _, err := NewFrame(Command(200)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("NewFrame() error = %v, want %v", err, ErrUnknownCommand)
	}
	if _, err := ParseCommand("Eject"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("ParseCommand() error = %v, want %v", err, ErrUnknownCommand)
	}
	if _, err := Lookup(Packet{1, 2, 3, 4}); !errors.Is(err, ErrUnknownPacket) {
		t.Errorf("Lookup() error = %v, want %v", err, ErrUnknownPacket)
	}
}

func TestFrame_MarshalFrame(t *testing.T) {
	f, err := NewFrame(VolumeUp)
	if err != nil {
		t.Fatal(err)
	}
	pairs := f.MarshalFrame()

	if len(pairs) != FramePairs {
		t.Fatalf("len = %d, want %d", len(pairs), FramePairs)
	}
	if pairs[0] != wheelremote.Ticks(16, 8) {
		t.Errorf("leader = %v, want 16:8 ticks", pairs[0])
	}
	if pairs[len(pairs)-1] != wheelremote.Ticks(1, 0) {
		t.Errorf("trailer = %v, want 1:0 ticks", pairs[len(pairs)-1])
	}

	// 0x86 least significant bit first
	firstByte := []wheelremote.TimePair{ZeroPair, OnePair, OnePair, ZeroPair, ZeroPair, ZeroPair, ZeroPair, OnePair}
	for i, want := range firstByte {
		if pairs[1+i] != want {
			t.Errorf("bit %d = %v, want %v", i, pairs[1+i], want)
		}
	}

	if OnePair != wheelremote.Ticks(1, 3) || ZeroPair != wheelremote.Ticks(1, 1) {
		t.Errorf("bit pairs = %v/%v, want 1:3 and 1:1 ticks", OnePair, ZeroPair)
	}
}

func TestRepeat_MarshalFrame(t *testing.T) {
	got := Repeat{}.MarshalFrame()
	want := []wheelremote.TimePair{wheelremote.Ticks(16, 4), wheelremote.Ticks(1, 0)}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("MarshalFrame() = %v, want %v", got, want)
	}
}

func scale(pairs []wheelremote.TimePair, num, den int64) []wheelremote.TimePair {
	out := make([]wheelremote.TimePair, len(pairs))
	for i, p := range pairs {
		out[i] = wheelremote.TimePair{
			time.Duration(int64(p[0]) * num / den),
			time.Duration(int64(p[1]) * num / den),
		}
	}
	return out
}

func TestStateMachine_RoundTrip(t *testing.T) {
	for _, stretch := range []struct {
		name     string
		num, den int64
	}{
		{"exact", 1, 1},
		{"slow", 11, 10},
		{"fast", 9, 10},
	} {
		t.Run(stretch.name, func(t *testing.T) {
			for c := Command(0); c.Valid(); c++ {
				var got []Command
				repeats := 0
				sm := NewStateMachine(func(c Command) { got = append(got, c) }, func() { repeats++ })

				f, _ := NewFrame(c)
				for _, p := range scale(f.MarshalFrame(), stretch.num, stretch.den) {
					sm.HandleTimePair(p)
				}
				for _, p := range scale(Repeat{}.MarshalFrame(), stretch.num, stretch.den) {
					sm.HandleTimePair(p)
				}

				if len(got) != 1 || got[0] != c {
					t.Errorf("%v: decoded %v", c, got)
				}
				if repeats != 1 {
					t.Errorf("%v: %d repeats, want 1", c, repeats)
				}
			}
		})
	}
}

func TestStateMachine_Rejects(t *testing.T) {
	var errs []error
	var got []Command
	sm := NewStateMachine(func(c Command) { got = append(got, c) }, nil)
	sm.ErrHandler = func(err error) { errs = append(errs, err) }

	// valid framing around a packet that is not in the table
	bad := Frame{Packet: Packet{0x86, 0x72, 0x14, 0x00}}
	for _, p := range bad.MarshalFrame() {
		sm.HandleTimePair(p)
	}
	if len(got) != 0 {
		t.Errorf("decoded %v from a foreign packet", got)
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownPacket) {
		t.Errorf("errors = %v, want one %v", errs, ErrUnknownPacket)
	}

	// a garbled bit drops the frame
	f, _ := NewFrame(Mute)
	pairs := f.MarshalFrame()
	pairs[5] = wheelremote.Ticks(1, 6)
	for _, p := range pairs {
		sm.HandleTimePair(p)
	}
	if len(got) != 0 {
		t.Errorf("decoded %v from a garbled frame", got)
	}

	// bits without a leader are ignored
	for _, p := range pairs[1:] {
		sm.HandleTimePair(p)
	}
	if len(got) != 0 {
		t.Errorf("decoded %v without a leader", got)
	}
}

type txLog struct {
	driven bool
	marks  int
}

func (l *txLog) Drive(on bool) error {
	l.driven = on
	return nil
}

func (l *txLog) Set(level bool) error {
	if level {
		l.marks++
	}
	return nil
}

func TestSender(t *testing.T) {
	var slept time.Duration
	pin := &txLog{}
	s := NewSender(wheelremote.NewTxDevice(pin, wheelremote.DelayFunc(func(d time.Duration) { slept += d })))

	if err := s.Send(Power); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if pin.marks != FramePairs {
		t.Errorf("marks = %d, want %d", pin.marks, FramePairs)
	}
	f, _ := NewFrame(Power)
	if want := wheelremote.FrameDuration(f); slept != want {
		t.Errorf("frame took %v, want %v", slept, want)
	}

	slept = 0
	if err := s.Repeat(); err != nil {
		t.Fatalf("Repeat() error = %v", err)
	}
	if want := 21 * wheelremote.Tick; slept != want {
		t.Errorf("repeat took %v, want %v", slept, want)
	}
	if pin.driven {
		t.Error("pin left driven")
	}

	if err := s.Send(Command(CommandCount)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Send() error = %v, want %v", err, ErrUnknownCommand)
	}
}
