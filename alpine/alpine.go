// alpine implements the wired remote protocol spoken by Alpine head units:
// the fixed command table, frame marshalling and a decoding StateMachine.
package alpine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sparques/wheelremote"
)

// PacketSize is the number of bytes in one command packet.
const PacketSize = 4

// Packet is the byte sequence identifying one command, sent in order with
// each byte least-significant bit first.
type Packet [PacketSize]byte

// Command indexes the packet table.
type Command uint8

const (
	VolumeUp Command = iota
	VolumeDown
	Mute
	FolderUp
	FolderDown
	Source
	PrevTrack
	NextTrack
	Power
	Play
	Band

	CommandCount = int(Band) + 1
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownPacket  = errors.New("packet not in command table")
)

var packets = [CommandCount]Packet{
	VolumeUp:   {0x86, 0x72, 0x14, 0xEB},
	VolumeDown: {0x86, 0x72, 0x15, 0xEA},
	Mute:       {0x86, 0x72, 0x16, 0xE9},
	FolderUp:   {0x86, 0x72, 0x0E, 0xF1},
	FolderDown: {0x86, 0x72, 0x0F, 0xF0},
	Source:     {0x86, 0x72, 0x0A, 0xF5},
	PrevTrack:  {0x86, 0x72, 0x12, 0xED},
	NextTrack:  {0x86, 0x72, 0x13, 0xEC},
	Power:      {0x86, 0x72, 0x09, 0xF6},
	Play:       {0x86, 0x72, 0x07, 0xF8},
	Band:       {0x86, 0x72, 0x0D, 0xF2},
}

var names = [CommandCount]string{
	"VolumeUp", "VolumeDown", "Mute", "FolderUp", "FolderDown",
	"Source", "PrevTrack", "NextTrack", "Power", "Play", "Band",
}

func (c Command) Valid() bool {
	return int(c) < CommandCount
}

func (c Command) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
	return names[c]
}

// Packet returns the table entry for c.
func (c Command) Packet() (Packet, error) {
	if !c.Valid() {
		return Packet{}, fmt.Errorf("%w: %d", ErrUnknownCommand, uint8(c))
	}
	return packets[c], nil
}

// ParseCommand looks a command up by its String name.
func ParseCommand(name string) (Command, error) {
	for i, n := range names {
		if n == name {
			return Command(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Lookup finds the command whose packet is p.
func Lookup(p Packet) (Command, error) {
	for i := range packets {
		if packets[i] == p {
			return Command(i), nil
		}
	}
	return 0, fmt.Errorf("%w: % X", ErrUnknownPacket, p[:])
}

// Frame timing, in protocol ticks.
const (
	LeaderMarkTicks  = 16
	LeaderSpaceTicks = 8
	RepeatSpaceTicks = 4
	BitMarkTicks     = 1
	OneSpaceTicks    = 3
	ZeroSpaceTicks   = 1
	TrailMarkTicks   = 1
)

var (
	LeaderPair = wheelremote.Ticks(LeaderMarkTicks, LeaderSpaceTicks)
	RepeatPair = wheelremote.Ticks(LeaderMarkTicks, RepeatSpaceTicks)
	OnePair    = wheelremote.Ticks(BitMarkTicks, OneSpaceTicks)
	ZeroPair   = wheelremote.Ticks(BitMarkTicks, ZeroSpaceTicks)
	TrailPair  = wheelremote.Ticks(TrailMarkTicks, 0)
)

// FramePairs is the number of pairs in a full command frame.
const FramePairs = 1 + PacketSize*8 + 1

// Frame is a full command transmission.
type Frame struct {
	Packet Packet
}

// NewFrame returns the frame for c.
func NewFrame(c Command) (Frame, error) {
	p, err := c.Packet()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Packet: p}, nil
}

func (f Frame) MarshalFrame() []wheelremote.TimePair {
	out := make([]wheelremote.TimePair, 0, FramePairs)
	out = append(out, LeaderPair)
	for _, b := range f.Packet {
		for bit := 0; bit < 8; bit++ {
			if (b>>bit)&1 == 1 {
				out = append(out, OnePair)
			} else {
				out = append(out, ZeroPair)
			}
		}
	}
	return append(out, TrailPair)
}

// Repeat asks the head unit to continue the previous command.
type Repeat struct{}

func (Repeat) MarshalFrame() []wheelremote.TimePair {
	return []wheelremote.TimePair{RepeatPair, TrailPair}
}

// StateMachine decodes frames from recovered pairs. It is the receiving
// side of Frame and Repeat and is used to verify captured waveforms.
type StateMachine struct {
	CmdHandler    func(Command)
	RepeatHandler func()
	// ErrHandler, if set, sees packets that are not in the table.
	ErrHandler func(error)

	buf      uint32
	bitcount int
	inFrame  bool
}

func NewStateMachine(cmdHandler func(Command), repeatHandler func()) *StateMachine {
	return &StateMachine{CmdHandler: cmdHandler, RepeatHandler: repeatHandler}
}

// within reports whether d is n ticks give or take a quarter tick per tick.
func within(d time.Duration, n int) bool {
	want := time.Duration(n) * wheelremote.Tick
	slack := want / 4
	return d >= want-slack && d <= want+slack
}

// HandleTimePair implements the wheelremote.RxStateMachine interface
func (sm *StateMachine) HandleTimePair(pair wheelremote.TimePair) {
	on, off := pair[0], pair[1]

	if within(on, LeaderMarkTicks) {
		sm.buf = 0
		sm.bitcount = 0
		sm.inFrame = false
		switch {
		case within(off, LeaderSpaceTicks):
			sm.inFrame = true
		case within(off, RepeatSpaceTicks):
			if sm.RepeatHandler != nil {
				sm.RepeatHandler()
			}
		}
		return
	}

	if !sm.inFrame || !within(on, BitMarkTicks) {
		return
	}

	switch {
	case within(off, OneSpaceTicks):
		sm.buf |= 1 << sm.bitcount
	case within(off, ZeroSpaceTicks):
	default:
		// not a bit; drop the frame
		sm.inFrame = false
		return
	}
	sm.bitcount++

	if sm.bitcount != PacketSize*8 {
		return
	}
	sm.inFrame = false

	var p Packet
	for i := range p {
		p[i] = byte(sm.buf >> (8 * i))
	}
	cmd, err := Lookup(p)
	if err != nil {
		if sm.ErrHandler != nil {
			sm.ErrHandler(err)
		}
		return
	}
	if sm.CmdHandler != nil {
		sm.CmdHandler(cmd)
	}
}
