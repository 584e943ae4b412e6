// Package wheelremote drives a car head unit from a steering-wheel key matrix.
//
// The root package holds the pieces shared by every layer: the mark/space
// TimePair, the hardware capabilities (Port, OutputPin, Delay) and the
// transmitter and receiver built on them. Protocol, scanning, dispatch and
// the superloop live in the alpine, matrix, dispatch and remote packages.
package wheelremote

import "time"

const (
	// Freq38Khz is the most commonly used frequency for IR remotes
	Freq38Khz = 38000

	// Tick is the elementary mark/space unit of the head unit protocol.
	Tick = 562 * time.Microsecond
)

// TimePair encodes two durations used to encode an on-off or off-on amount of time.
type TimePair [2]time.Duration

// Ticks builds a TimePair from a mark and a space counted in Ticks.
func Ticks(mark, space int) TimePair {
	return TimePair{time.Duration(mark) * Tick, time.Duration(space) * Tick}
}

// Duration is the total time the pair occupies on the wire.
func (p TimePair) Duration() time.Duration {
	return p[0] + p[1]
}

// FrameMarshaller defines an interface for marshalling data to slice of TimePairs
type FrameMarshaller interface {
	MarshalFrame() []TimePair
}

// FrameDuration sums the wire time of a marshalled frame.
func FrameDuration(fm FrameMarshaller) (d time.Duration) {
	for _, p := range fm.MarshalFrame() {
		d += p.Duration()
	}
	return
}
