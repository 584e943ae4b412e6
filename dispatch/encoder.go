package dispatch

import "github.com/sparques/wheelremote/matrix"

// Rotation is the direction resolved from two consecutive encoder contacts.
type Rotation int8

const (
	NoRotation Rotation = 0
	Forward    Rotation = 1
	Backward   Rotation = -1
)

// EncoderRotationState remembers the last encoder contact seen. The zero
// value has seen nothing. It is only cleared by constructing a new one, so
// the first step after a long pause is judged against a stale contact.
type EncoderRotationState struct {
	last matrix.KeyID
	seen bool
}

// Last reports the last contact, if any.
func (s *EncoderRotationState) Last() (matrix.KeyID, bool) {
	return s.last, s.seen
}

// Step resolves key against the previous contact and records key. phases
// is the forward order of the contacts.
func (s *EncoderRotationState) Step(phases []matrix.KeyID, key matrix.KeyID) Rotation {
	rot := NoRotation
	if s.seen {
		prev, cur := phaseOf(phases, s.last), phaseOf(phases, key)
		n := len(phases)
		switch {
		case prev < 0 || cur < 0 || prev == cur:
		case (prev+1)%n == cur:
			rot = Forward
		case (cur+1)%n == prev:
			rot = Backward
		}
	}
	s.last, s.seen = key, true
	return rot
}

func phaseOf(phases []matrix.KeyID, key matrix.KeyID) int {
	for i, k := range phases {
		if k == key {
			return i
		}
	}
	return -1
}
