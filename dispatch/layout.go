package dispatch

import (
	"errors"
	"fmt"

	"github.com/sparques/wheelremote/alpine"
	"github.com/sparques/wheelremote/matrix"
)

// Mode selects how a key turns into commands.
type Mode uint8

const (
	// Direct sends Primary on press and repeat frames while held.
	Direct Mode = iota
	// HoldDisambiguate tells a tap or long hold (Primary) from a medium
	// hold (Secondary).
	HoldDisambiguate
	// QuadratureEncoder keys are the contacts of a rotary encoder; a step
	// forward sends Primary, a step backward Secondary.
	QuadratureEncoder
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case HoldDisambiguate:
		return "hold"
	case QuadratureEncoder:
		return "encoder"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Direct, HoldDisambiguate, QuadratureEncoder} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: mode %q", ErrBadLayout, s)
}

// Binding is one key's behaviour. Only DirectKey, HoldKey and EncoderKey
// make one, so the commands always match the mode. The zero Binding is
// DirectKey(alpine.VolumeUp).
type Binding struct {
	mode      Mode
	primary   alpine.Command
	secondary alpine.Command
}

func DirectKey(cmd alpine.Command) Binding {
	return Binding{mode: Direct, primary: cmd, secondary: cmd}
}

func HoldKey(tap, hold alpine.Command) Binding {
	return Binding{mode: HoldDisambiguate, primary: tap, secondary: hold}
}

func EncoderKey(forward, backward alpine.Command) Binding {
	return Binding{mode: QuadratureEncoder, primary: forward, secondary: backward}
}

func (b Binding) Mode() Mode { return b.mode }

// Primary is the Direct command, the hold key's tap command or the
// encoder's forward step.
func (b Binding) Primary() alpine.Command { return b.primary }

// Secondary is the hold key's medium-hold command or the encoder's backward
// step. For Direct it equals Primary.
func (b Binding) Secondary() alpine.Command { return b.secondary }

func (b Binding) String() string {
	if b.mode == Direct {
		return fmt.Sprintf("%v(%v)", b.mode, b.primary)
	}
	return fmt.Sprintf("%v(%v, %v)", b.mode, b.primary, b.secondary)
}

// Layout binds every key of the matrix.
type Layout [matrix.KeyCount]Binding

var ErrBadLayout = errors.New("bad layout")

// DefaultLayout is the stock wheel: the encoder steps volume, Band doubles
// as Source on a medium hold, the rest are plain buttons.
var DefaultLayout = Layout{
	matrix.Encoder0:      EncoderKey(alpine.VolumeUp, alpine.VolumeDown),
	matrix.Encoder1:      EncoderKey(alpine.VolumeUp, alpine.VolumeDown),
	matrix.Encoder2:      EncoderKey(alpine.VolumeUp, alpine.VolumeDown),
	matrix.KeyBand:       HoldKey(alpine.Band, alpine.Source),
	matrix.KeyVolumeUp:   DirectKey(alpine.PrevTrack),
	matrix.KeyVolumeDown: DirectKey(alpine.NextTrack),
	matrix.KeySourceDown: DirectKey(alpine.FolderUp),
	matrix.KeyMute:       DirectKey(alpine.Play),
	matrix.KeySourceUp:   DirectKey(alpine.FolderDown),
}

// EncoderPhases lists the encoder keys in forward rotation order.
func (l *Layout) EncoderPhases() []matrix.KeyID {
	var phases []matrix.KeyID
	for k, b := range l {
		if b.mode == QuadratureEncoder {
			phases = append(phases, matrix.KeyID(k))
		}
	}
	return phases
}

// Validate checks modes and commands and that the encoder, if any, has
// exactly three contacts.
func (l *Layout) Validate() error {
	for k, b := range l {
		switch b.mode {
		case Direct, HoldDisambiguate, QuadratureEncoder:
		default:
			return fmt.Errorf("%w: key %v: %v", ErrBadLayout, matrix.KeyID(k), b.mode)
		}
		if !b.primary.Valid() || !b.secondary.Valid() {
			return fmt.Errorf("%w: key %v: %w", ErrBadLayout, matrix.KeyID(k), alpine.ErrUnknownCommand)
		}
		if b.mode == Direct && b.primary != b.secondary {
			return fmt.Errorf("%w: key %v: direct binding with two commands", ErrBadLayout, matrix.KeyID(k))
		}
	}
	if n := len(l.EncoderPhases()); n != 0 && n != 3 {
		return fmt.Errorf("%w: encoder needs 3 contacts, have %d", ErrBadLayout, n)
	}
	return nil
}
