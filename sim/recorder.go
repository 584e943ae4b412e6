package sim

import (
	"fmt"
	"time"

	"github.com/sparques/wheelremote"
	"github.com/sparques/wheelremote/alpine"
)

// Event is one frame recovered from the line.
type Event struct {
	At      time.Duration
	Repeat  bool
	Command alpine.Command
}

func (e Event) String() string {
	if e.Repeat {
		return "repeat"
	}
	return e.Command.String()
}

// Recorder decodes everything sent on a Line.
type Recorder struct {
	clock  *Clock
	Events []Event
	Errors []error
	// Pairs holds every raw pair seen on the line.
	Pairs wheelremote.Capture
}

// NewRecorder wires a Line to a decoding Recorder.
func NewRecorder(clock *Clock) (*Recorder, *Line) {
	r := &Recorder{clock: clock}
	sm := alpine.NewStateMachine(r.command, r.repeat)
	sm.ErrHandler = func(err error) { r.Errors = append(r.Errors, err) }
	return r, NewLine(clock, wheelremote.MultiRxStateMachine(sm, &r.Pairs))
}

func (r *Recorder) command(c alpine.Command) {
	r.Events = append(r.Events, Event{At: r.clock.Now(), Command: c})
}

func (r *Recorder) repeat() {
	r.Events = append(r.Events, Event{At: r.clock.Now(), Repeat: true})
}

// Summary lists events by name, e.g. [NextTrack repeat repeat].
func (r *Recorder) Summary() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.String()
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Events, r.Errors, r.Pairs = nil, nil, nil
}

func (r *Recorder) String() string {
	return fmt.Sprint(r.Summary())
}
