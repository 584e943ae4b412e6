package wheelremote

import "time"

// RxStateMachine consumes mark/space pairs as they are recovered from a line.
type RxStateMachine interface {
	HandleTimePair(TimePair)
}

type multiRxStateMachine []RxStateMachine

func (mrsm multiRxStateMachine) HandleTimePair(pair TimePair) {
	for i := range mrsm {
		mrsm[i].HandleTimePair(pair)
	}
}

// MultiRxStateMachine accepts a list of RxStateMachines and returns an object
// that also implements RxStateMachine. When HandleTimePair is called against it,
// it calls HandleTimePair against all the RxStateMachines used to define it.
// In this way, you can feed one captured line to a decoder and a logger at once.
func MultiRxStateMachine(rsm ...RxStateMachine) multiRxStateMachine {
	return multiRxStateMachine(rsm)
}

// RxDevice turns level changes into TimePairs. Edge times are offsets from
// any fixed origin; only differences matter.
type RxDevice struct {
	lastEdge     time.Duration
	lastHigh     time.Duration
	pending      bool
	stateMachine RxStateMachine
}

func NewRxDevice(rsm RxStateMachine) *RxDevice {
	return &RxDevice{stateMachine: rsm}
}

// Edge records the line moving to level at time at.
func (rx *RxDevice) Edge(level bool, at time.Duration) {
	if level {
		// rising edge closes the space of the previous mark
		if rx.pending {
			rx.stateMachine.HandleTimePair(TimePair{rx.lastHigh, at - rx.lastEdge})
			rx.pending = false
		}
	} else {
		rx.lastHigh = at - rx.lastEdge
		rx.pending = true
	}
	rx.lastEdge = at
}

// Flush emits a trailing mark with no space, as seen when the transmitter
// lets the line go idle right after its last mark.
func (rx *RxDevice) Flush() {
	if !rx.pending {
		return
	}
	rx.stateMachine.HandleTimePair(TimePair{rx.lastHigh, 0})
	rx.pending = false
}

// Capture collects pairs for later inspection.
type Capture []TimePair

func (c *Capture) HandleTimePair(pair TimePair) {
	*c = append(*c, pair)
}
