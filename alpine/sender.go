package alpine

import (
	"fmt"

	"github.com/sparques/wheelremote"
)

// Sender transmits commands and repeat frames over a TxDevice.
type Sender struct {
	tx *wheelremote.TxDevice
}

func NewSender(tx *wheelremote.TxDevice) *Sender {
	return &Sender{tx: tx}
}

// Send transmits the full frame for c. It blocks for the whole frame.
func (s *Sender) Send(c Command) error {
	f, err := NewFrame(c)
	if err != nil {
		return err
	}
	if err := s.tx.SendFrame(f); err != nil {
		return fmt.Errorf("alpine: send %v: %w", c, err)
	}
	return nil
}

// Repeat transmits a repeat frame.
func (s *Sender) Repeat() error {
	if err := s.tx.SendFrame(Repeat{}); err != nil {
		return fmt.Errorf("alpine: send repeat: %w", err)
	}
	return nil
}
