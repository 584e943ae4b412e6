package wheelremote

import (
	"fmt"
	"time"
)

// TxDevice emits mark/space frames on an OutputPin.
type TxDevice struct {
	pin   OutputPin
	delay Delay
}

func NewTxDevice(pin OutputPin, delay Delay) *TxDevice {
	return &TxDevice{
		pin:   pin,
		delay: delay,
	}
}

// SendPair holds the pin high for pair[0] and low for pair[1]. A zero
// duration skips the wait but still toggles the level.
func (tx *TxDevice) SendPair(pair TimePair) error {
	if err := tx.pin.Set(true); err != nil {
		return err
	}
	tx.wait(pair[0])
	if err := tx.pin.Set(false); err != nil {
		return err
	}
	tx.wait(pair[1])
	return nil
}

// SendPairs sends pairs back to back. The pin must already be driven.
func (tx *TxDevice) SendPairs(pairs ...TimePair) error {
	for _, p := range pairs {
		if err := tx.SendPair(p); err != nil {
			return err
		}
	}
	return nil
}

// SendFrame drives the pin for the length of one frame and always hands it
// back to tri-state idle, even when a pair fails halfway.
func (tx *TxDevice) SendFrame(fm FrameMarshaller) (err error) {
	release, err := Drive(tx.pin)
	if err != nil {
		return fmt.Errorf("tx: drive output: %w", err)
	}
	defer func() {
		if rerr := release(); err == nil && rerr != nil {
			err = fmt.Errorf("tx: release output: %w", rerr)
		}
	}()
	return tx.SendPairs(fm.MarshalFrame()...)
}

func (tx *TxDevice) SendFrames(fms ...FrameMarshaller) error {
	for _, fm := range fms {
		if err := tx.SendFrame(fm); err != nil {
			return err
		}
	}
	return nil
}

func (tx *TxDevice) wait(d time.Duration) {
	if d > 0 {
		tx.delay.Sleep(d)
	}
}
