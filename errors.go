package dht11

import (
	"errors"
	"fmt"
)

var ErrNilReading = errors.New("dht11: nil reading destination")
var ErrChecksum = errors.New("dht11: checksum mismatch")
var ErrTimeout = errors.New("dht11: timeout")

// Protocol steps reported by StepTimeoutError.
const (
	StepAckLow    = "ack-low"
	StepAckHigh   = "ack-high"
	StepDataStart = "data-start"
	StepBitSignal = "bit-signal"
	StepBitPulse  = "bit-pulse"
)

// StepTimeoutError names the protocol step that blew its timing budget.
// Bit is the data bit index (0-39) for the per-bit steps, -1 otherwise.
// It unwraps to ErrTimeout so callers can match the whole class.
type StepTimeoutError struct {
	Step string
	Bit  int
}

func (e *StepTimeoutError) Error() string {
	if e.Bit >= 0 {
		return fmt.Sprintf("dht11: timeout at %s (bit %d)", e.Step, e.Bit)
	}
	return fmt.Sprintf("dht11: timeout at %s", e.Step)
}

func (e *StepTimeoutError) Unwrap() error { return ErrTimeout }
