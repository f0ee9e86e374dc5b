package dht11

import "time"

// Line is the single-wire data line the sensor hangs off. The host drives it
// only for the start condition; for the rest of the transaction the sensor
// owns it. Pull-up configuration is the adapter's (or the wiring's) concern.
type Line interface {
	// OutputOpenDrain switches the line to open-drain output so the host can
	// drive the start condition.
	OutputOpenDrain() error
	// Input releases the line back to the sensor until the next transaction.
	Input() error
	SetLevel(high bool) error
	Level() bool
}

// DelayFunc pauses for the given number of microseconds. Implementations must
// busy-wait rather than sleep: bit decoding polls the line once per
// microsecond and a scheduler round trip would wreck the timing.
type DelayFunc func(us int)

// BusyDelay spins on the monotonic clock. This is the default delay used
// against real hardware.
func BusyDelay(us int) {
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}
