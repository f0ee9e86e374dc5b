package dht11

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// MinReadInterval is the shortest interval the sensor tolerates between two
// transactions. Callers that retry after a failure must also wait it out.
const MinReadInterval = 2 * time.Second

const frameBits = 40

// Timing is the per-step budget of the transaction, in microseconds.
// The defaults match the sensor's datasheet figures; tests override them
// through WithTiming to drive edge cases deterministically.
type Timing struct {
	StabilizeUS    int // high hold before the start condition
	StartLowUS     int // host start condition, low phase
	StartReleaseUS int // release hold before handing the line to the sensor
	AckTimeoutUS   int // budget for each acknowledgement phase
	BitTimeoutUS   int // budget for each phase of a data bit
	OneThresholdUS int // a high pulse longer than this decodes as '1'
}

func DefaultTiming() Timing {
	return Timing{
		StabilizeUS:    1000,
		StartLowUS:     20000,
		StartReleaseUS: 40,
		AckTimeoutUS:   100,
		BitTimeoutUS:   100,
		OneThresholdUS: 40,
	}
}

// Reading is one successful measurement. The sensor reports integer degrees
// Celsius and integer %RH; the fractional frame bytes are always zero.
type Reading struct {
	Temperature float32
	Humidity    float32
}

type Option func(*Sensor)

// WithDelay replaces the busy-delay primitive, typically with a simulated
// clock in tests.
func WithDelay(delay DelayFunc) Option {
	return func(s *Sensor) {
		s.delay = delay
	}
}

func WithTiming(timing Timing) Option {
	return func(s *Sensor) {
		s.timing = timing
	}
}

// Sensor drives a DHT11 over a single data line.
//
// Typical usage:
//
//	s := dht11.New(line)
//	var r dht11.Reading
//	err := s.Read(&r)
//
// Read busy-waits for the whole transaction (worst case tens of
// milliseconds) and must not be called concurrently for the same line: the
// protocol assumes exclusive ownership of the line. There is no mid-flight
// cancellation; the per-step timeouts bound the transaction on their own.
type Sensor struct {
	line   Line
	delay  DelayFunc
	timing Timing

	// Latest successful values, stored as float32 bits. The two fields are
	// updated independently; readers racing a transaction may observe one
	// field from an older reading, which is accepted.
	lastTemp atomic.Uint32
	lastHum  atomic.Uint32
}

func New(line Line, opts ...Option) *Sensor {
	s := &Sensor{
		line:   line,
		delay:  BusyDelay,
		timing: DefaultTiming(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read performs one full transaction: start condition, acknowledgement
// handshake, 40 data bits, checksum. On success it fills reading and updates
// the latest-reading cache. On any failure reading and the cache are left
// untouched and the error names the step that failed; the engine never
// retries, that is the caller's call after MinReadInterval.
func (s *Sensor) Read(reading *Reading) error {
	if reading == nil {
		return ErrNilReading
	}

	if err := s.line.OutputOpenDrain(); err != nil {
		return fmt.Errorf("dht11: could not switch line to output: %w", err)
	}
	if err := s.line.SetLevel(true); err != nil {
		return fmt.Errorf("dht11: could not drive line high: %w", err)
	}
	s.delay(s.timing.StabilizeUS)

	// Start condition: hold low, then release.
	if err := s.line.SetLevel(false); err != nil {
		return fmt.Errorf("dht11: could not drive line low: %w", err)
	}
	s.delay(s.timing.StartLowUS)
	if err := s.line.SetLevel(true); err != nil {
		return fmt.Errorf("dht11: could not release line: %w", err)
	}
	s.delay(s.timing.StartReleaseUS)

	// The sensor owns the line from here until the transaction ends.
	if err := s.line.Input(); err != nil {
		return fmt.Errorf("dht11: could not switch line to input: %w", err)
	}

	// Acknowledgement: ~80us low followed by ~80us high, then the low
	// separator of the first bit.
	if !s.waitLevel(false, s.timing.AckTimeoutUS) {
		return &StepTimeoutError{Step: StepAckLow, Bit: -1}
	}
	if !s.waitLevel(true, s.timing.AckTimeoutUS) {
		return &StepTimeoutError{Step: StepAckHigh, Bit: -1}
	}
	if !s.waitLevel(false, s.timing.AckTimeoutUS) {
		return &StepTimeoutError{Step: StepDataStart, Bit: -1}
	}

	var frame [5]byte
	for i := 0; i < frameBits; i++ {
		if !s.waitLevel(true, s.timing.BitTimeoutUS) {
			return &StepTimeoutError{Step: StepBitSignal, Bit: i}
		}
		duration := s.measurePulse(true, s.timing.BitTimeoutUS)
		if duration < 0 {
			return &StepTimeoutError{Step: StepBitPulse, Bit: i}
		}
		if duration > s.timing.OneThresholdUS {
			frame[i/8] |= 1 << (7 - i%8)
		}
	}

	sum := frame[0] + frame[1] + frame[2] + frame[3]
	if sum != frame[4] {
		return fmt.Errorf("%w: computed %#02x, received %#02x", ErrChecksum, sum, frame[4])
	}

	reading.Humidity = float32(frame[0])
	reading.Temperature = float32(frame[2])
	s.lastHum.Store(math.Float32bits(reading.Humidity))
	s.lastTemp.Store(math.Float32bits(reading.Temperature))
	return nil
}

// LastTemperature returns the temperature of the most recent successful
// transaction, zero before the first one. It pairs with LastHumidity but the
// two are read independently, not as an atomic snapshot.
func (s *Sensor) LastTemperature() float32 {
	return math.Float32frombits(s.lastTemp.Load())
}

// LastHumidity returns the humidity of the most recent successful
// transaction, zero before the first one.
func (s *Sensor) LastHumidity() float32 {
	return math.Float32frombits(s.lastHum.Load())
}

// waitLevel polls the line once per microsecond until it reaches the target
// level. It reports false once the number of polls exceeds timeoutUS without
// a match.
func (s *Sensor) waitLevel(high bool, timeoutUS int) bool {
	for elapsed := 0; s.line.Level() != high; elapsed++ {
		if elapsed > timeoutUS {
			return false
		}
		s.delay(1)
	}
	return true
}

// measurePulse polls once per microsecond while the line holds the given
// level and returns the elapsed count, or -1 once the count exceeds
// timeoutUS before the level changes.
func (s *Sensor) measurePulse(high bool, timeoutUS int) int {
	elapsed := 0
	for s.line.Level() == high {
		if elapsed > timeoutUS {
			return -1
		}
		elapsed++
		s.delay(1)
	}
	return elapsed
}
