package dht11

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimSensor(phases ...LinePhase) (*Sensor, *SimLine) {
	sim := NewSimLine(phases...)
	return New(sim, WithDelay(sim.Delay)), sim
}

func TestWaitLevel_Boundaries(t *testing.T) {
	t.Run("arrives one tick before budget", func(t *testing.T) {
		s, _ := newSimSensor(LinePhase{High: false, US: 99}, LinePhase{High: true, US: 1000})
		assert.True(t, s.waitLevel(true, 100))
	})
	t.Run("already at target", func(t *testing.T) {
		s, _ := newSimSensor(LinePhase{High: true, US: 1000})
		assert.True(t, s.waitLevel(true, 100))
	})
	t.Run("never arrives", func(t *testing.T) {
		sim := NewSimLine().IdleLow()
		s := New(sim, WithDelay(sim.Delay))
		assert.False(t, s.waitLevel(true, 100))
	})
}

func TestMeasurePulse(t *testing.T) {
	t.Run("returns elapsed count", func(t *testing.T) {
		s, _ := newSimSensor(LinePhase{High: true, US: 37}, LinePhase{High: false, US: 10})
		assert.Equal(t, 37, s.measurePulse(true, 100))
	})
	t.Run("sentinel on stuck level", func(t *testing.T) {
		s, _ := newSimSensor() // idles high forever
		assert.Equal(t, -1, s.measurePulse(true, 100))
	})
}

func TestSensor_Read(t *testing.T) {
	// 50%RH, 24C, checksum 0x32+0x18=0x4A
	frame := [5]byte{0x32, 0x00, 0x18, 0x00, 0x4A}

	s, _ := newSimSensor(FrameScript(frame)...)
	var reading Reading
	require.NoError(t, s.Read(&reading))
	assert.Equal(t, float32(50.0), reading.Humidity)
	assert.Equal(t, float32(24.0), reading.Temperature)
	assert.Equal(t, float32(50.0), s.LastHumidity())
	assert.Equal(t, float32(24.0), s.LastTemperature())
}

func TestSensor_Read_ValidFrames(t *testing.T) {
	tests := [][5]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00},
		{0x5F, 0x00, 0x2A, 0x00, 0x89},
		{0xFF, 0x00, 0xFF, 0x00, 0xFE}, // checksum wraps mod 256
	}
	for _, frame := range tests {
		t.Run(fmt.Sprintf("% x", frame[:]), func(t *testing.T) {
			s, _ := newSimSensor(FrameScript(frame)...)
			var reading Reading
			require.NoError(t, s.Read(&reading))
			assert.Equal(t, float32(frame[0]), reading.Humidity)
			assert.Equal(t, float32(frame[2]), reading.Temperature)
		})
	}
}

func TestSensor_Read_NilDestination(t *testing.T) {
	s, sim := newSimSensor(FrameScript([5]byte{0x32, 0x00, 0x18, 0x00, 0x4A})...)
	err := s.Read(nil)
	assert.ErrorIs(t, err, ErrNilReading)
	assert.Zero(t, sim.Interactions(), "the line must not be touched")
}

func TestSensor_Read_AckTimeout(t *testing.T) {
	// seed the cache with a good transaction first
	s, sim := newSimSensor(FrameScript([5]byte{0x32, 0x00, 0x18, 0x00, 0x4A})...)
	var reading Reading
	require.NoError(t, s.Read(&reading))

	// the sensor never pulls the line low
	sim.Script()
	var second Reading
	err := s.Read(&second)
	var step *StepTimeoutError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, StepAckLow, step.Step)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, second.Humidity)
	assert.Zero(t, second.Temperature)
	assert.Equal(t, float32(50.0), s.LastHumidity(), "cache must keep its last good value")
	assert.Equal(t, float32(24.0), s.LastTemperature())
}

func TestSensor_Read_ChecksumMismatch(t *testing.T) {
	s, sim := newSimSensor(FrameScript([5]byte{0x32, 0x00, 0x18, 0x00, 0x4A})...)
	var reading Reading
	require.NoError(t, s.Read(&reading))

	// all 40 bits delivered, checksum byte off by one
	sim.Script(FrameScript([5]byte{0x32, 0x00, 0x18, 0x00, 0x4B})...)
	var second Reading
	err := s.Read(&second)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.Zero(t, second.Humidity, "destination must stay untouched")
	assert.Zero(t, second.Temperature)
	assert.Equal(t, float32(50.0), s.LastHumidity())
	assert.Equal(t, float32(24.0), s.LastTemperature())
}

func TestSensor_Read_BitThresholdBoundary(t *testing.T) {
	// exactly 40us decodes as '0', 41us as '1'
	frame := [5]byte{0x32, 0x00, 0x18, 0x00, 0x4A}
	s, _ := newSimSensor(FrameScriptWidths(frame, 40, 41)...)
	var reading Reading
	require.NoError(t, s.Read(&reading))
	assert.Equal(t, float32(50.0), reading.Humidity)
	assert.Equal(t, float32(24.0), reading.Temperature)
}

func TestSensor_Read_PerBitTimeout(t *testing.T) {
	// acknowledgement completes, then the line goes dead before the first
	// bit's high phase
	phases := []LinePhase{
		{High: true, US: 30},
		{High: false, US: 80},
		{High: true, US: 80},
	}
	sim := NewSimLine(phases...).IdleLow()
	s := New(sim, WithDelay(sim.Delay))
	var reading Reading
	err := s.Read(&reading)
	var step *StepTimeoutError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, StepBitSignal, step.Step)
	assert.Equal(t, 0, step.Bit)
}

func TestStepTimeoutError_Format(t *testing.T) {
	assert.Equal(t, "dht11: timeout at ack-low", (&StepTimeoutError{Step: StepAckLow, Bit: -1}).Error())
	assert.Equal(t, "dht11: timeout at bit-pulse (bit 17)", (&StepTimeoutError{Step: StepBitPulse, Bit: 17}).Error())
}
