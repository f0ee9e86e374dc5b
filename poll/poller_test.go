package poll

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/dht11"
)

// readerFunc lets tests script the driver behavior without hardware.
type readerFunc func(*dht11.Reading) error

func (f readerFunc) Read(r *dht11.Reading) error { return f(r) }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoller_ClampsInterval(t *testing.T) {
	p := New(readerFunc(func(*dht11.Reading) error { return nil }),
		WithInterval(100*time.Millisecond), WithLogger(discard()))
	assert.Equal(t, dht11.MinReadInterval, p.interval)

	p = New(readerFunc(func(*dht11.Reading) error { return nil }),
		WithInterval(5*time.Second), WithLogger(discard()))
	assert.Equal(t, 5*time.Second, p.interval)
}

func TestPoller_Counters(t *testing.T) {
	calls := 0
	p := New(readerFunc(func(r *dht11.Reading) error {
		calls++
		if calls%2 == 0 {
			return dht11.ErrChecksum
		}
		r.Temperature = 24
		r.Humidity = 50
		return nil
	}), WithLogger(discard()))

	for i := 0; i < 4; i++ {
		p.cycle()
	}
	successes, failures := p.Counters()
	assert.Equal(t, uint64(2), successes)
	assert.Equal(t, uint64(2), failures)
}

func TestPoller_Handler(t *testing.T) {
	var got []dht11.Reading
	p := New(readerFunc(func(r *dht11.Reading) error {
		r.Temperature = 24
		r.Humidity = 50
		return nil
	}), WithLogger(discard()), WithHandler(func(r dht11.Reading) {
		got = append(got, r)
	}))

	p.cycle()
	require.Len(t, got, 1)
	assert.Equal(t, float32(24), got[0].Temperature)
	assert.Equal(t, float32(50), got[0].Humidity)
}

func TestPoller_HandlerSkippedOnFailure(t *testing.T) {
	called := false
	p := New(readerFunc(func(*dht11.Reading) error { return dht11.ErrTimeout }),
		WithLogger(discard()), WithHandler(func(dht11.Reading) { called = true }))
	p.cycle()
	assert.False(t, called)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(readerFunc(func(*dht11.Reading) error { return nil }), WithLogger(discard()))
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	successes, _ := p.Counters()
	assert.Equal(t, uint64(1), successes, "first cycle runs before the cancel check")
}
