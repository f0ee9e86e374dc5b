// Package poll runs the sensor on a fixed cadence and reports every cycle.
package poll

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mklimuk/dht11"
)

// Reader is the single driver operation the poller needs.
type Reader interface {
	Read(*dht11.Reading) error
}

type Option func(*Poller)

func WithLogger(log *slog.Logger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

// WithInterval sets the read cadence. Intervals shorter than the sensor's
// minimum inter-transaction interval are clamped up to it.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithHandler registers a callback invoked with every successful reading.
func WithHandler(handler func(dht11.Reading)) Option {
	return func(p *Poller) {
		p.handler = handler
	}
}

// Poller reads the sensor periodically, keeps success/failure counters and
// logs every cycle. Each read busy-waits for tens of milliseconds, so run
// the poller on its own goroutine, off any latency-sensitive path.
type Poller struct {
	sensor   Reader
	interval time.Duration
	log      *slog.Logger
	handler  func(dht11.Reading)

	successes atomic.Uint64
	failures  atomic.Uint64
}

func New(sensor Reader, opts ...Option) *Poller {
	p := &Poller{
		sensor:   sensor,
		interval: dht11.MinReadInterval,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval < dht11.MinReadInterval {
		p.interval = dht11.MinReadInterval
	}
	return p
}

// Run reads once immediately, then on every tick, until ctx is cancelled.
// A failed read is logged and counted, never escalated: the next cycle runs
// as a fresh transaction.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.cycle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) cycle() {
	var reading dht11.Reading
	if err := p.sensor.Read(&reading); err != nil {
		p.failures.Add(1)
		p.log.Error("sensor read failed",
			"error", err,
			"successes", p.successes.Load(),
			"failures", p.failures.Load())
		return
	}
	p.successes.Add(1)
	p.log.Info("sensor read",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"successes", p.successes.Load(),
		"failures", p.failures.Load())
	if p.handler != nil {
		p.handler(reading)
	}
}

// Counters returns how many cycles succeeded and failed so far.
func (p *Poller) Counters() (successes, failures uint64) {
	return p.successes.Load(), p.failures.Load()
}
