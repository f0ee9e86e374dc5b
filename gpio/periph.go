// Package gpio adapts host GPIO pins to the dht11 data line abstraction.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/dht11"
)

var _ dht11.Line = &PeriphLine{}

// PeriphLine drives a single-wire data line through a periph.io pin.
// Input mode enables the host pull-up when the platform supports it; an
// external 4.7k-10k pull-up between data and VCC is still recommended.
type PeriphLine struct {
	pin   gpio.PinIO
	level gpio.Level
}

// Open initializes the periph host drivers and resolves the pin by name
// ("GPIO4", "7", ...).
func Open(name string) (*PeriphLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	return &PeriphLine{pin: pin, level: gpio.High}, nil
}

func (l *PeriphLine) OutputOpenDrain() error {
	if err := l.pin.Out(l.level); err != nil {
		return fmt.Errorf("could not switch %s to output: %w", l.pin, err)
	}
	return nil
}

func (l *PeriphLine) Input() error {
	if err := l.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("could not switch %s to input: %w", l.pin, err)
	}
	return nil
}

func (l *PeriphLine) SetLevel(high bool) error {
	l.level = gpio.Level(high)
	if err := l.pin.Out(l.level); err != nil {
		return fmt.Errorf("could not drive %s: %w", l.pin, err)
	}
	return nil
}

func (l *PeriphLine) Level() bool {
	return bool(l.pin.Read())
}

// Pin exposes the underlying periph pin, mostly for diagnostics.
func (l *PeriphLine) Pin() gpio.PinIO {
	return l.pin
}
