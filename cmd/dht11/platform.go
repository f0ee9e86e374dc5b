package main

import (
	"fmt"

	ggpio "gobot.io/x/gobot/v2/drivers/gpio"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/dht11"
	"github.com/mklimuk/dht11/gpio"
)

// openLine resolves a data line from the platform flag. The default is the
// periph.io character-device backend; "nanopi" goes through the gobot
// NeoAdaptor instead.
func openLine(platform, pin string) (dht11.Line, error) {
	switch platform {
	case "", "periph":
		return gpio.Open(pin)
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		if err := npi.Connect(); err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		return &gobotLine{conn: npi, pin: pin, level: 1}, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
}

// gobotDigital is the slice of a gobot adaptor the line needs.
type gobotDigital interface {
	ggpio.DigitalReader
	ggpio.DigitalWriter
}

// gobotLine adapts a gobot digital pin to dht11.Line. Gobot sets the pin
// direction implicitly on the first read or write, so the explicit mode
// switches reduce to priming writes and reads.
type gobotLine struct {
	conn  gobotDigital
	pin   string
	level byte
}

func (l *gobotLine) OutputOpenDrain() error {
	return l.conn.DigitalWrite(l.pin, l.level)
}

func (l *gobotLine) Input() error {
	_, err := l.conn.DigitalRead(l.pin)
	return err
}

func (l *gobotLine) SetLevel(high bool) error {
	l.level = 0
	if high {
		l.level = 1
	}
	return l.conn.DigitalWrite(l.pin, l.level)
}

func (l *gobotLine) Level() bool {
	val, err := l.conn.DigitalRead(l.pin)
	return err == nil && val == 1
}
