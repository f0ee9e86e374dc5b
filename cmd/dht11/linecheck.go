package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/dht11/cmd/dht11/console"
)

// lineCmd is a wiring diagnostic: with no transaction in flight the pull-up
// should keep the data line high, so a low idle level points at a wiring or
// power problem.
var lineCmd = cli.Command{
	Name:  "line",
	Usage: "check the data line wiring",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "pin",
			Aliases: []string{"p"},
			Value:   "GPIO4",
			Usage:   "data line pin name",
		},
		&cli.StringFlag{
			Name:  "platform",
			Value: "periph",
			Usage: "gpio backend (periph, nanopi)",
		},
	},
	Action: func(c *cli.Context) error {
		line, err := openLine(c.String("platform"), c.String("pin"))
		if err != nil {
			return console.Exit(1, "line initialization error: %s", console.Red(err))
		}
		for {
			if err := line.Input(); err != nil {
				return console.Exit(1, "could not switch line to input: %s", console.Red(err))
			}
			stuck := false
			for i := 0; i < 3; i++ {
				level := line.Level()
				console.PInfof(console.PictoPin, "idle level sample #%d: %s (should be high)", i+1, levelString(level))
				if !level {
					stuck = true
				}
				time.Sleep(50 * time.Millisecond)
			}
			if !stuck {
				console.Printf("%s\n", console.Green("line idles high - wiring looks OK"))
				return nil
			}
			console.PInfof(console.PictoStop, "%s", console.Red("line is stuck low"))
			console.Errorf("possible causes:")
			console.Errorf("  1. sensor DATA pin not connected to %s", c.String("pin"))
			console.Errorf("  2. sensor not powered (check VCC and GND)")
			console.Errorf("  3. no pull-up resistor (4.7k-10k between DATA and VCC)")
			console.Errorf("  4. faulty sensor or short circuit on the data line")
			answer, err := console.YesOrNo("retry the check?")
			if err != nil || answer != console.Yes {
				return console.Exit(1, "line check failed")
			}
		}
	},
}

func levelString(high bool) string {
	if high {
		return console.Green("high")
	}
	return console.Red("low")
}
