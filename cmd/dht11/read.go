package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/dht11"
	"github.com/mklimuk/dht11/cmd/dht11/console"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "perform a single sensor transaction",
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
		sensor := dht11.New(line)
		var reading dht11.Reading
		if err := sensor.Read(&reading); err != nil {
			return console.Exit(1, "read error: %s", console.Red(err))
		}
		console.Printf("%s  %s°C\n%s %s%%\n",
			console.PictoThermometer, console.White(reading.Temperature),
			console.PictoHumidity, console.White(reading.Humidity))
		return nil
	},
}
