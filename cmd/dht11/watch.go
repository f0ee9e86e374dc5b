package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/dht11"
	"github.com/mklimuk/dht11/cmd/dht11/console"
	"github.com/mklimuk/dht11/poll"
)

type watchConfig struct {
	Pin      string `yaml:"pin"`
	Platform string `yaml:"platform"`
	Interval string `yaml:"interval"`
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "poll the sensor periodically and log readings",
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
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   3 * time.Second,
			Usage:   "read cadence (clamped to the sensor minimum of 2s)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file overriding the flags",
		},
	},
	Action: func(c *cli.Context) error {
		pin := c.String("pin")
		platform := c.String("platform")
		interval := c.Duration("interval")
		if path := c.String("config"); path != "" {
			cfg, err := loadWatchConfig(path)
			if err != nil {
				return console.Exit(1, "config error: %s", console.Red(err))
			}
			if cfg.Pin != "" {
				pin = cfg.Pin
			}
			if cfg.Platform != "" {
				platform = cfg.Platform
			}
			if cfg.Interval != "" {
				interval, err = time.ParseDuration(cfg.Interval)
				if err != nil {
					return console.Exit(1, "config error: %s", console.Red(err))
				}
			}
		}

		line, err := openLine(platform, pin)
		if err != nil {
			return console.Exit(1, "line initialization error: %s", console.Red(err))
		}
		sensor := dht11.New(line)
		poller := poll.New(sensor,
			poll.WithInterval(interval),
			poll.WithLogger(slog.Default()))

		slog.Info("watching sensor", "pin", pin, "platform", platform, "interval", interval)
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = poller.Run(ctx)
		successes, failures := poller.Counters()
		console.PInfof(console.PictoFinish, "watch finished (successes: %d, failures: %d)", successes, failures)
		if ctx.Err() != nil {
			// interrupted, not an error
			return nil
		}
		return err
	},
}

func loadWatchConfig(path string) (*watchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	var cfg watchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	return &cfg, nil
}
