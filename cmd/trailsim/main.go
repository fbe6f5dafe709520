package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jwebster45206/canadian-trail/internal/logger"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dataFlag := &cli.StringFlag{
		Name:    "data",
		Usage:   "directory holding world.json, nodes.json and events.json",
		Value:   "./data",
		Sources: cli.EnvVars("DATA_DIR"),
	}
	seedFlag := &cli.Int64Flag{Name: "seed", Usage: "run seed", Value: 1}
	widthFlag := &cli.IntFlag{Name: "width", Usage: "wrap output at this many columns", Value: 80}

	cmd := &cli.Command{
		Name:  "trailsim",
		Usage: "play Canadian Trail headlessly",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "simulate a run and print its log",
				Flags: []cli.Flag{
					dataFlag,
					seedFlag,
					widthFlag,
					&cli.StringFlag{Name: "vehicle", Usage: "minivan, pickup or schoolbus", Value: "minivan"},
					&cli.IntFlag{Name: "steps", Usage: "maximum number of trips", Value: 60},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return simulate(ctx, simOptions{
						DataDir: c.String("data"),
						Seed:    c.Int64("seed"),
						Vehicle: c.String("vehicle"),
						Steps:   c.Int("steps"),
						Width:   c.Int("width"),
					}, os.Stdout, log)
				},
			},
			{
				Name:  "world",
				Usage: "print the world generated for a seed",
				Flags: []cli.Flag{dataFlag, seedFlag, widthFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					return describeWorld(ctx, c.String("data"), c.Int64("seed"), c.Int("width"), os.Stdout, log)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.WithError(log, err).Error("trailsim failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
