// Command flocksim runs a single flocking simulation and prints a
// summary of the resulting trajectory. Thin CLI glue; the simulation
// engine itself lives in the flock package.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/flocksim/config"
	"github.com/pthm-cable/flocksim/flock"
	"github.com/pthm-cable/flocksim/scenario"
	"github.com/pthm-cable/flocksim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "scalar parameter YAML file (empty = embedded defaults)")
	side := flag.Int("side", 4, "lattice side length S (N = S^dims)")
	dims := flag.Int("dims", 2, "spatial dimensions")
	spacing := flag.Float64("spacing", 1.5, "lattice spacing")
	timestep := flag.Float64("dt", 1.0/60.0, "integration timestep")
	iterations := flag.Int("iterations", 600, "number of steps to simulate")
	seed := flag.Int64("seed", flock.DefaultSeed, "RNG seed")
	outputDir := flag.String("output", "", "directory to write summary.csv (empty = disabled)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scalars, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	state, cfg, err := scenario.Flock(*side, *dims, *spacing, scalars)
	if err != nil {
		logger.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}

	engine, err := flock.New(state, cfg, *seed, logger)
	if err != nil {
		logger.Error("failed to construct engine", "error", err)
		os.Exit(1)
	}

	result, err := engine.Run(flock.RunOptions{Timestep: *timestep, Iterations: *iterations})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	summary := telemetry.Summarize(*seed, *iterations, result, scalars.AMax)
	fmt.Printf("iterations=%d particles=%d predators=%d final_mean_speed=%.4f final_mean_gap=%.4f clip_rate=%.4f\n",
		summary.Iterations, summary.Particles, summary.Predators, summary.FinalMeanSpeed, summary.FinalMeanGap, summary.ClipRate)

	if *outputDir != "" {
		om, err := telemetry.NewOutputManager(*outputDir)
		if err != nil {
			logger.Error("failed to open output", "error", err)
			os.Exit(1)
		}
		defer om.Close()
		if err := om.WriteSummary(summary); err != nil {
			logger.Error("failed to write summary", "error", err)
			os.Exit(1)
		}
	}
}
