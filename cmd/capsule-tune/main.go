// Command capsule-tune fits the head stabilizer's stiffness and damping by
// simulating a yaw step and minimizing settle time and overshoot.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Versifine/capsule/internal/config"
	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/tuning"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = built-in defaults)")
	stepDeg := flag.Float64("step-deg", 60, "Head yaw step in degrees")
	duration := flag.Float64("duration", 2, "Simulated seconds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(2)
	}
	if err := run(*configPath, *stepDeg, *duration, *maxEvals, *outputDir); err != nil {
		slog.Error("capsule-tune failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, stepDeg, duration float64, maxEvals int, outputDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := tuning.DefaultOptions()
	opts.Base = cfg.Stabilizer.Config
	opts.StepDegrees = stepDeg
	opts.Duration = duration
	opts.DT = cfg.Derived.FrameDT
	opts.MaxEvals = maxEvals
	opts.Logger = logger.L()

	res, err := tuning.Tune(opts)
	if err != nil {
		return err
	}

	logPath := filepath.Join(outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("create evaluation log: %w", err)
	}
	defer logFile.Close()
	if err := tuning.WriteLog(logFile, res.Evaluations); err != nil {
		return err
	}

	summaryPath := filepath.Join(outputDir, "tune_summary.yaml")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer summaryFile.Close()
	if err := tuning.WriteSummary(summaryFile, res); err != nil {
		return err
	}

	best := *cfg
	best.Stabilizer.Config = res.Best
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := best.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("write best config: %w", err)
	}

	fmt.Printf("Best gains after %d evaluations: base_stiffness=%.4f damping=%.4f (score %.4f, baseline %.4f)\n",
		len(res.Evaluations), res.Best.BaseStiffness, res.Best.Damping, res.BestScore, res.Baseline.Score)
	fmt.Printf("Results written to %s\n", outputDir)
	return nil
}
