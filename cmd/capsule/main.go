package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Versifine/capsule/internal/config"
	"github.com/Versifine/capsule/internal/debug"
	"github.com/Versifine/capsule/internal/event"
	"github.com/Versifine/capsule/internal/logger"
	"github.com/Versifine/capsule/internal/sim"
	"github.com/Versifine/capsule/internal/world"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = built-in defaults)")
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (empty = built-in crouch tunnel)")
	tracePath := flag.String("trace", "", "Write a per-tick CSV trace to this file")
	interactive := flag.Bool("interactive", false, "Drive the character from the terminal")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective config as YAML and exit")
	flag.Parse()

	if err := run(*configPath, *scenarioPath, *tracePath, *interactive, *dumpConfig); err != nil {
		slog.Error("capsule failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, scenarioPath, tracePath string, interactive, dumpConfig bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if dumpConfig {
		data, err := cfg.Bytes()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	var logOut io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	} else if interactive {
		// Raw mode owns the terminal; keep log lines off the status line.
		logOut = io.Discard
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOut,
	})
	log := logger.Component("main")

	level, err := loadLevel(cfg.World.Level)
	if err != nil {
		return err
	}
	rig, err := sim.NewRig(cfg, level, logger.L())
	if err != nil {
		return err
	}
	subscribeEvents(rig.Events, logger.Component("events"))
	loop := sim.NewLoop(rig, cfg.Derived.PhysicsDT, cfg.Sim.MaxSubsteps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactive {
		frame := time.Duration(cfg.Derived.FrameDT * float64(time.Second))
		console := debug.NewConsole(loop, rig, frame)
		return console.Start(ctx)
	}

	scenario, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	log.Info("Running scenario", "name", scenario.Name, "segments", len(scenario.Segments), "duration", scenario.Duration(), "level", level.Name)

	records, err := scenario.Run(loop, cfg.Derived.FrameDT)
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}

	if tracePath != "" {
		if err := writeTrace(tracePath, records); err != nil {
			return err
		}
		log.Info("Trace written", "path", tracePath, "records", len(records))
	}

	st := rig.Status()
	log.Info("Scenario finished",
		"ticks", loop.Ticks(),
		"x", st.Position.X, "y", st.Position.Y, "z", st.Position.Z,
		"grounded", st.Grounded,
		"crouched", st.Crouched,
		"half_height", st.HalfHeight,
	)
	return nil
}

func loadLevel(path string) (*world.Level, error) {
	if path == "" {
		return world.DefaultLevel()
	}
	return world.LoadLevel(path)
}

func loadScenario(path string) (*sim.Scenario, error) {
	if path == "" {
		return sim.DefaultScenario()
	}
	return sim.LoadScenario(path)
}

func writeTrace(path string, records []sim.TraceRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	defer f.Close()
	return sim.NewTraceWriter(f).Write(records...)
}

func subscribeEvents(bus *event.Bus, log *slog.Logger) {
	bus.Subscribe(event.EventCrouchChanged, func(raw any) {
		if evt, ok := raw.(event.CrouchChangedEvent); ok {
			log.Debug("Crouch changed", "crouched", evt.Crouched, "half_height", evt.HalfHeight)
		}
	})
	bus.Subscribe(event.EventStandBlocked, func(raw any) {
		if evt, ok := raw.(event.StandBlockedEvent); ok {
			log.Debug("Stand blocked", "clearance", evt.Clearance)
		}
	})
	bus.Subscribe(event.EventLanded, func(raw any) {
		if evt, ok := raw.(event.LandedEvent); ok {
			log.Debug("Landed", "impact_speed", evt.ImpactSpeed)
		}
	})
	bus.Subscribe(event.EventImpulseApplied, func(raw any) {
		if evt, ok := raw.(event.ImpulseAppliedEvent); ok {
			log.Debug("Impulse applied", "impulse", evt.Impulse)
		}
	})
}
