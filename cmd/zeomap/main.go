// Command zeomap maps a DFG onto a CGRA fabric described by a run
// configuration file and writes the two persisted artifacts of spec §6.2.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/zeomap/emit"
	"github.com/sarchlab/zeomap/iidriver"
	"github.com/sarchlab/zeomap/runconfig"
)

func main() {
	configPath := flag.String("config", "", "path to the run configuration YAML file")
	outDir := flag.String("out", ".", "directory to write config.json/schedule.json into")
	exhaustive := flag.Bool("exhaustive", false, "use the exhaustive DFS search instead of the heuristic one")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "zeomap: -config is required")
		atexit.Exit(2)
	}

	cfg, err := runconfig.Load(*configPath)
	if err != nil {
		logger.Error("failed to load run configuration", "error", err)
		atexit.Exit(1)
	}

	f, err := cfg.Fabric.BuildFabric()
	if err != nil {
		logger.Error("failed to build fabric", "error", err)
		atexit.Exit(1)
	}

	g, err := cfg.DFG.BuildGraph()
	if err != nil {
		logger.Error("failed to build DFG", "error", err)
		atexit.Exit(1)
	}

	mode := iidriver.Heuristic
	if *exhaustive || cfg.Mapping.Mode == "exhaustive" {
		mode = iidriver.Exhaustive
	}

	opts := iidriver.Options{
		Mode:          mode,
		StaticElastic: cfg.Mapping.StaticElastic,
		SeedII:        cfg.Mapping.SeedII,
		MaxII:         cfg.Mapping.MaxII,
		Logger:        logger,
	}

	atexit.Register(func() {
		logger.Info("zeomap exiting")
	})

	ii, session, err := iidriver.Map(f, g, opts)
	if err != nil {
		logger.Error("mapping failed", "error", err)
		atexit.Exit(1)
	}
	logger.Info("mapping succeeded", "ii", ii)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		atexit.Exit(1)
	}

	configFile, err := os.Create(filepath.Join(*outDir, "config.json"))
	if err != nil {
		logger.Error("failed to create config.json", "error", err)
		atexit.Exit(1)
	}
	defer configFile.Close()
	if err := emit.WriteConfig(configFile, f, g, session, ii, cfg.Mapping.StaticElastic); err != nil {
		logger.Error("failed to write config.json", "error", err)
		atexit.Exit(1)
	}

	scheduleFile, err := os.Create(filepath.Join(*outDir, "schedule.json"))
	if err != nil {
		logger.Error("failed to create schedule.json", "error", err)
		atexit.Exit(1)
	}
	defer scheduleFile.Close()
	if err := emit.WriteSchedule(scheduleFile, f, g, session); err != nil {
		logger.Error("failed to write schedule.json", "error", err)
		atexit.Exit(1)
	}

	emit.RenderASCII(os.Stdout, f, g, session, ii)

	atexit.Exit(0)
}
