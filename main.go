package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/screen-dup-go/app"
	"github.com/soocke/screen-dup-go/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to JSON config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and instrumentation")
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfgErr != nil {
		logger.Warn("config load, using defaults", "path", *cfgPath, "error", cfgErr)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("init", "error", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		logger.Error("run", "error", err)
		os.Exit(1)
	}
}
