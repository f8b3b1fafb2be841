package main

import (
	"flag"
	"log/slog"
	"time"

	"github.com/soocke/proctor-go/app"
	"github.com/soocke/proctor-go/config"
	"github.com/soocke/proctor-go/debug"
)

func main() {
	cfgPath := flag.String("config", "proctor.json", "path to the JSON config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging and resource logs")
	flag.Parse()

	// Config file over defaults, flags over the file.
	cfg, err := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Error("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	application := app.NewApp(cfg, logger)
	if cfg.Debug {
		debug.StartMemLogger(10*time.Second, logger)
		debug.StartResourceLogger(2*time.Second, logger, application.Registry())
	}
	application.Start()
}
