package main

import (
	"fmt"
	"os"
	"runtime"

	"icarus/internal/config"
	"icarus/internal/logger"

	"go.uber.org/zap"
)

func init() {
	// GL and glfw calls must come from the main OS thread
	runtime.LockOSThread()
}

func main() {
	cfgPath := os.Getenv("ICARUS_CONFIG")
	if cfgPath == "" {
		cfgPath = "icarus.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := 0
	if err := run(cfg, log); err != nil {
		log.Error("icarus stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

func run(cfg config.Settings, log *zap.Logger) error {
	app, err := setup(cfg, log)
	if err != nil {
		return err
	}
	defer app.teardown()

	newGameLoop(app, log).Run()
	return nil
}
