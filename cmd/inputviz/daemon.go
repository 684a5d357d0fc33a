package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/inputviz/internal/config"
	"github.com/1broseidon/inputviz/internal/daemon"
	"github.com/1broseidon/inputviz/internal/ipc"
	"github.com/1broseidon/inputviz/internal/logging"
	"github.com/1broseidon/inputviz/internal/platform"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/inputviz/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inputviz daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Capture global input and drive the overlay windows. Runs in the foreground.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	if res.File != "" {
		logger.Info("configuration loaded", "file", res.File)
	}

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	backend, err := platform.New(platform.Options{Display: cfg.Display, Motion: cfg.Capture.Motion}, logger.With("component", "x11"))
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}

	d, err := daemon.New(daemon.Options{
		Config:  cfg,
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}
