package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"seal/internal/config"
	"seal/internal/engine"
	"seal/internal/errors"
	"seal/internal/policy"
)

var (
	engineOnce   sync.Once
	sharedEngine *engine.Engine
	engineErr    error
)

// getEngine returns a shared engine instance, lazily initialized on first
// use from .seal/config.json and .seal/policy.yaml under the repo root.
func getEngine(root string, logger *slog.Logger) (*engine.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(root)
		if err != nil {
			logger.Warn("failed to load config, using defaults", "error", err.Error())
			cfg = config.DefaultConfig()
		}

		pol, err := policy.Load(root)
		if err != nil {
			engineErr = err
			return
		}

		sharedEngine, engineErr = engine.New(root, cfg, pol, logger)
	})
	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine(root string, logger *slog.Logger) *engine.Engine {
	eng, err := getEngine(root, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return eng
}

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	root, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newContext creates the context for command execution.
func newContext() context.Context {
	return context.Background()
}

// printError writes an error and its suggested fixes to stderr.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var se *errors.SealError
	if errors.As(err, &se) {
		for _, fix := range se.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(os.Stderr, "  hint: %s: %s\n", fix.Description, fix.Command)
			} else {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", fix.Description)
			}
		}
	}
}
