package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"seal/internal/paths"
	"seal/internal/slogutil"
	"seal/internal/version"
)

var (
	verboseFlag int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "seal",
	Short: "seal - whole-program field immutability",
	Long: `seal analyzes a program snapshot to find fields that are never mutated
outside their declaring type's constructors, rewrites their declarations to
carry the immutability qualifier (readonly for C#, final for Java), and
keeps a journal of every run.

Snapshots are produced by a compiler-side exporter as program.json,
program.json.zst, or a SCIP index plus a program.toml manifest.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("seal version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v",
		"Increase log verbosity (repeat for more)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress log output")
}

// newLogger builds the CLI logger from the verbosity flags and the
// SEAL_LOG_LEVEL environment variable. Flags win over the environment, and
// logs go to stderr so stdout stays parseable. Once the workspace is
// initialized, logs are teed into .seal/seal.log at info level; the file
// handle lives until process exit.
func newLogger() *slog.Logger {
	level := slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	if env := os.Getenv("SEAL_LOG_LEVEL"); env != "" && verboseFlag == 0 && !quietFlag {
		level = slogutil.LevelFromString(env)
	}
	stderrHandler := slogutil.NewSealHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	root, err := getRepoRoot()
	if err != nil {
		return slog.New(stderrHandler)
	}
	if _, err := os.Stat(paths.SealDir(root)); err != nil {
		return slog.New(stderrHandler)
	}
	fileLogger, _, err := slogutil.NewFileLogger(paths.LogPath(root), slog.LevelInfo)
	if err != nil {
		return slog.New(stderrHandler)
	}
	return slogutil.NewTeeLogger(stderrHandler, fileLogger.Handler())
}
