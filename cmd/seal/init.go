package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"seal/internal/config"
	"seal/internal/errors"
	"seal/internal/paths"
	"seal/internal/policy"
	"seal/internal/snapshot"
)

var (
	initForce    bool
	initAssembly string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize seal configuration",
	Long: `Creates a .seal/ directory with a default configuration and policy in
the current repository root. With --assembly a minimal project manifest
for SCIP snapshots is written as well.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .seal directory)")
	initCmd.Flags().StringVar(&initAssembly, "assembly", "", "Write a project manifest naming this assembly")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := getRepoRoot()
	if err != nil {
		return err
	}

	sealDir := paths.SealDir(root)
	if _, statErr := os.Stat(sealDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("seal already initialized.")
			fmt.Printf("Configuration at: %s\n", paths.ConfigPath(root))
			fmt.Println("\nRun 'seal init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(sealDir); removeErr != nil {
			return errors.New(errors.InternalError, "failed to remove existing .seal directory", removeErr)
		}
	}

	if mkdirErr := paths.EnsureSealDir(root); mkdirErr != nil {
		return errors.New(errors.InternalError, "failed to create .seal directory", mkdirErr)
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		return err
	}
	if err := policy.Default().Save(root); err != nil {
		return err
	}

	fmt.Println("seal initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", paths.ConfigPath(root))
	fmt.Printf("Policy written to: %s\n", paths.PolicyPath(root))

	if initAssembly != "" {
		manifestPath := filepath.Join(sealDir, "program.toml")
		if err := snapshot.WriteManifest(manifestPath, snapshot.DefaultManifest(initAssembly)); err != nil {
			return err
		}
		fmt.Printf("Manifest written to: %s\n", manifestPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Export a program snapshot to .seal/program.json")
	fmt.Println("  2. Run 'seal status' to check the setup")
	fmt.Println("  3. Run 'seal verdicts' to preview promotable fields")

	return nil
}
